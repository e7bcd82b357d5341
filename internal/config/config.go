package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/fmuoria/resume-shortlisting/internal/llm"
)

const (
	EnvPrefix = "SHORTLIST"

	DefaultPort        = 8000
	DefaultMaxFiles    = 20
	DefaultMaxFileSize = 5 * 1024 * 1024
)

// Config holds application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Uploads UploadsConfig `mapstructure:"uploads"`
	LLM     LLMConfig     `mapstructure:"llm"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Log     LogConfig     `mapstructure:"log"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RateLimit       float64       `mapstructure:"rate_limit"`
	RateBurst       int           `mapstructure:"rate_burst"`
}

type UploadsConfig struct {
	Root         string   `mapstructure:"root"`
	MaxFiles     int      `mapstructure:"max_files"`
	MaxFileSize  int64    `mapstructure:"max_file_size"`
	AllowedTypes []string `mapstructure:"allowed_types"`
}

type LLMConfig struct {
	Provider        string  `mapstructure:"provider"`
	Model           string  `mapstructure:"model"`
	APIKey          string  `mapstructure:"api_key"`
	APIKeyFile      string  `mapstructure:"api_key_file"`
	Project         string  `mapstructure:"project"`
	Location        string  `mapstructure:"location"`
	CredentialsFile string  `mapstructure:"credentials_file"`
	Temperature     float32 `mapstructure:"temperature"`
}

type CacheConfig struct {
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type LogConfig struct {
	JSON  bool `mapstructure:"json"`
	Debug bool `mapstructure:"debug"`
}

// SetDefaults registers every key so environment overrides are picked up on Unmarshal
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 5*time.Minute)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.rate_limit", 0.0)
	v.SetDefault("server.rate_burst", 5)

	v.SetDefault("uploads.root", "")
	v.SetDefault("uploads.max_files", DefaultMaxFiles)
	v.SetDefault("uploads.max_file_size", DefaultMaxFileSize)
	v.SetDefault("uploads.allowed_types", []string{".pdf"})

	v.SetDefault("llm.provider", string(llm.ProviderGemini))
	v.SetDefault("llm.model", llm.DefaultModel)
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.api_key_file", "")
	v.SetDefault("llm.project", "")
	v.SetDefault("llm.location", llm.DefaultLocation)
	v.SetDefault("llm.credentials_file", "")
	v.SetDefault("llm.temperature", llm.DefaultTemperature)

	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", 24*time.Hour)

	v.SetDefault("log.json", false)
	v.SetDefault("log.debug", false)
}

// Load reads .env, the optional config file and SHORTLIST_* environment variables.
// An explicit cfgFile must exist; otherwise shortlist.yaml in the working directory is optional.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("shortlist")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Uploads.AllowedTypes = normalizeTypes(cfg.Uploads.AllowedTypes)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", c.Server.Port)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("server.rate_limit must not be negative")
	}
	if c.Uploads.MaxFiles < 1 {
		return fmt.Errorf("uploads.max_files must be at least 1")
	}
	if c.Uploads.MaxFileSize < 1 {
		return fmt.Errorf("uploads.max_file_size must be positive")
	}
	if len(c.Uploads.AllowedTypes) == 0 {
		return fmt.Errorf("uploads.allowed_types must not be empty")
	}

	switch llm.Provider(c.LLM.Provider) {
	case llm.ProviderGemini, llm.ProviderVertexAI:
	default:
		return fmt.Errorf("llm.provider %q is not supported", c.LLM.Provider)
	}

	if c.LLM.CredentialsFile != "" {
		if _, err := os.Stat(c.LLM.CredentialsFile); err != nil {
			return fmt.Errorf("google credentials file not found: %w", err)
		}
	}
	return nil
}

// ClientConfig resolves credentials and returns the settings for llm.New.
// A missing credential yields an error wrapping llm.ErrMissingCredential.
func (c LLMConfig) ClientConfig() (llm.Config, error) {
	cfg := llm.Config{
		Provider:        llm.Provider(c.Provider),
		Model:           c.Model,
		Project:         c.Project,
		Location:        c.Location,
		CredentialsFile: c.CredentialsFile,
		Temperature:     c.Temperature,
	}

	switch cfg.Provider {
	case llm.ProviderVertexAI:
		if strings.TrimSpace(cfg.Project) == "" {
			cfg.Project = os.Getenv("GOOGLE_CLOUD_PROJECT")
		}
		if strings.TrimSpace(cfg.Project) == "" {
			return cfg, fmt.Errorf("llm.project is not configured: %w", llm.ErrMissingCredential)
		}
	default:
		key, err := LoadSecret(Source{
			Name:  "llm api key",
			Value: firstNonEmpty(c.APIKey, os.Getenv("GEMINI_API_KEY"), os.Getenv("GOOGLE_API_KEY")),
			File:  c.APIKeyFile,
		})
		if err != nil {
			return cfg, fmt.Errorf("%w: %v", llm.ErrMissingCredential, err)
		}
		cfg.APIKey = key
	}
	return cfg, nil
}

func normalizeTypes(types []string) []string {
	out := make([]string, 0, len(types))
	seen := make(map[string]bool, len(types))
	for _, t := range types {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if !strings.HasPrefix(t, ".") {
			t = "." + t
		}
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
