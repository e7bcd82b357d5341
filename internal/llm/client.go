// Package llm wraps the text-generation backends used to write shortlisting reports.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Provider names a text-generation backend
type Provider string

const (
	ProviderGemini   Provider = "gemini"
	ProviderVertexAI Provider = "vertexai"

	DefaultModel       = "gemini-2.5-flash"
	DefaultLocation    = "us-central1"
	DefaultTemperature = 0.1
)

// ErrMissingCredential is returned when no credential is configured for the provider
var ErrMissingCredential = errors.New("llm credential is not configured")

// Client is an abstraction over LLM providers
type Client interface {
	// GenerateContent sends a single prompt and returns the text answer
	GenerateContent(ctx context.Context, prompt string) (string, error)
	// Model returns the model name requests are sent to
	Model() string
	// Close releases any resources held by the client
	Close() error
}

// Config selects and parameterises a provider
type Config struct {
	Provider        Provider
	Model           string
	APIKey          string
	Project         string
	Location        string
	CredentialsFile string
	Temperature     float32
}

func (c Config) withDefaults() Config {
	if c.Provider == "" {
		c.Provider = ProviderGemini
	}
	if strings.TrimSpace(c.Model) == "" {
		c.Model = DefaultModel
	}
	if strings.TrimSpace(c.Location) == "" {
		c.Location = DefaultLocation
	}
	if c.Temperature <= 0 {
		c.Temperature = DefaultTemperature
	}
	return c
}

// New creates a client for the configured provider
func New(ctx context.Context, cfg Config) (Client, error) {
	cfg = cfg.withDefaults()

	switch cfg.Provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, cfg)
	case ProviderVertexAI:
		return NewVertexAIClient(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

func joinParts(parts []string) (string, error) {
	var builder strings.Builder
	for _, text := range parts {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if builder.Len() > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString(text)
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("model returned empty response")
	}
	return output, nil
}
