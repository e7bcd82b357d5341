package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/fmuoria/resume-shortlisting/internal/agent"
	"github.com/fmuoria/resume-shortlisting/internal/api"
	"github.com/fmuoria/resume-shortlisting/internal/cache"
	"github.com/fmuoria/resume-shortlisting/internal/config"
	"github.com/fmuoria/resume-shortlisting/internal/extraction"
	"github.com/fmuoria/resume-shortlisting/internal/ingestion"
	"github.com/fmuoria/resume-shortlisting/internal/llm"
	"github.com/fmuoria/resume-shortlisting/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the shortlisting HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", config.DefaultPort, "port to listen on")
	serveCmd.Flags().Bool("lazy-credentials", false, "start without LLM credentials and reject shortlisting requests until they are configured")

	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}

func serve(cmd *cobra.Command) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	logger.Info("starting the resume shortlisting service",
		zap.String("version", version),
		zap.String("provider", cfg.LLM.Provider),
		zap.Int("port", cfg.Server.Port),
	)

	store, err := ingestion.NewStore(cfg.Uploads.Root, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing upload store", zap.Error(err))
		}
	}()

	var shortlister api.Shortlister
	client, err := newLLMClient(ctx, cfg.LLM, logger)
	switch {
	case err != nil:
		lazy, _ := cmd.Flags().GetBool("lazy-credentials")
		if !lazy {
			return fmt.Errorf("configuring llm client: %w", err)
		}
		logger.Warn("llm credentials unavailable, shortlisting requests will fail",
			zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY or llm.api_key_file, or llm.project for vertexai"),
		)
	default:
		defer client.Close()

		var opts []agent.Option
		if cfg.Cache.RedisURL != "" {
			reports, err := cache.New(ctx, cfg.Cache.RedisURL, cfg.Cache.TTL)
			if err != nil {
				logger.Warn("report cache disabled", zap.Error(err))
			} else {
				defer reports.Close()
				opts = append(opts, agent.WithCache(reports))
				logger.Info("report cache enabled", zap.Duration("ttl", cfg.Cache.TTL))
			}
		}

		generator := agent.NewCrewGenerator(client, logger, opts...)
		shortlister = agent.NewShortlister(generator, extraction.New(logger), logger)
	}

	server := api.NewServer(shortlister, store, api.Options{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		RateLimit:    cfg.Server.RateLimit,
		RateBurst:    cfg.Server.RateBurst,
		Version:      version,
		Limits: api.Limits{
			MaxFiles:     cfg.Uploads.MaxFiles,
			MaxFileSize:  cfg.Uploads.MaxFileSize,
			AllowedTypes: cfg.Uploads.AllowedTypes,
		},
	}, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("received signal", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newLLMClient resolves credentials and builds the configured provider client
func newLLMClient(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (llm.Client, error) {
	clientCfg, err := cfg.ClientConfig()
	if err != nil {
		return nil, err
	}

	client, err := llm.New(ctx, clientCfg)
	if err != nil {
		return nil, err
	}

	logger.Info("llm client ready",
		zap.String("provider", string(clientCfg.Provider)),
		zap.String("model", client.Model()),
	)
	return client, nil
}
