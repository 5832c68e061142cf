package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/qwen-tts-go/qwen-tts-go/internal/api"
	"github.com/qwen-tts-go/qwen-tts-go/internal/backend"
	"github.com/qwen-tts-go/qwen-tts-go/internal/config"
	"github.com/qwen-tts-go/qwen-tts-go/internal/library"
	"github.com/qwen-tts-go/qwen-tts-go/internal/models"
	"github.com/qwen-tts-go/qwen-tts-go/internal/modelstore"
	"github.com/qwen-tts-go/qwen-tts-go/internal/queue"
	"github.com/qwen-tts-go/qwen-tts-go/internal/streaming"
	"github.com/qwen-tts-go/qwen-tts-go/internal/translate"
	"github.com/qwen-tts-go/qwen-tts-go/internal/tts"
)

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := setupLogger(cfg.Logging)

	logger.Info().
		Str("listen", cfg.Server.Listen).
		Str("runtime", cfg.Runtime.URL).
		Str("log_level", cfg.Logging.Level).
		Msg("Starting qwen-tts-server")

	client := backend.NewRuntimeClient(cfg.Runtime.URL, cfg.Runtime.Timeout)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := client.Health(ctx); err != nil {
		logger.Warn().Err(err).Msg("Runtime health check failed - server will start but synthesis may not work")
	} else {
		logger.Info().Str("runtime", cfg.Runtime.URL).Msg("Runtime connection verified")
	}
	cancel()

	store, err := modelstore.New(modelstore.Config{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		UseSSL:    cfg.Storage.UseSSL,
		Prefix:    cfg.Storage.Prefix,
	}, logger)
	if err != nil {
		return fmt.Errorf("init object store: %w", err)
	}
	resolver := modelstore.NewResolver(store, cfg.Models.CacheDir, logger)

	manager := models.NewManager(client, resolver, cfg.Models.LoadTimeout, logger)
	manager.Register(models.Spec{
		Name:       tts.ModelCustomVoice,
		RegistryID: cfg.Models.CustomVoiceRegistryID,
		CacheName:  cfg.Models.CustomVoiceCacheName,
	})
	manager.Register(models.Spec{
		Name:       tts.ModelBase,
		RegistryID: cfg.Models.BaseRegistryID,
		CacheName:  cfg.Models.BaseCacheName,
	})
	manager.Register(models.Spec{
		Name:       tts.ModelASR,
		RegistryID: cfg.Models.ASRRegistryID,
		CacheName:  cfg.Models.ASRCacheName,
	})

	lib, err := library.Open(cfg.Library.Dir, logger)
	if err != nil {
		return fmt.Errorf("open voice library: %w", err)
	}

	provider := translate.NewProvider(
		translate.NewOfflineClient(cfg.Translate.OfflineURL, cfg.Translate.Timeout),
		translate.NewOnlineClient(cfg.Translate.OnlineURL, cfg.Translate.Timeout),
		logger,
	)

	pool := queue.NewManager(queue.Config{
		Workers:  cfg.Workers.Workers,
		MaxQueue: cfg.Workers.MaxQueue,
	})
	metrics := streaming.NewMetrics()
	gate := streaming.NewGate(streaming.GateConfig{
		MaxConcurrent:  cfg.Stream.MaxConcurrent,
		AcquireTimeout: cfg.Stream.AcquireTimeout,
		Metrics:        metrics,
	})

	service := tts.NewService(tts.Options{
		Client:     client,
		Manager:    manager,
		Library:    lib,
		Translator: provider,
		Pool:       pool,
		Gate:       gate,
		Metrics:    metrics,
		Logger:     logger,
	})

	if cfg.Models.PreloadOnStart {
		manager.InitializeAll(context.Background())
	}

	router := api.NewRouter(cfg, service, metrics, logger)

	srv := &http.Server{
		Addr:         cfg.Server.Listen,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Server.Listen).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		logger.Info().Str("signal", sig.String()).Msg("Shutting down server...")
	}

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	if err := pool.Shutdown(ctx); err != nil {
		logger.Warn().Err(err).Msg("Worker pool shutdown timed out")
	}

	logger.Info().Msg("Server stopped")
	return nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	// Explicit flags win over config file and environment.
	if cmd.Flags().Changed("listen") {
		cfg.Server.Listen = viper.GetString("server.listen")
	}
	if cmd.Flags().Changed("read-timeout") {
		cfg.Server.ReadTimeout = viper.GetDuration("server.read_timeout")
	}
	if cmd.Flags().Changed("write-timeout") {
		cfg.Server.WriteTimeout = viper.GetDuration("server.write_timeout")
	}
	if cmd.Flags().Changed("runtime") {
		cfg.Runtime.URL = viper.GetString("runtime.url")
	}
	if cmd.Flags().Changed("runtime-timeout") {
		cfg.Runtime.Timeout = viper.GetDuration("runtime.timeout")
	}
	if cmd.Flags().Changed("model-cache-dir") {
		cfg.Models.CacheDir = viper.GetString("models.cache_dir")
	}
	if cmd.Flags().Changed("preload") {
		cfg.Models.PreloadOnStart = viper.GetBool("models.preload_on_start")
	}
	if cmd.Flags().Changed("voice-dir") {
		cfg.Library.Dir = viper.GetString("library.dir")
	}
	if cmd.Flags().Changed("api-key") {
		cfg.Auth.APIKey = viper.GetString("auth.api_key")
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = viper.GetString("logging.level")
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Logging.Format = viper.GetString("logging.format")
	}

	return cfg, nil
}

func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.Format == "text" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).Level(level)
	} else {
		logger = zerolog.New(os.Stdout).Level(level)
	}
	return logger.With().Timestamp().Logger()
}
