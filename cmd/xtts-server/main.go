package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/qwen-tts-go/qwen-tts-go/internal/backend"
	"github.com/qwen-tts-go/qwen-tts-go/internal/config"
	"github.com/qwen-tts-go/qwen-tts-go/internal/models"
	"github.com/qwen-tts-go/qwen-tts-go/internal/modelstore"
	"github.com/qwen-tts-go/qwen-tts-go/internal/xttsapi"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	listen := cfg.Server.Listen
	if v := os.Getenv("XTTS_LISTEN"); v != "" {
		listen = v
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	client := backend.NewRuntimeClient(cfg.Runtime.URL, cfg.Runtime.Timeout)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := client.Health(ctx); err != nil {
		logger.Warn().Err(err).Msg("Runtime health check failed - server will start but synthesis may not work")
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
		logger.Fatal().Err(err).Msg("Failed to init object store")
	}
	resolver := modelstore.NewResolver(store, cfg.Models.CacheDir, logger)

	manager := models.NewManager(client, resolver, cfg.Models.LoadTimeout, logger)
	manager.Register(models.Spec{
		Name:       xttsapi.ModelXTTS,
		RegistryID: cfg.Models.XTTSRegistryID,
		CacheName:  cfg.Models.XTTSCacheName,
	})
	if cfg.Models.PreloadOnStart {
		manager.InitializeAll(context.Background())
	}

	service := xttsapi.NewService(client, manager, logger)
	router := xttsapi.NewRouter(service, logger)

	srv := &http.Server{
		Addr:         listen,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", listen).Msg("Starting xtts-server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
