package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"finpulse/internal/amqp"
	"finpulse/internal/cache"
	"finpulse/internal/config"
	apphttp "finpulse/internal/http"
	"finpulse/internal/log"
	"finpulse/internal/services"
	"finpulse/internal/storage"
)

func main() {
	// Load .env for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	logger.Info("Starting finpulse server")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// AMQP is optional; without it imports still land in SQLite and the
	// digest worker catches up on its own schedule.
	var publisher services.RefreshPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without messaging", log.FieldError, err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
			logger.Info("AMQP client initialized")
		}
	} else {
		logger.Info("AMQP disabled")
	}

	analyticsService := services.NewAnalyticsService(repo, services.AnalyticsOptions{
		Preset:          cfg.ScoringPreset,
		ForecastHorizon: cfg.ForecastHorizon,
		CorrelationTopN: cfg.CorrelationTopN,
		CacheSize:       cfg.CacheSize,
		CacheTTL:        cfg.CacheTTL,
	}, logger)
	importService := services.NewImportService(repo, publisher, logger)

	cacheManager := cache.NewManager()
	analyticsService.RegisterCaches(cacheManager)
	cacheManager.StartCleanup(cfg.CacheTTL)
	defer cacheManager.Stop()

	srv := apphttp.NewServer(":"+cfg.Port, analyticsService, importService, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		cancel()
	}()

	logger.Info("Listening", "port", cfg.Port, "db", cfg.SQLiteDBPath, log.FieldPreset, cfg.ScoringPreset)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
