package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"finpulse/internal/amqp"
	"finpulse/internal/config"
	"finpulse/internal/log"
	"finpulse/internal/services"
	"finpulse/internal/storage"
)

// The worker produces the upcoming-bills digest: on every ledger refresh
// message and on a periodic schedule it re-runs recurring detection and logs
// the payments expected within the configured window.
func main() {
	// Load .env for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	logger.Info("Starting finpulse-worker")

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

	digest := services.NewDigestService(repo, cfg.UpcomingWindowDays, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Refresh messages trigger an immediate digest run; without AMQP the
	// ticker alone drives the worker.
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, running on schedule only", log.FieldError, err)
		} else {
			defer amqpClient.Close()
			go func() {
				err := amqpClient.ConsumeLedgerRefresh(ctx, func(msg *amqp.LedgerRefreshMessage) error {
					logger.Info("Ledger refresh received",
						log.FieldDatasetVersion, msg.Version,
						"imported", msg.Imported)
					_, err := digest.Run(ctx)
					return err
				})
				if err != nil && ctx.Err() == nil {
					logger.Error("AMQP consumer stopped", log.FieldError, err)
				}
			}()
			logger.Info("AMQP consumer started", "queue", cfg.AMQPQueue)
		}
	} else {
		logger.Info("AMQP disabled, running on schedule only")
	}

	logger.Info("Digest schedule configured",
		"interval", cfg.DigestInterval,
		"window_days", cfg.UpcomingWindowDays,
		"sqlite_db", cfg.SQLiteDBPath)

	ticker := time.NewTicker(cfg.DigestInterval)
	defer ticker.Stop()

	// Initial run on startup.
	if _, err := digest.Run(ctx); err != nil {
		logger.Error("Initial digest run failed", log.FieldError, err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := digest.Run(ctx); err != nil {
					logger.Error("Scheduled digest run failed", log.FieldError, err)
				}
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	cancel()
	logger.Info("Worker shutdown complete")
}
