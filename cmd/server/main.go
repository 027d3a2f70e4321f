// Command server runs the WBGT ingestion and read API service.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/masakick/wbgt-checker/internal/adapter/httpapi"
	kafkaadapter "github.com/masakick/wbgt-checker/internal/adapter/kafka"
	"github.com/masakick/wbgt-checker/internal/config"
	"github.com/masakick/wbgt-checker/internal/directory"
	"github.com/masakick/wbgt-checker/internal/ingest"
	"github.com/masakick/wbgt-checker/internal/observability"
	"github.com/masakick/wbgt-checker/internal/snapshot"
	"github.com/masakick/wbgt-checker/internal/upstream"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	dir, err := directory.Load()
	if err != nil {
		logger.Error("failed to load location directory", "error", err)
		os.Exit(1)
	}
	logger.Info("location directory loaded", "locations", dir.Count())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tiers := []snapshot.Durable{snapshot.NewFileStore(cfg.SnapshotPath)}

	// Postgres tier is opt-in via DATABASE_URL.
	var pg *snapshot.PostgresStore
	if cfg.DatabaseURL != "" {
		pg, err = snapshot.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect postgres tier", "error", err)
			os.Exit(1)
		}
		tiers = append(tiers, pg)
		logger.Info("postgres snapshot tier enabled")
	}

	store := snapshot.New(dir, logger, tiers...)
	tempStore := snapshot.NewTemperatureStore(cfg.TemperaturePath, logger)

	// Warm the in-memory cache so readiness does not wait for the first
	// cron trigger after a restart.
	if snap, err := store.Read(ctx); err == nil {
		logger.Info("snapshot restored", "data_count", snap.DataCount, "update_time", snap.UpdateTime)
	} else {
		logger.Info("no previous snapshot, waiting for first cycle")
	}

	// Kafka publishing is opt-in via KAFKA_ENABLED.
	var publisher ingest.Publisher
	var kafkaPub *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		kafkaPub = kafkaadapter.NewPublisher(cfg, logger)
		publisher = kafkaPub
		logger.Info("kafka snapshot publishing enabled", "topic", cfg.KafkaTopic)
	} else {
		logger.Info("kafka snapshot publishing disabled")
	}

	fetcher := upstream.New(logger, clockwork.NewRealClock())
	opts := upstream.Options{
		Retries:    cfg.FetchRetries,
		RetryDelay: cfg.FetchRetryDelay,
		Timeout:    cfg.FetchTimeout,
	}
	cycle := ingest.New(fetcher, store, tempStore, dir, publisher, metrics, logger, cfg.FeedBaseURL, opts)

	srv := httpapi.NewServer(cfg.HTTPAddr, cycle, store, tempStore, dir, cfg.CronSecret, metrics, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaPub != nil {
		if err := kafkaPub.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}
	if pg != nil {
		if err := pg.Close(); err != nil {
			logger.Error("postgres close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
