// Command ingest runs a single ingestion cycle and exits. Intended for
// cron-less environments and for verifying feed connectivity from a shell.
//
// Usage:
//
//	go run ./cmd/ingest -feed wbgt
//	go run ./cmd/ingest -feed temperature
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/masakick/wbgt-checker/internal/config"
	"github.com/masakick/wbgt-checker/internal/directory"
	"github.com/masakick/wbgt-checker/internal/ingest"
	"github.com/masakick/wbgt-checker/internal/observability"
	"github.com/masakick/wbgt-checker/internal/snapshot"
	"github.com/masakick/wbgt-checker/internal/upstream"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	feedName := flag.String("feed", "wbgt", "feed to ingest: wbgt or temperature")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetricsForTesting() // one-shot run, nothing scrapes the registry

	dir, err := directory.Load()
	if err != nil {
		return fmt.Errorf("load location directory: %w", err)
	}

	ctx := context.Background()

	tiers := []snapshot.Durable{snapshot.NewFileStore(cfg.SnapshotPath)}
	if cfg.DatabaseURL != "" {
		pg, err := snapshot.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect postgres tier: %w", err)
		}
		defer pg.Close()
		tiers = append(tiers, pg)
	}

	store := snapshot.New(dir, logger, tiers...)
	tempStore := snapshot.NewTemperatureStore(cfg.TemperaturePath, logger)

	fetcher := upstream.New(logger, clockwork.NewRealClock())
	opts := upstream.Options{
		Retries:    cfg.FetchRetries,
		RetryDelay: cfg.FetchRetryDelay,
		Timeout:    cfg.FetchTimeout,
	}
	cycle := ingest.New(fetcher, store, tempStore, dir, nil, metrics, logger, cfg.FeedBaseURL, opts)

	var res ingest.Result
	switch *feedName {
	case "wbgt":
		res, err = cycle.Run(ctx)
	case "temperature":
		res, err = cycle.RunTemperature(ctx)
	default:
		return fmt.Errorf("unknown feed %q", *feedName)
	}
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d readings stored (%d dropped) in %s\n", *feedName, res.DataCount, res.Dropped, res.Duration)
	return nil
}
