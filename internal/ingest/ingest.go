// Package ingest runs the fetch-parse-validate-store cycle that turns the
// upstream monthly CSV feeds into the snapshot served by the read API. A
// cycle is sequential and stateless; overlap protection comes from the
// scheduler and the shared-secret trigger, not from a lock here.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/masakick/wbgt-checker/internal/directory"
	"github.com/masakick/wbgt-checker/internal/domain"
	"github.com/masakick/wbgt-checker/internal/feed"
	"github.com/masakick/wbgt-checker/internal/observability"
	"github.com/masakick/wbgt-checker/internal/upstream"
)

// Fetcher is the slice of the upstream client a cycle needs.
type Fetcher interface {
	FetchCSV(ctx context.Context, url string, opts upstream.Options) upstream.Result
	FetchJSON(ctx context.Context, url string, opts upstream.Options, v any) upstream.Result
}

// SnapshotWriter persists a validated snapshot.
type SnapshotWriter interface {
	Write(ctx context.Context, snap *domain.Snapshot) error
}

// TemperatureWriter persists a validated temperature snapshot.
type TemperatureWriter interface {
	Write(ctx context.Context, snap *domain.TemperatureSnapshot) error
}

// Publisher announces a completed snapshot update. Publishing is best-effort;
// a failure never fails the cycle.
type Publisher interface {
	PublishSnapshotUpdated(ctx context.Context, snap *domain.Snapshot) error
}

// Result summarizes one successful cycle for the trigger response.
type Result struct {
	DataCount int           `json:"dataCount"`
	Dropped   int           `json:"dropped"`
	Duration  time.Duration `json:"-"`
}

// Cycle wires one ingestion run. Construct once and reuse; Run may be called
// repeatedly.
type Cycle struct {
	fetcher   Fetcher
	store     SnapshotWriter
	tempStore TemperatureWriter
	dir       *directory.Directory
	publisher Publisher
	metrics   *observability.Metrics
	logger    *slog.Logger

	baseURL string
	opts    upstream.Options
}

// New creates a Cycle. publisher may be nil when Kafka is disabled.
func New(
	fetcher Fetcher,
	store SnapshotWriter,
	tempStore TemperatureWriter,
	dir *directory.Directory,
	publisher Publisher,
	metrics *observability.Metrics,
	logger *slog.Logger,
	baseURL string,
	opts upstream.Options,
) *Cycle {
	return &Cycle{
		fetcher:   fetcher,
		store:     store,
		tempStore: tempStore,
		dir:       dir,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		baseURL:   baseURL,
		opts:      opts,
	}
}

// Run executes one observation cycle: fetch the current month's file (falling
// back to the previous month around the publication gap), parse, merge the
// forecast feed, validate, store, publish. A failure at any stage leaves the
// previously stored snapshot untouched.
func (c *Cycle) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	now := domain.Now()

	res, err := c.runObservation(ctx, now)
	res.Duration = time.Since(start)

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	c.metrics.IngestCycles.WithLabelValues("wbgt", outcome).Inc()
	c.metrics.IngestDuration.WithLabelValues("wbgt").Observe(res.Duration.Seconds())

	return res, err
}

func (c *Cycle) runObservation(ctx context.Context, now time.Time) (Result, error) {
	body, err := c.fetchMonthly(ctx, feed.ObservationURL(c.baseURL, now), feed.PreviousObservationURL(c.baseURL, now))
	if err != nil {
		return Result{}, fmt.Errorf("fetch observation feed: %w", err)
	}

	readings, dropped, err := feed.ParseObservationCSV(body, c.dir)
	if err != nil {
		return Result{}, fmt.Errorf("parse observation feed: %w", err)
	}
	if dropped > 0 {
		c.metrics.RowsDropped.Add(float64(dropped))
		c.logger.Warn("dropped unparseable feed columns", "count", dropped)
	}

	c.mergeForecast(ctx, now, readings)

	if v := domain.ValidateReadings(readings); !v.Valid {
		c.metrics.ValidationFailures.Inc()
		return Result{}, fmt.Errorf("validation failed: %v", v.Errors)
	}

	snap := &domain.Snapshot{
		Timestamp:  now.UTC().Format(time.RFC3339),
		UpdateTime: domain.FormatUpdateTime(now),
		DataCount:  len(readings),
		Data:       readings,
	}

	if err := c.store.Write(ctx, snap); err != nil {
		return Result{}, fmt.Errorf("store snapshot: %w", err)
	}
	c.metrics.ReadingsKept.Set(float64(snap.DataCount))

	if c.publisher != nil {
		if err := c.publisher.PublishSnapshotUpdated(ctx, snap); err != nil {
			c.logger.Warn("snapshot update publish failed", "error", err)
		}
	}

	c.logger.Info("ingestion cycle complete", "data_count", snap.DataCount, "dropped", dropped)
	return Result{DataCount: snap.DataCount, Dropped: dropped}, nil
}

// mergeForecast overlays the dedicated forecast feed onto the readings. The
// observation parser already synthesized a forecast from trailing rows, so
// any failure here just keeps that.
func (c *Cycle) mergeForecast(ctx context.Context, now time.Time, readings []domain.WBGTReading) {
	body, err := c.fetchMonthly(ctx, feed.ForecastURL(c.baseURL, now), feed.PreviousForecastURL(c.baseURL, now))
	if err != nil {
		c.logger.Warn("forecast feed unavailable, keeping synthesized forecast", "error", err)
		return
	}

	forecasts, err := feed.ParseForecastCSV(body)
	if err != nil {
		c.logger.Warn("forecast feed unparseable, keeping synthesized forecast", "error", err)
		return
	}

	for i := range readings {
		if points, ok := forecasts[readings[i].LocationCode]; ok && len(points) > 0 {
			readings[i].Forecast = points
		}
	}
}

// fetchMonthly tries the current month's file once (with client-level
// retries), then the previous month's once.
func (c *Cycle) fetchMonthly(ctx context.Context, primary, fallback string) (string, error) {
	res := c.fetcher.FetchCSV(ctx, primary, c.opts)
	c.countFetch(res)
	if res.Success {
		return res.Body, nil
	}

	c.logger.Warn("primary feed fetch failed, trying previous month", "url", primary, "error", res.Err)
	c.metrics.FetchFallbacks.Inc()

	res = c.fetcher.FetchCSV(ctx, fallback, c.opts)
	c.countFetch(res)
	if res.Success {
		return res.Body, nil
	}
	return "", fmt.Errorf("both monthly files unavailable: %s", res.Err)
}

func (c *Cycle) countFetch(res upstream.Result) {
	outcome := "success"
	if !res.Success {
		outcome = "error"
	}
	c.metrics.FetchAttempts.WithLabelValues(outcome).Inc()
}

// RunTemperature executes one temperature cycle against the nationwide
// temperature JSON feed.
func (c *Cycle) RunTemperature(ctx context.Context) (Result, error) {
	start := time.Now()
	now := domain.Now()

	res, err := c.runTemperature(ctx, now)
	res.Duration = time.Since(start)

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	c.metrics.IngestCycles.WithLabelValues("temperature", outcome).Inc()
	c.metrics.IngestDuration.WithLabelValues("temperature").Observe(res.Duration.Seconds())

	return res, err
}

func (c *Cycle) runTemperature(ctx context.Context, now time.Time) (Result, error) {
	url := feed.TemperatureURL(c.baseURL)
	var payload feed.TemperaturePayload
	fetched := c.fetcher.FetchJSON(ctx, url, c.opts, &payload)
	c.countFetch(fetched)
	if !fetched.Success {
		return Result{}, fmt.Errorf("fetch temperature feed: %s", fetched.Err)
	}

	readings, err := payload.Readings()
	if err != nil {
		return Result{}, fmt.Errorf("decode temperature feed: %w", err)
	}

	snap := &domain.TemperatureSnapshot{
		Timestamp:  now.UTC().Format(time.RFC3339),
		UpdateTime: domain.FormatUpdateTime(now),
		DataCount:  len(readings),
		Data:       readings,
	}
	if err := c.tempStore.Write(ctx, snap); err != nil {
		return Result{}, fmt.Errorf("store temperature snapshot: %w", err)
	}

	c.logger.Info("temperature cycle complete", "data_count", snap.DataCount)
	return Result{DataCount: snap.DataCount}, nil
}
