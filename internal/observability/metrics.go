package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// ingestion service.
type Metrics struct {
	IngestCycles   *prometheus.CounterVec // labels: feed={wbgt,temperature}, outcome={success,error}
	IngestDuration *prometheus.HistogramVec
	ReadingsKept   prometheus.Gauge
	RowsDropped    prometheus.Counter

	// Upstream fetch metrics.
	FetchAttempts  *prometheus.CounterVec // labels: outcome={success,error}
	FetchFallbacks prometheus.Counter

	ValidationFailures prometheus.Counter

	// Read API metrics.
	APIRequests       *prometheus.CounterVec // labels: route, status
	PlaceholderServes prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		IngestCycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wbgt",
			Name:      "ingest_cycles_total",
			Help:      "Ingestion cycles by feed and outcome.",
		}, []string{"feed", "outcome"}),
		IngestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "wbgt",
			Name:      "ingest_cycle_duration_seconds",
			Help:      "Duration of a complete fetch-parse-store cycle.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"feed"}),
		ReadingsKept: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "wbgt",
			Name:      "snapshot_readings",
			Help:      "Number of location readings in the current snapshot.",
		}),
		RowsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wbgt",
			Name:      "feed_rows_dropped_total",
			Help:      "Feed columns skipped for unknown codes or unparseable cells.",
		}),
		FetchAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wbgt",
			Name:      "fetch_attempts_total",
			Help:      "Upstream HTTP fetch attempts by outcome.",
		}, []string{"outcome"}),
		FetchFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wbgt",
			Name:      "fetch_fallbacks_total",
			Help:      "Cycles that fell back to the previous month's file.",
		}),
		ValidationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wbgt",
			Name:      "validation_failures_total",
			Help:      "Parsed batches rejected by validation.",
		}),
		APIRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wbgt",
			Name:      "api_requests_total",
			Help:      "Read API requests by route and status code.",
		}, []string{"route", "status"}),
		PlaceholderServes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wbgt",
			Name:      "placeholder_serves_total",
			Help:      "Location reads answered with a placeholder reading.",
		}),
	}

	prometheus.MustRegister(
		m.IngestCycles,
		m.IngestDuration,
		m.ReadingsKept,
		m.RowsDropped,
		m.FetchAttempts,
		m.FetchFallbacks,
		m.ValidationFailures,
		m.APIRequests,
		m.PlaceholderServes,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		IngestCycles:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "wbgt", Name: "ingest_cycles_total"}, []string{"feed", "outcome"}),
		IngestDuration:     prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "wbgt", Name: "ingest_cycle_duration_seconds"}, []string{"feed"}),
		ReadingsKept:       prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "wbgt", Name: "snapshot_readings"}),
		RowsDropped:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "wbgt", Name: "feed_rows_dropped_total"}),
		FetchAttempts:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "wbgt", Name: "fetch_attempts_total"}, []string{"outcome"}),
		FetchFallbacks:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "wbgt", Name: "fetch_fallbacks_total"}),
		ValidationFailures: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "wbgt", Name: "validation_failures_total"}),
		APIRequests:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "wbgt", Name: "api_requests_total"}, []string{"route", "status"}),
		PlaceholderServes:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "wbgt", Name: "placeholder_serves_total"}),
	}
}
