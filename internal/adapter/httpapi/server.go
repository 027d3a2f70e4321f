// Package httpapi exposes the cron trigger endpoints, the read API, and the
// operational endpoints.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/masakick/wbgt-checker/internal/directory"
	"github.com/masakick/wbgt-checker/internal/domain"
	"github.com/masakick/wbgt-checker/internal/ingest"
	"github.com/masakick/wbgt-checker/internal/observability"
)

// CycleRunner triggers ingestion cycles on demand.
type CycleRunner interface {
	Run(ctx context.Context) (ingest.Result, error)
	RunTemperature(ctx context.Context) (ingest.Result, error)
}

// SnapshotReader serves the current snapshot and per-location readings.
type SnapshotReader interface {
	Read(ctx context.Context) (*domain.Snapshot, error)
	ReadLocation(ctx context.Context, code string) (domain.WBGTReading, error)
}

// TemperatureReader serves the current temperature snapshot.
type TemperatureReader interface {
	Read(ctx context.Context) (*domain.TemperatureSnapshot, error)
}

// Server exposes the service over HTTP.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	metrics    *observability.Metrics

	cycles     CycleRunner
	store      SnapshotReader
	tempStore  TemperatureReader
	dir        *directory.Directory
	cronSecret string
}

// NewServer creates the HTTP server with all routes registered.
func NewServer(
	addr string,
	cycles CycleRunner,
	store SnapshotReader,
	tempStore TemperatureReader,
	dir *directory.Directory,
	cronSecret string,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger:     logger,
		metrics:    metrics,
		cycles:     cycles,
		store:      store,
		tempStore:  tempStore,
		dir:        dir,
		cronSecret: cronSecret,
	}

	// The upstream scheduler calls the cron routes with GET; manual
	// operators tend to POST. Both are accepted.
	for _, method := range []string{"GET", "POST"} {
		mux.HandleFunc(method+" /api/cron/fetch-wbgt", s.instrument("cron_fetch_wbgt", s.requireCronSecret(s.handleFetchWBGT)))
		mux.HandleFunc(method+" /api/cron/fetch-temperature", s.instrument("cron_fetch_temperature", s.requireCronSecret(s.handleFetchTemperature)))
	}

	mux.HandleFunc("GET /api/data/wbgt", s.instrument("data_wbgt", s.handleDataWBGT))
	mux.HandleFunc("GET /api/data/temperature", s.instrument("data_temperature", s.handleDataTemperature))
	mux.HandleFunc("GET /api/wbgt/{code}", s.instrument("wbgt_location", s.handleLocation))
	mux.HandleFunc("POST /api/wbgt/multiple", s.instrument("wbgt_multiple", s.handleMultiple))
	mux.HandleFunc("GET /api/search", s.instrument("search", s.handleSearch))
	mux.HandleFunc("GET /api/locations", s.instrument("locations", s.handleLocations))

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// handleReady reports ready once a snapshot exists, from any tier.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if _, err := s.store.Read(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// statusRecorder captures the response code for the request counter.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		s.metrics.APIRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
