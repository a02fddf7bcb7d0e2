package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/sounding-service/internal/domain"
	"github.com/couchcryptid/sounding-service/internal/stations"
)

// One retrieval may walk eight hours across two sources.
const writeTimeout = 5 * time.Minute

// StationDirectory provides the current station table.
type StationDirectory interface {
	GetOrRefresh(ctx context.Context) (*stations.Table, error)
}

// Server exposes health, readiness and metrics endpoints plus the sounding
// and station API.
type Server struct {
	httpServer *http.Server
	retriever  domain.SoundingRetriever
	directory  StationDirectory
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and the
// /api/v1 routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, retriever domain.SoundingRetriever, directory StationDirectory, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: writeTimeout,
			IdleTimeout:  60 * time.Second,
		},
		retriever: retriever,
		directory: directory,
		logger:    logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/v1/soundings", s.withRequestID(s.handleSounding))
	mux.HandleFunc("GET /api/v1/stations", s.withRequestID(s.handleStations))
	mux.HandleFunc("GET /api/v1/stations/{code}", s.withRequestID(s.handleStation))

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

// Readiness combines checkers; the first failure wins.
type Readiness []sharedobs.ReadinessChecker

// CheckReadiness runs every checker in order.
func (rs Readiness) CheckReadiness(ctx context.Context) error {
	for _, r := range rs {
		if err := r.CheckReadiness(ctx); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
