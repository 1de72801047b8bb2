// Package http exposes the outlook service over HTTP: health, readiness and
// metrics endpoints plus the JSON API.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/weather-outlook-service/internal/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server serves the API and operational endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// Options configures optional server behavior.
type Options struct {
	// ExportFallbackURL receives a redirect when an export request is invalid.
	ExportFallbackURL string
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and the
// /api/v1 routes.
func NewServer(addr string, svc WeatherService, ready sharedobs.ReadinessChecker, metrics *observability.Metrics, logger *slog.Logger, opts Options) *Server {
	if opts.ExportFallbackURL == "" {
		opts.ExportFallbackURL = "/weather"
	}
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           withRequestLogging(mux, logger),
			ReadTimeout:       10 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			// Climatology fans out one provider call per year.
			WriteTimeout: 90 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	h := &handlers{svc: svc, metrics: metrics, logger: logger, fallbackURL: opts.ExportFallbackURL}
	mux.HandleFunc("GET /api/v1/weather", h.weather)
	mux.HandleFunc("GET /api/v1/weather/range", h.weatherRange)
	mux.HandleFunc("GET /api/v1/export", h.export)
	mux.HandleFunc("GET /api/v1/markers", h.markers)
	mux.HandleFunc("PUT /api/v1/markers", h.syncMarkers)
	mux.HandleFunc("PUT /api/v1/markers/settings", h.updateSettings)
	mux.HandleFunc("POST /api/v1/markers/query", h.queryMarkers)

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
