package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/platinummonkey/ratchet/pkg/cache"
	"github.com/platinummonkey/ratchet/pkg/config"
	"github.com/platinummonkey/ratchet/pkg/httputil"
	"github.com/platinummonkey/ratchet/pkg/observability"
)

// Server represents the generation API server
type Server struct {
	config    *config.Config
	logger    *observability.Logger
	metrics   *observability.Metrics
	registry  *prometheus.Registry
	artifacts *cache.ArtifactCache
	router    *mux.Router
}

// NewServer creates the API server and wires its routes
func NewServer(cfg *config.Config, logger *observability.Logger) *Server {
	registry := prometheus.NewRegistry()
	s := &Server{
		config:   cfg,
		logger:   logger,
		metrics:  observability.NewMetrics(registry),
		registry: registry,
		router:   mux.NewRouter(),
	}

	if cfg.Cache.Enabled {
		s.artifacts = cache.NewArtifactCache(&cache.Config{
			MaxEntries: cfg.Cache.MaxEntries,
			TTL:        cfg.Cache.TTL,
		})
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes() {
	instrumented := func(path string, h http.HandlerFunc) http.Handler {
		return s.metrics.InstrumentHandler(path, h)
	}

	s.router.Handle("/api/v1/generate", instrumented("/api/v1/generate", s.handleGenerate)).Methods("POST")
	s.router.Handle("/healthz", instrumented("/healthz", s.handleHealth)).Methods("GET")
	if s.config.Observability.MetricsEnabled {
		s.router.Handle("/metrics", observability.Handler(s.registry)).Methods("GET")
	}

	s.router.Use(mux.MiddlewareFunc(httputil.Chain(
		httputil.RecoveryMiddleware,
		httputil.RequestIDMiddleware,
		httputil.LoggingMiddleware,
		httputil.MaxBytesMiddleware(10*1024*1024),
	)))
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// handleHealth reports liveness
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}
