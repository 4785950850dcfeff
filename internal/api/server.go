// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package api exposes reference resolution and player sessions over HTTP.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ManuGH/vidresolve/internal/api/middleware"
	"github.com/ManuGH/vidresolve/internal/domain/playback/controller"
	"github.com/ManuGH/vidresolve/internal/domain/video/memo"
	"github.com/ManuGH/vidresolve/internal/domain/video/model"
	"github.com/ManuGH/vidresolve/internal/health"
)

const (
	defaultMaxBodyBytes  = 64 << 10
	defaultMaxListLength = 500
)

// Resolver resolves a single raw reference.
type Resolver interface {
	Resolve(raw string) model.ResolvedVideo
}

// Config holds the HTTP surface settings.
type Config struct {
	AllowedOrigins     []string
	RateLimitPerMinute int
	// TracingService names the service on request spans; empty disables HTTP tracing.
	TracingService string
	MaxBodyBytes   int64
	MaxListLength  int
}

// Deps are the domain components the handlers drive.
type Deps struct {
	Resolver Resolver
	Lists    *memo.Registry
	Sessions *controller.Registry
	Health   *health.Manager
	// Metrics serves the Prometheus exposition; nil leaves /metrics unrouted.
	Metrics http.Handler
}

// Server routes HTTP requests to the resolution and playback components.
type Server struct {
	cfg    Config
	deps   Deps
	router chi.Router
}

// NewServer builds the router.
func NewServer(cfg Config, deps Deps) *Server {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}
	if cfg.MaxListLength <= 0 {
		cfg.MaxListLength = defaultMaxListLength
	}
	s := &Server{cfg: cfg, deps: deps}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	// Probes and scrapes bypass rate limiting and tracing.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Recoverer)
		if s.deps.Health != nil {
			r.Get("/healthz", s.deps.Health.ServeHealth)
			r.Get("/readyz", s.deps.Health.ServeReady)
		}
		if s.deps.Metrics != nil {
			r.Method(http.MethodGet, "/metrics", s.deps.Metrics)
		}
	})

	r.Route("/api/v1", func(r chi.Router) {
		middleware.ApplyStack(r, middleware.StackConfig{
			EnableCORS:            len(s.cfg.AllowedOrigins) > 0,
			AllowedOrigins:        s.cfg.AllowedOrigins,
			EnableSecurityHeaders: true,
			EnableMetrics:         true,
			TracingService:        s.cfg.TracingService,
			EnableLogging:         true,
			RateLimitPerMinute:    s.cfg.RateLimitPerMinute,
		})

		r.Get("/resolve", s.handleResolve)
		r.Route("/lists/{listID}", func(r chi.Router) {
			r.Post("/resolve", s.handleResolveList)
			r.Delete("/", s.handleDropList)
		})
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", s.handleGetSession)
				r.Delete("/", s.handleCloseSession)
				r.Put("/reference", s.handleReplaceReference)
				r.Post("/events", s.handleSessionEvent)
				r.Post("/retry", s.handleRetrySession)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "not_found", "no such route")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", r.Method+" is not allowed here")
	})
	return r
}
