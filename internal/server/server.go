// Package server exposes the HTTP API: instrumented CRUD endpoints over the
// store, benchmark control, and live metrics feeds (JSON, SSE, WebSocket).
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/redlens/redlens/internal/loadgen"
	"github.com/redlens/redlens/internal/metrics"
	"github.com/redlens/redlens/internal/store"
	"github.com/redlens/redlens/internal/tracing"
)

// Server wires the shared dependencies into HTTP handlers. Every data
// endpoint records one Sample into the collector, so dashboard traffic and
// generated load land in the same timeline.
type Server struct {
	store     store.Store
	collector *metrics.Collector
	bench     *loadgen.Controller
	tracer    *tracing.Provider
	staticDir string
}

func New(st store.Store, collector *metrics.Collector, bench *loadgen.Controller, tracer *tracing.Provider, staticDir string) *Server {
	return &Server{
		store:     st,
		collector: collector,
		bench:     bench,
		tracer:    tracer,
		staticDir: staticDir,
	}
}

// Router builds the chi router with all API routes and the static fallback.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))
	r.Use(s.timing)

	r.Get("/api/users/{id}", s.getUser)
	r.Post("/api/users", s.createUser)

	r.Get("/api/sessions/{id}", s.getSession)
	r.Post("/api/sessions", s.createSession)

	r.Get("/api/products/{id}", s.getProduct)

	r.Post("/api/benchmark/start", s.startBenchmark)
	r.Post("/api/benchmark/stop", s.stopBenchmark)
	r.Get("/api/benchmark/status", s.benchmarkStatus)

	r.Get("/api/metrics", s.getMetrics)
	r.Get("/api/metrics/stream", s.metricsStream)
	r.Get("/api/metrics/ws", s.metricsWS)

	if s.staticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(s.staticDir)))
	}

	return r
}
