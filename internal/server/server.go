// Package server implements the forcegraph HTTP API.
//
// Layouts are computed asynchronously: a POST returns a job id at once and
// the simulation runs in the background through the shared pipeline runner.
// Identical documents submitted concurrently share one computation. Finished
// layouts serve hit tests, culling queries and rendered frames until they
// expire.
//
// # Routes
//
//	POST   /v1/layouts?width&height            submit a document, 202 {id}
//	GET    /v1/layouts/{id}                    job status and progress
//	GET    /v1/layouts/{id}/graph              pre-simulated document
//	GET    /v1/layouts/{id}/hit?x&y&tx&ty&k    node under a screen point
//	GET    /v1/layouts/{id}/cull?tx&ty&k       visible node and edge ids
//	GET    /v1/layouts/{id}/frame.{format}     rendered frame
//	DELETE /v1/layouts/{id}                    cancel
//	GET    /healthz
//	GET    /metrics
package server

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/forcegraph/pkg/observability"
	"github.com/matzehuels/forcegraph/pkg/pipeline"
)

// DefaultJobTTL is how long finished jobs stay queryable.
const DefaultJobTTL = time.Hour

// maxBodyBytes bounds uploaded documents.
const maxBodyBytes = 64 << 20

// Options configures a Server.
type Options struct {
	// Defaults are the pipeline options requests start from. Query
	// parameters override the viewport and transform.
	Defaults pipeline.Options

	// JobTTL is how long finished jobs are kept. Zero uses DefaultJobTTL.
	JobTTL time.Duration

	// Gatherer serves /metrics. Nil uses the default prometheus registry.
	Gatherer prometheus.Gatherer
}

// Server is the HTTP API. Create it with New and mount Handler.
type Server struct {
	runner   *pipeline.Runner
	logger   *log.Logger
	defaults pipeline.Options
	ttl      time.Duration
	gatherer prometheus.Gatherer

	// ctx outlives individual requests; layouts run under it.
	ctx    context.Context
	cancel context.CancelFunc

	flight singleflight.Group

	mu   sync.Mutex
	jobs map[string]*job
}

// New creates a server backed by runner.
func New(runner *pipeline.Runner, logger *log.Logger, opts Options) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if opts.JobTTL <= 0 {
		opts.JobTTL = DefaultJobTTL
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	opts.Defaults.SetLayoutDefaults()
	opts.Defaults.SetRenderDefaults()
	opts.Defaults.Logger = logger

	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		runner:   runner,
		logger:   logger,
		defaults: opts.Defaults,
		ttl:      opts.JobTTL,
		gatherer: opts.Gatherer,
		ctx:      ctx,
		cancel:   cancel,
		jobs:     make(map[string]*job),
	}
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1/layouts", func(r chi.Router) {
		r.Post("/", s.handleSubmit)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleStatus)
			r.Delete("/", s.handleCancel)
			r.Get("/graph", s.handleGraph)
			r.Get("/hit", s.handleHit)
			r.Get("/cull", s.handleCull)
			r.Get("/frame.{format}", s.handleFrame)
		})
	})
	return r
}

// Close cancels every running layout.
func (s *Server) Close() {
	s.cancel()
}

// instrument reports every request to the HTTP observability hooks.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(r.Context(), r.Method, route, status, time.Since(start))
	})
}
