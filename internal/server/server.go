// Package server exposes the normalized catalog and the cost calculator
// over HTTP.
package server

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/af-corp/llm-cost-calculator/internal/catalog"
	"github.com/af-corp/llm-cost-calculator/internal/httputil"
	"github.com/af-corp/llm-cost-calculator/internal/ratelimit"
	"github.com/af-corp/llm-cost-calculator/internal/reference"
	"github.com/af-corp/llm-cost-calculator/internal/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Options struct {
	Catalog *Catalog
	// Index is called per request so config reloads take effect.
	Index          func() reference.Index
	Metrics        *telemetry.Metrics
	MetricsHandler http.Handler
	Logger         *slog.Logger
	StaticDir      string
	Version        string
	// RateLimiter and RateLimitRPM throttle the calculator endpoints per
	// client. A nil limiter or zero RPM disables throttling.
	RateLimiter  ratelimit.Checker
	RateLimitRPM int
}

type Server struct {
	catalog        *Catalog
	index          func() reference.Index
	metrics        *telemetry.Metrics
	metricsHandler http.Handler
	logger         *slog.Logger
	staticDir      string
	version        string
	limiter        ratelimit.Checker
	rpm            int
}

func New(opts Options) *Server {
	index := opts.Index
	if index == nil {
		index = reference.DefaultIndex
	}
	return &Server{
		catalog:        opts.Catalog,
		index:          index,
		metrics:        opts.Metrics,
		metricsHandler: opts.MetricsHandler,
		logger:         opts.Logger,
		staticDir:      opts.StaticDir,
		version:        opts.Version,
		limiter:        opts.RateLimiter,
		rpm:            opts.RateLimitRPM,
	}
}

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(httputil.RequestID)
	r.Use(s.instrument)

	r.Get("/health", s.health)
	if s.metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", s.metricsHandler)
	}
	r.Get("/pricing/normalized-pricing.json", s.servePricing)
	r.Get("/pricing/schema.json", s.serveSchema)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/defaults", s.listDefaults)
		r.Get("/providers", s.listProviders)
		r.Get("/regions", s.listRegions)
		r.Get("/references", s.findReferences)

		r.Group(func(r chi.Router) {
			if s.limiter != nil && s.rpm > 0 {
				r.Use(ratelimit.Middleware(s.limiter, s.rpm, s.logger, s.recordRateLimitHit))
			}
			r.Post("/estimate", s.estimate)
			r.Post("/compare", s.compare)
			r.Post("/embedding", s.embedding)
			r.Post("/tokens", s.countTokens)
		})
	})

	if s.staticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(s.staticDir)))
	}
	return r
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		if s.metrics == nil {
			return
		}
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.RecordRequest(route, strconv.Itoa(status), time.Since(start))
	})
}

func (s *Server) serveSchema(w http.ResponseWriter, r *http.Request) {
	data, err := catalog.Schema()
	if err != nil {
		httputil.WriteInternalError(w, w.Header().Get("X-Request-ID"), "failed to build catalog schema")
		return
	}
	w.Header().Set("Content-Type", "application/schema+json")
	w.Write(data)
}

func (s *Server) recordRateLimitHit(r *http.Request) {
	if s.metrics != nil {
		s.metrics.RecordRateLimitHit(r.URL.Path)
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	_, records, source := s.catalog.Snapshot()
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"status":         "healthy",
		"version":        s.version,
		"catalog_source": source,
		"catalog_size":   len(records),
	})
}

func (s *Server) servePricing(w http.ResponseWriter, r *http.Request) {
	data, _, source := s.catalog.Snapshot()
	if s.metrics != nil {
		s.metrics.RecordCatalogServed(source)
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Catalog-Source", source)
	w.Write(data)
}
