// Package server exposes the layout organizer over HTTP.
//
// Routes:
//
//	POST /v1/layout    lay out a set of tiles and return one frame
//	POST /v1/simulate  replay a TOML scenario and return its frames
//	GET  /healthz      liveness probe
//	GET  /metrics      Prometheus metrics
//
// Every request builds its own organizer; the server holds no session state.
package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/tileorg/pkg/cache"
	"github.com/matzehuels/tileorg/pkg/pipeline"
)

const shutdownTimeout = 10 * time.Second

// Server is the HTTP front end.
type Server struct {
	cfg     Config
	logger  *log.Logger
	metrics *Metrics
	cache   cache.Cache
	runner  *pipeline.Runner
	router  chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCache sets the scenario cache, overriding Config.RedisURL.
func WithCache(c cache.Cache) Option {
	return func(s *Server) { s.cache = c }
}

// WithMetrics sets the metrics collectors.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// New builds a server. When Config.RedisURL is set and no cache was given,
// simulation results are cached in Redis.
func New(ctx context.Context, cfg Config, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}
	if s.cache == nil {
		if cfg.RedisURL != "" {
			rc, err := cache.NewRedisCache(ctx, cfg.RedisURL, "tileorg:")
			if err != nil {
				return nil, err
			}
			s.cache = rc
		} else {
			s.cache = cache.NewNullCache()
		}
	}
	var keyer cache.Keyer
	if cfg.Scope != "" {
		keyer = cache.NewScopedKeyer(nil, cfg.Scope+":")
	}
	s.runner = pipeline.NewRunner(s.cache, keyer, s.logger)
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(requestLogger(s.logger, s.metrics))

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	r.Route("/v1", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)
		r.Post("/simulate", s.handleSimulate)
	})
	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Metrics returns the server's collectors.
func (s *Server) Metrics() *Metrics { return s.metrics }

// Run installs the metrics hooks, serves on Config.Addr and shuts down
// gracefully when ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.metrics.Install()
	srv := &http.Server{Addr: s.cfg.Addr, Handler: s.router, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()
	s.logger.Info("server starting", "addr", s.cfg.Addr, "redis", s.cfg.RedisURL != "")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutdown signal received, draining connections")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

// Close releases the cache.
func (s *Server) Close() error {
	return s.runner.Close()
}
