package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/genomap/pkg/observability"
	"github.com/matzehuels/genomap/pkg/pipeline"
)

// Server defaults.
const (
	DefaultAddr           = "127.0.0.1:8080"
	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxBodyBytes   = 32 << 20
	shutdownTimeout       = 10 * time.Second
)

// Server handles layout requests.
type Server struct {
	Runner  *pipeline.Runner
	Logger  *log.Logger
	Metrics *observability.MetricsHooks

	// MaxBodyBytes limits request bodies.
	MaxBodyBytes int64
	// RequestTimeout bounds the handling of one request.
	RequestTimeout time.Duration

	router chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics exposes m on /metrics.
func WithMetrics(m *observability.MetricsHooks) Option {
	return func(s *Server) { s.Metrics = m }
}

// WithMaxBodyBytes sets the request body limit.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) { s.MaxBodyBytes = n }
}

// WithRequestTimeout sets the per-request timeout.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) { s.RequestTimeout = d }
}

// NewServer returns a server backed by runner.
func NewServer(runner *pipeline.Runner, logger *log.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		Runner:         runner,
		Logger:         logger,
		MaxBodyBytes:   DefaultMaxBodyBytes,
		RequestTimeout: DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.RequestTimeout))

	r.Get("/healthz", s.handleHealth)
	if s.Metrics != nil {
		r.Get("/metrics", s.handleMetrics)
	}
	r.Route("/v1", func(r chi.Router) {
		r.Get("/strategies", s.handleStrategies)
		r.Post("/layout", s.handleLayout)
		r.Post("/query", s.handleQuery)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, notFound(r.URL.Path))
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
