// Package server exposes the transpose engine over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/tuomass/bittranspose-go/pkg/bittranspose"
)

const shutdownTimeout = 5 * time.Second

// Options configures a Server. Zero values fall back to defaults.
type Options struct {
	// DefaultStrands applies when a request has no strands parameter.
	DefaultStrands int
	// MaxBodyBytes caps request bodies; larger bodies get 413.
	MaxBodyBytes int64
	Logger       *zap.Logger
	// Registry receives the server's metrics and backs /metrics.
	Registry *prometheus.Registry
}

// Server serves the transpose endpoints and their metrics.
type Server struct {
	opts    Options
	mux     *http.ServeMux
	log     *zap.Logger
	metrics *metrics
}

// New returns a Server with its routes and metrics registered.
func New(opts Options) *Server {
	if opts.DefaultStrands == 0 {
		opts.DefaultStrands = bittranspose.DefaultStrands
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}

	s := &Server{
		opts:    opts,
		mux:     http.NewServeMux(),
		log:     opts.Logger,
		metrics: newMetrics(opts.Registry),
	}
	s.registerRoutes()
	return s
}

// Handler returns the root handler with logging applied.
func (s *Server) Handler() http.Handler {
	return s.loggingMiddleware(s.mux)
}

// ListenAndServe serves on addr until ctx is cancelled, then drains
// in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "listen")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	s.log.Info("stopped")
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	s.mux.Handle("GET /metrics", promhttp.HandlerFor(s.opts.Registry, promhttp.HandlerOpts{}))

	s.mux.HandleFunc("POST /v1/transpose", s.instrument(opTranspose, s.handleTranspose))
	s.mux.HandleFunc("POST /v1/untranspose", s.instrument(opUntranspose, s.handleUntranspose))
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
