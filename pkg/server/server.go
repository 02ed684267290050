// Package server exposes the layout engine as a stateless JSON HTTP API.
//
// Every endpoint takes the full input in the request body and returns the
// settled result, so requests are independent and safe to retry. Results
// are cached by the [pipeline.Runner] the server wraps.
//
// # Endpoints
//
//	GET  /healthz          liveness probe
//	GET  /version          build information
//	GET  /metrics          Prometheus metrics (when a gatherer is configured)
//	POST /v1/compact       compact a layout
//	POST /v1/move          move one item, cascading displaced items
//	POST /v1/resize        resize one item on a handle
//	POST /v1/synchronize   reconcile a layout with declared children
//	POST /v1/calc-xy       pixel offset to grid cell
//	POST /v1/position      grid rectangle to pixels
//
// Request bodies carry an optional "options" object (see [pipeline.Options]).
// Unset option fields take the server defaults. Errors are returned as
//
//	{"error": {"code": "ITEM_NOT_FOUND", "message": "item \"x\" not found"}}
//
// with the status chosen by [errors.HTTPStatus].
package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/stackgrid/pkg/errors"
	"github.com/matzehuels/stackgrid/pkg/pipeline"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 4 << 20

// Config configures the HTTP listener.
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDefaults sets the options applied to fields a request leaves unset.
func WithDefaults(opts pipeline.Options) Option {
	return func(s *Server) { s.defaults = opts }
}

// WithGatherer serves the gatherer's metrics on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// Server is the HTTP front end of a [pipeline.Runner].
type Server struct {
	cfg      Config
	runner   *pipeline.Runner
	defaults pipeline.Options
	logger   *log.Logger
	gatherer prometheus.Gatherer
}

// New creates a server around runner. The runner is not closed by the
// server.
func New(runner *pipeline.Runner, cfg Config, opts ...Option) (*Server, error) {
	if runner == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "server: runner is nil")
	}
	if cfg.Addr == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "server: addr is empty")
	}
	s := &Server{cfg: cfg, runner: runner, logger: log.Default()}
	for _, o := range opts {
		o(s)
	}
	if err := s.defaults.ValidateAndSetDefaults(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "server defaults")
	}
	return s, nil
}

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.cfg.Addr }

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		r.Post("/compact", s.handleCompact)
		r.Post("/move", s.handleMove)
		r.Post("/resize", s.handleResize)
		r.Post("/synchronize", s.handleSynchronize)
		r.Post("/calc-xy", s.handleCalcXY)
		r.Post("/position", s.handlePosition)
	})
	return r
}

// Serve accepts connections on ln until ctx is canceled, then shuts down
// gracefully within the configured shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		timeout := s.cfg.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		s.logger.Info("shutting down", "timeout", timeout)
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// ListenAndServe listens on the configured address and calls [Server.Serve].
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.logger.Info("listening", "addr", ln.Addr().String())
	return s.Serve(ctx, ln)
}
