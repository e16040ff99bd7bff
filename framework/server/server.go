// Package server exposes an Application over HTTP.
package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/km-arc/go-neatbox/framework/app"
	gohttp "github.com/km-arc/go-neatbox/framework/http"
)

// assetsPrefix is where Paths.Public is served.
const assetsPrefix = "/assets"

// Server serves an Application through a chi Router.
type Server struct {
	app    *app.Application
	router *Router
	logger *zap.Logger

	metricsPath     string
	shutdownTimeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithMetricsPath serves Prometheus metrics at path. An empty path disables
// the endpoint. Default: "/metrics".
func WithMetricsPath(path string) Option {
	return func(s *Server) { s.metricsPath = path }
}

// WithShutdownTimeout bounds graceful shutdown. Default: 30s.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) { s.shutdownTimeout = d }
}

// New creates a Server for a. chi serves /healthz, the metrics endpoint and
// the public directory under /assets; requests no chi route claims are
// handled by a.Handle.
func New(a *app.Application, opts ...Option) *Server {
	s := &Server{
		app:             a,
		logger:          a.Logger().Named("server"),
		metricsPath:     "/metrics",
		shutdownTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}

	cfg := a.Config()
	s.router = NewRouter(s.logger)
	if cfg.App.TrustProxies {
		s.router.Middleware(forwardedScheme)
	}

	s.router.Group(func(r *Router) {
		r.Middleware(middleware.NoCache)
		r.Get("/healthz", s.health)
		if s.metricsPath != "" {
			r.Handle(s.metricsPath, promhttp.HandlerFor(a.Metrics().Registry(), promhttp.HandlerOpts{}))
		}
	})
	if dir := cfg.Paths.Public; dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			s.router.Static(assetsPrefix, dir)
		}
	}
	s.router.Fallback(s.dispatch)
	return s
}

// health answers 200 once the application has booted, 503 before.
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if !s.app.Booted() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, "booting\n")
		return
	}
	_, _ = io.WriteString(w, "ok\n")
}

// Router returns the chi router for extra routes. The root middleware stack
// is fixed once routes exist; add middleware inside Router().Group.
func (s *Server) Router() *Router { return s.router }

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request) {
	req := gohttp.NewRequest(r)
	id := middleware.GetReqID(r.Context())
	if id == "" {
		id = uuid.NewString()
	}
	req.SetID(id)

	res, err := s.app.Handle(req)
	if err != nil {
		res = s.errorResponse(req, err)
	}
	if err := res.WriteTo(w); err != nil {
		s.logger.Warn("writing response failed", zap.String("request_id", id), zap.Error(err))
	}
}

func (s *Server) errorResponse(req *gohttp.Request, err error) *gohttp.Response {
	if errors.Is(err, app.ErrNotFound) {
		s.logger.Debug("not found", zap.String("request_id", req.ID()), zap.String("uri", req.URI()), zap.Error(err))
		return gohttp.NotFound()
	}
	s.logger.Error("request failed",
		zap.String("request_id", req.ID()),
		zap.String("method", req.Method()),
		zap.String("uri", req.URI()),
		zap.Error(err),
	)
	if s.app.IsDebug() {
		return gohttp.ServerError(err.Error())
	}
	return gohttp.ServerError()
}

// ── Serve ────────────────────────────────────────────────────────────────────

// ListenAndServe boots the application and serves addr until ctx is done,
// then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if err := s.app.Boot(); err != nil {
		_ = ln.Close()
		return err
	}

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("listening",
		zap.String("addr", ln.Addr().String()),
		zap.String("app", s.app.Config().App.Name),
		zap.String("env", s.app.Environment()),
	)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
