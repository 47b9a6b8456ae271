// Package admin implements pvsimd's optional operator-facing HTTP
// surface: a health check and a Prometheus metrics endpoint.
package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const gracefulShutdownTimeout = 5 * time.Second

// sessionSource reports the live TCP session count; server.Server
// satisfies this.
type sessionSource interface {
	SessionCount() int
}

// Logger is the minimal logging interface this package depends on.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Config bundles the admin listener's tunables.
type Config struct {
	Host string
	Port int
}

// Server is the admin HTTP listener. A Port of 0 at the supervisor
// level means this type is never constructed at all — disabling it
// has no runtime cost, unlike the original simulator which has no
// equivalent surface to disable.
type Server struct {
	cfg     Config
	logger  Logger
	metrics *metrics
	sess    sessionSource

	httpServer *http.Server
}

// New creates an admin Server that reports sess's session count as a
// gauge and exposes it alongside Prometheus metrics and a health
// check.
func New(cfg Config, sess sessionSource) *Server {
	return &Server{
		cfg:     cfg,
		logger:  noopLogger{},
		metrics: newMetrics(),
		sess:    sess,
	}
}

// SetLogger installs a logger for startup/shutdown diagnostics.
func (s *Server) SetLogger(l Logger) {
	if l != nil {
		s.logger = l
	}
}

// Recorder exposes this server's metrics collectors as a
// server.Recorder (structurally — see metrics.go).
func (s *Server) Recorder() *metrics {
	return s.metrics
}

// Run starts the HTTP listener and blocks until ctx is cancelled, then
// shuts down gracefully. Mirrors the teacher's api.Server.Start/Close
// pair collapsed into one ctx-scoped call, the same shape server.Server
// and supervisor.Supervisor use.
func (s *Server) Run(ctx context.Context) error {
	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealthz)
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	stopGauge := s.runSessionGauge(ctx)
	defer stopGauge()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("admin listener starting", "addr", addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down admin server: %w", err)
		}
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("admin listener: %w", err)
		}
		return nil
	}
}

// runSessionGauge periodically samples sess.SessionCount() into the
// Prometheus gauge. Returns a stop function.
func (s *Server) runSessionGauge(ctx context.Context) func() {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				close(done)
				return
			case <-ticker.C:
				s.metrics.sessions.Set(float64(s.sess.SessionCount()))
			}
		}
	}()
	return func() { <-done }
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
