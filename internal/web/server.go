package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/buemura/rock/internal/config"
	"github.com/buemura/rock/internal/scan"
	"github.com/buemura/rock/internal/web/jobs"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP server for the rock scan API.
type Server struct {
	router   chi.Router
	addr     string
	registry *scan.Registry
	defaults config.Config
	manager  *jobs.Manager
	logger   *slog.Logger
}

// NewServer builds a new Server with middleware and routes configured.
// defaults seeds every submitted scan; opts are applied to every executor.
func NewServer(addr string, reg *scan.Registry, defaults config.Config, logger *slog.Logger, opts ...scan.Option) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		router:   chi.NewRouter(),
		addr:     addr,
		registry: reg,
		defaults: defaults,
		manager:  jobs.NewManager(reg, logger, opts...),
		logger:   logger,
	}

	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.registerRoutes()

	return s
}

// Start listens on the configured address until ctx is cancelled, then
// shuts down gracefully and cancels running jobs.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.manager.Shutdown()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.manager.Shutdown()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Router exposes the chi.Router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// Manager exposes the job manager for testing.
func (s *Server) Manager() *jobs.Manager {
	return s.manager
}
