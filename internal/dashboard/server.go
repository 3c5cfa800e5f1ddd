// Package dashboard serves the checkout funnel analytics web UI.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/meridian-data/funnelboard/internal/cache"
	"github.com/meridian-data/funnelboard/internal/dashboard/notifier"
	"github.com/meridian-data/funnelboard/internal/funnel"
)

// Server is the dashboard web server.
type Server struct {
	pipeline *funnel.Pipeline
	cache    *cache.Cache
	port     int
	logger   *slog.Logger
	notifier *notifier.Notifier
}

// Config holds configuration for the dashboard server.
type Config struct {
	Pipeline *funnel.Pipeline
	Cache    *cache.Cache
	Port     int
	Logger   *slog.Logger
}

// NewServer creates a new dashboard server instance.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		pipeline: cfg.Pipeline,
		cache:    cfg.Cache,
		port:     cfg.Port,
		logger:   logger,
		notifier: notifier.New(),
	}
}

// Notifier returns the server's notifier for refresh broadcasts.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}

// Serve starts the dashboard server and blocks until the context is
// cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting dashboard", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	eg, egctx := errgroup.WithContext(ctx)

	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)
	setupRoutes(r, NewHandlers(s.pipeline, s.cache, s.notifier, s.logger))

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down dashboard...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

func setupRoutes(r chi.Router, h *Handlers) {
	r.Get("/", h.Board)
	r.Get("/data", h.Data)
	r.Get("/updates", h.Updates)
	r.Post("/refresh", h.Refresh)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}
