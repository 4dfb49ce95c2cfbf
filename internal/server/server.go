// Package server exposes the compiler over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/lvrach/chatmark/internal/config"
)

const shutdownTimeout = 10 * time.Second

// NewRouter builds the service's routes. token is only checked when auth
// is enabled in cfg.
func NewRouter(cfg config.ServerConfig, token string, c Compiler, logger *slog.Logger) chi.Router {
	h := &handler{compiler: c, maxBody: cfg.MaxBodyBytes}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", health)
	r.Get("/health/ready", health)

	r.Route("/v1", func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Auth.Enabled(), token))
		r.Post("/compile", h.compile)
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully. If ready
// is non-nil it receives the bound address once the listener is open.
func Run(ctx context.Context, cfg config.ServerConfig, token string, c Compiler, logger *slog.Logger, ready chan<- string) error {
	if cfg.Auth.Enabled() && token == "" {
		return errors.New("auth mode is token but no token is configured")
	}

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Addr, err)
	}

	httpServer := &http.Server{
		Handler:           NewRouter(cfg, token, c, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting HTTP server",
			slog.String("address", ln.Addr().String()),
			slog.Bool("auth", cfg.Auth.Enabled()))
		if ready != nil {
			ready <- ln.Addr().String()
		}
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
