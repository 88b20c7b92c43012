package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/phrazzld/action-deck/internal/app"
)

const shutdownTimeout = 10 * time.Second

type server struct {
	app    *app.App
	logger *slog.Logger
}

// run serves HTTP until SIGINT, SIGTERM or ctx cancellation, then shuts the
// server down gracefully and closes the application.
func (s *server) run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.app.Config.Server.Port),
		Handler:           setupRouter(s.app),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", slog.Int("port", s.app.Config.Server.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		s.logger.Info("shutting down server")
	case err := <-serveErr:
		if err != nil {
			s.logger.Error("server failed", slog.String("error", err.Error()))
			runErr = fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("server shutdown failed", slog.String("error", err.Error()))
		runErr = errors.Join(runErr, fmt.Errorf("server shutdown failed: %w", err))
	}

	if err := s.app.Close(); err != nil {
		runErr = errors.Join(runErr, err)
	}

	s.logger.Info("server shutdown completed")
	return runErr
}
