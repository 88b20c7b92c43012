// Package main implements the Action Deck HTTP server, which serves a
// single daily session of micro-action cards over a JSON API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/phrazzld/action-deck/internal/app"
	"github.com/phrazzld/action-deck/internal/config"
	"github.com/phrazzld/action-deck/internal/platform/logger"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "server",
		Short:         "Serve the Action Deck session API",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), configPath)
		},
	}
	root.Flags().StringVar(&configPath, "config", "", "config file (default: ./config.yaml if present)")
	return root
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(logger.LoggerConfig{
		Level:  cfg.Server.LogLevel,
		Format: cfg.Server.LogFormat,
		Output: os.Stdout,
	})
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	l.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("storage", cfg.Storage.Driver),
		slog.Int("daily_free_limit", cfg.Session.DailyFreeLimit))

	a, err := app.New(ctx, cfg, l)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	srv := &server{app: a, logger: l.With(slog.String("component", "http_server"))}
	return srv.run(ctx)
}
