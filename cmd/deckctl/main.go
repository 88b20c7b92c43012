// Command deckctl drives an Action Deck session from the terminal.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/phrazzld/action-deck/internal/app"
	"github.com/phrazzld/action-deck/internal/config"
	"github.com/phrazzld/action-deck/internal/platform/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootFlags struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	var flags rootFlags

	root := &cobra.Command{
		Use:           "deckctl",
		Short:         "Play and inspect your daily action deck",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default: ./config.yaml if present)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "warn", "log level: debug|info|warn|error")

	root.AddCommand(newPlayCmd(&flags))
	root.AddCommand(newStatsCmd(&flags))
	root.AddCommand(newHistoryCmd(&flags))
	root.AddCommand(newRestoreCmd(&flags))
	root.AddCommand(newUnlockCmd(&flags))
	return root
}

// loadApp builds a session from the config file. Logs go to stderr so
// they never interleave with command output.
func loadApp(ctx context.Context, flags *rootFlags, stderr io.Writer, opts ...app.Option) (*app.App, error) {
	cfg, err := config.LoadFile(flags.configPath)
	if err != nil {
		return nil, err
	}
	l, err := logger.Setup(logger.LoggerConfig{
		Level:  flags.logLevel,
		Format: "text",
		Output: stderr,
	})
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg, l, opts...)
}
