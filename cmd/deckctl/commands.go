package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/phrazzld/action-deck/internal/domain"
)

func newStatsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show today's counters and your streak",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd.Context(), flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			snap := a.Controller.Snapshot()
			p := snap.Progress
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "completed today: %d\n", p.CompletedToday)
			_, _ = fmt.Fprintf(out, "skipped today:   %d\n", p.SkippedToday)
			_, _ = fmt.Fprintf(out, "current streak:  %d\n", p.CurrentStreak)
			_, _ = fmt.Fprintf(out, "longest streak:  %d\n", p.LongestStreak)
			_, _ = fmt.Fprintf(out, "total completed: %d\n", p.TotalCompleted)
			if snap.Premium {
				_, _ = fmt.Fprintln(out, "plan:            premium")
			} else {
				_, _ = fmt.Fprintf(out, "plan:            free (%d of %d left today)\n", snap.RemainingFree, snap.DailyFreeLimit)
			}
			return nil
		},
	}
}

func newHistoryCmd(flags *rootFlags) *cobra.Command {
	history := &cobra.Command{
		Use:   "history",
		Short: "List completed actions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd.Context(), flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			g := a.Ledger.Grouped()
			out := cmd.OutOrStdout()
			if g.Total == 0 {
				_, _ = fmt.Fprintln(out, "no wins yet")
				return nil
			}
			printGroup(out, "Today", g.Today)
			printGroup(out, "Yesterday", g.Yesterday)
			printGroup(out, "Earlier", g.Earlier)
			_, _ = fmt.Fprintf(out, "%d total\n", g.Total)
			return nil
		},
	}

	var yes bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every completed action (counters are kept)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear history without --yes")
			}
			a, err := loadApp(cmd.Context(), flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			n := a.Ledger.Total()
			a.Ledger.ClearAll(cmd.Context())
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "cleared %d entries\n", n)
			return nil
		},
	}
	clearCmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")

	history.AddCommand(clearCmd)
	return history
}

func printGroup(out io.Writer, label string, entries []domain.CompletedAction) {
	if len(entries) == 0 {
		return
	}
	_, _ = fmt.Fprintf(out, "%s\n", label)
	for _, e := range entries {
		_, _ = fmt.Fprintf(out, "  %s  %-9s %s\n", e.CompletedAt.Local().Format(time.Kitchen), e.Category, e.Title)
	}
}

func newRestoreCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "restore",
		Short: "Restore purchases from the entitlement service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd.Context(), flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			premium, err := a.Controller.Restore(cmd.Context())
			if err != nil {
				return fmt.Errorf("restore failed: %w", err)
			}
			if premium {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "premium restored")
			} else {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no active purchase found")
			}
			return nil
		},
	}
}

func newUnlockCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "unlock",
		Short: "Record a premium purchase",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd.Context(), flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			snap := a.Controller.Unlock(cmd.Context())
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "premium unlocked, %d cards in deck\n", len(snap.Deck))
			return nil
		},
	}
}
