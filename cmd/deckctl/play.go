package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/phrazzld/action-deck/internal/app"
	"github.com/phrazzld/action-deck/internal/domain"
	"github.com/phrazzld/action-deck/internal/events"
	"github.com/phrazzld/action-deck/internal/session"
)

const playHelp = "[a]ccept  [s]kip  [r]eshuffle  [d]ismiss  [q]uit"

// syncWriter serializes writes from the prompt loop and timer callbacks.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = fmt.Fprintf(s.w, format, args...)
}

func newPlayCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Work through today's deck interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := &syncWriter{w: cmd.OutOrStdout()}
			signals := events.HandlerFunc(func(_ context.Context, e *events.Event) error {
				printSignal(out, e)
				return nil
			})

			a, err := loadApp(cmd.Context(), flags, cmd.ErrOrStderr(), app.WithSignalHandler(signals,
				events.TypeDeckReshuffled, events.TypeAtCapacity, events.TypePaywallOpened))
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			return play(cmd.Context(), a.Controller, cmd.InOrStdin(), out)
		},
	}
}

func play(ctx context.Context, ctrl *session.Controller, in io.Reader, out *syncWriter) error {
	out.Printf("%s\n", playHelp)
	printSnapshot(out, ctrl.Snapshot())

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "a", "accept":
			res, err := ctrl.AcceptCurrent(ctx)
			if err != nil {
				return err
			}
			switch res.Outcome {
			case session.OutcomeCompleted:
				out.Printf("nice! %q done (%d today, streak %d)\n",
					res.Completed.Title, res.Progress.CompletedToday, res.Progress.CurrentStreak)
			case session.OutcomeGated:
				out.Printf("daily free limit reached\n")
			case session.OutcomeNoCard:
				out.Printf("no card to accept\n")
			}
		case "s", "skip":
			res := ctrl.SkipCurrent(ctx)
			if res.Skipped {
				out.Printf("skipped %q\n", res.Card.Title)
			}
		case "r", "reshuffle":
			ctrl.Reshuffle(ctx)
		case "d", "dismiss":
			ctrl.DismissPaywall(ctx)
		case "q", "quit":
			return nil
		case "":
			continue
		default:
			out.Printf("%s\n", playHelp)
			continue
		}
		printSnapshot(out, ctrl.Snapshot())
	}
	return scanner.Err()
}

func printSnapshot(out *syncWriter, snap session.Snapshot) {
	switch snap.State {
	case session.StateEmpty:
		out.Printf("the deck is empty\n")
		return
	case session.StateAtQuota:
		out.Printf("(%d of %d free actions used today)\n", snap.Progress.CompletedToday, snap.DailyFreeLimit)
	}
	printCard(out, *snap.Current, snap.Cursor+1, len(snap.Deck))
}

func printCard(out *syncWriter, c domain.ActionCard, pos, total int) {
	out.Printf("\n[%d/%d] %s  (%s, %d min, %s)\n  %s\n> ",
		pos, total, c.Title, c.Category.DisplayName(), c.DurationMinutes, c.Difficulty, c.Description)
}

func printSignal(out *syncWriter, e *events.Event) {
	switch e.Type {
	case events.TypeDeckReshuffled:
		out.Printf("~ fresh deck shuffled\n")
	case events.TypeAtCapacity:
		out.Printf("~ that's all your free actions for today\n")
	case events.TypePaywallOpened:
		out.Printf("~ go premium for unlimited actions: deckctl unlock\n")
	}
}
