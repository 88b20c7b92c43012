// Package progress owns the user's daily counters and streak and keeps them
// in sync with the settings store.
package progress

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/action-deck/internal/domain"
	"github.com/phrazzld/action-deck/internal/domain/streak"
	"github.com/phrazzld/action-deck/internal/store"
)

// Tracker applies streak arithmetic to the stored progress. Every mutation
// is written through to the store and flushed; write failures are logged and
// the in-memory state is kept.
type Tracker struct {
	store  store.SettingsStore
	streak streak.Service
	now    func() time.Time
	logger *slog.Logger

	mu       sync.RWMutex
	progress domain.Progress
	// reconciledAt is when the rollover last ran; zero before the first run.
	reconciledAt time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// NewTracker creates a Tracker with zeroed progress. Call Load to read the
// persisted values.
func NewTracker(s store.SettingsStore, svc streak.Service, logger *slog.Logger, opts ...Option) *Tracker {
	if s == nil {
		panic("settings store cannot be nil")
	}
	if svc == nil {
		svc = streak.NewDefaultService()
	}
	if logger == nil {
		logger = slog.Default()
	}

	t := &Tracker{
		store:  s,
		streak: svc,
		now:    time.Now,
		logger: logger.With(slog.String("component", "progress_tracker")),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Load reads every counter from the store. Missing keys default to zero and
// unreadable values are logged and treated as missing.
func (t *Tracker) Load(ctx context.Context) {
	p := domain.Progress{
		CompletedToday: t.loadInt(ctx, store.KeyCompletedToday),
		SkippedToday:   t.loadInt(ctx, store.KeySkippedToday),
		CurrentStreak:  t.loadInt(ctx, store.KeyCurrentStreak),
		LongestStreak:  t.loadInt(ctx, store.KeyLongestStreak),
		TotalCompleted: t.loadInt(ctx, store.KeyTotalCompleted),
	}

	raw, err := store.GetString(ctx, t.store, store.KeyLastCompletedDate)
	switch {
	case err == nil && raw != "":
		last, perr := time.Parse(time.RFC3339Nano, raw)
		if perr != nil {
			t.logger.WarnContext(ctx, "ignoring unreadable last completion date",
				slog.String("value", raw))
			break
		}
		p.LastCompletedAt = &last
	case err != nil && !errors.Is(err, store.ErrNotFound):
		t.logger.WarnContext(ctx, "failed to read last completion date",
			slog.String("error", err.Error()))
	}

	if p.LongestStreak < p.CurrentStreak {
		p.LongestStreak = p.CurrentStreak
	}

	t.mu.Lock()
	t.progress = p
	t.mu.Unlock()
}

// Reconcile applies the daily rollover for the current time.
func (t *Tracker) Reconcile(ctx context.Context) domain.Progress {
	return t.apply(ctx, "reconcile", t.streak.Reconcile)
}

// RolloverIfNewDay runs Reconcile when the calendar day has moved on since
// the last rollover, and reports whether it ran. Long-running processes call
// it before every operation so each day starts a fresh quota.
func (t *Tracker) RolloverIfNewDay(ctx context.Context) (domain.Progress, bool) {
	now := t.now()

	t.mu.RLock()
	last := t.reconciledAt
	t.mu.RUnlock()

	if !last.IsZero() && t.streak.DaysBetween(last, now) <= 0 {
		return t.Snapshot(), false
	}
	return t.Reconcile(ctx), true
}

// RecordCompletion counts one completed action and updates the streak.
func (t *Tracker) RecordCompletion(ctx context.Context) domain.Progress {
	return t.apply(ctx, "record_completion", t.streak.RecordCompletion)
}

// RecordSkip counts one skipped card.
func (t *Tracker) RecordSkip(ctx context.Context) domain.Progress {
	return t.apply(ctx, "record_skip", func(p *domain.Progress, _ time.Time) (*domain.Progress, error) {
		next := p.Clone()
		next.SkippedToday++
		return next, nil
	})
}

// Snapshot returns a copy of the current progress.
func (t *Tracker) Snapshot() domain.Progress {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return *t.progress.Clone()
}

// CompletedToday returns today's completion count.
func (t *Tracker) CompletedToday() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.progress.CompletedToday
}

type step func(p *domain.Progress, now time.Time) (*domain.Progress, error)

func (t *Tracker) apply(ctx context.Context, op string, fn step) domain.Progress {
	now := t.now()

	t.mu.Lock()
	next, err := fn(&t.progress, now)
	if err != nil {
		current := *t.progress.Clone()
		t.mu.Unlock()
		t.logger.ErrorContext(ctx, "progress update failed",
			slog.String("operation", op),
			slog.String("error", err.Error()))
		return current
	}
	if last := t.progress.LastCompletedAt; op == "reconcile" && last != nil && now.Before(*last) {
		t.logger.WarnContext(ctx, "clock is behind last completion, rollover skipped",
			slog.Time("last_completed_at", *last),
			slog.Time("now", now))
	}
	t.progress = *next
	if op == "reconcile" {
		t.reconciledAt = now
	}
	snapshot := *next.Clone()
	t.mu.Unlock()

	t.persist(ctx, op, snapshot)
	return snapshot
}

func (t *Tracker) persist(ctx context.Context, op string, p domain.Progress) {
	last := ""
	if p.LastCompletedAt != nil {
		last = p.LastCompletedAt.Format(time.RFC3339Nano)
	}

	err := errors.Join(
		store.SetInt(ctx, t.store, store.KeyCompletedToday, p.CompletedToday),
		store.SetInt(ctx, t.store, store.KeySkippedToday, p.SkippedToday),
		store.SetInt(ctx, t.store, store.KeyCurrentStreak, p.CurrentStreak),
		store.SetInt(ctx, t.store, store.KeyLongestStreak, p.LongestStreak),
		store.SetInt(ctx, t.store, store.KeyTotalCompleted, p.TotalCompleted),
		store.SetString(ctx, t.store, store.KeyLastCompletedDate, last),
	)
	if err == nil {
		err = t.store.Flush(ctx)
	}
	if err != nil {
		t.logger.ErrorContext(ctx, "failed to persist progress",
			slog.String("operation", op),
			slog.String("error", err.Error()))
	}
}

func (t *Tracker) loadInt(ctx context.Context, key string) int {
	n, err := store.GetInt(ctx, t.store, key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			t.logger.WarnContext(ctx, "ignoring unreadable counter",
				slog.String("key", key),
				slog.String("error", err.Error()))
		}
		return 0
	}
	if n < 0 {
		t.logger.WarnContext(ctx, "ignoring negative counter", slog.String("key", key), slog.Int("value", n))
		return 0
	}
	return n
}
