// Package ledger keeps the append-only history of completed actions.
package ledger

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/action-deck/internal/domain"
	"github.com/phrazzld/action-deck/internal/store"
)

// Ledger holds completed actions newest first and persists the whole list
// as JSON under store.KeyLedger after every mutation.
type Ledger struct {
	store  store.SettingsStore
	now    func() time.Time
	loc    *time.Location
	logger *slog.Logger

	mu      sync.RWMutex
	actions []domain.CompletedAction
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

// WithLocation sets the location used to decide calendar days.
func WithLocation(loc *time.Location) Option {
	return func(l *Ledger) {
		if loc != nil {
			l.loc = loc
		}
	}
}

// New creates an empty Ledger. Call Load to read persisted history.
func New(s store.SettingsStore, logger *slog.Logger, opts ...Option) *Ledger {
	if s == nil {
		panic("settings store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	l := &Ledger{
		store:  s,
		now:    time.Now,
		loc:    time.Local,
		logger: logger.With(slog.String("component", "ledger")),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load replaces the in-memory history with the persisted one. A missing or
// unreadable value leaves the ledger empty.
func (l *Ledger) Load(ctx context.Context) {
	var actions []domain.CompletedAction
	err := store.GetJSON(ctx, l.store, store.KeyLedger, &actions)

	l.mu.Lock()
	defer l.mu.Unlock()

	switch {
	case err == nil:
		l.actions = actions
	case errors.Is(err, store.ErrNotFound):
		l.actions = nil
	default:
		l.logger.ErrorContext(ctx, "failed to load history, starting empty",
			slog.String("error", err.Error()))
		l.actions = nil
	}
}

// AddWin records card as completed now and returns the new entry.
func (l *Ledger) AddWin(ctx context.Context, card domain.ActionCard) domain.CompletedAction {
	entry := domain.NewCompletedAction(card, l.now())

	l.mu.Lock()
	l.actions = append([]domain.CompletedAction{entry}, l.actions...)
	snapshot := l.copyLocked()
	l.mu.Unlock()

	l.save(ctx, snapshot)
	return entry
}

// ClearAll removes every entry.
func (l *Ledger) ClearAll(ctx context.Context) {
	l.mu.Lock()
	l.actions = nil
	l.mu.Unlock()

	l.save(ctx, []domain.CompletedAction{})
}

// All returns every entry, newest first.
func (l *Ledger) All() []domain.CompletedAction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.copyLocked()
}

// Total returns the number of entries.
func (l *Ledger) Total() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.actions)
}

// Today returns entries completed on the current calendar day.
func (l *Ledger) Today() []domain.CompletedAction {
	return l.filter(func(offset int) bool { return offset == 0 })
}

// Yesterday returns entries completed on the previous calendar day.
func (l *Ledger) Yesterday() []domain.CompletedAction {
	return l.filter(func(offset int) bool { return offset == 1 })
}

// Earlier returns entries that are neither today's nor yesterday's.
func (l *Ledger) Earlier() []domain.CompletedAction {
	return l.filter(func(offset int) bool { return offset != 0 && offset != 1 })
}

// Groups partitions the ledger by calendar day relative to now.
type Groups struct {
	Today     []domain.CompletedAction `json:"today"`
	Yesterday []domain.CompletedAction `json:"yesterday"`
	Earlier   []domain.CompletedAction `json:"earlier"`
	Total     int                      `json:"total"`
}

// Grouped returns all three groups computed against a single clock reading.
func (l *Ledger) Grouped() Groups {
	today := dayIndex(l.now(), l.loc)

	l.mu.RLock()
	defer l.mu.RUnlock()

	g := Groups{
		Today:     []domain.CompletedAction{},
		Yesterday: []domain.CompletedAction{},
		Earlier:   []domain.CompletedAction{},
		Total:     len(l.actions),
	}
	for _, a := range l.actions {
		switch today - dayIndex(a.CompletedAt, l.loc) {
		case 0:
			g.Today = append(g.Today, a)
		case 1:
			g.Yesterday = append(g.Yesterday, a)
		default:
			g.Earlier = append(g.Earlier, a)
		}
	}
	return g
}

func (l *Ledger) filter(keep func(offset int) bool) []domain.CompletedAction {
	today := dayIndex(l.now(), l.loc)

	l.mu.RLock()
	defer l.mu.RUnlock()

	out := []domain.CompletedAction{}
	for _, a := range l.actions {
		if keep(today - dayIndex(a.CompletedAt, l.loc)) {
			out = append(out, a)
		}
	}
	return out
}

func (l *Ledger) copyLocked() []domain.CompletedAction {
	return append([]domain.CompletedAction{}, l.actions...)
}

func (l *Ledger) save(ctx context.Context, actions []domain.CompletedAction) {
	if err := store.SetJSON(ctx, l.store, store.KeyLedger, actions); err != nil {
		l.logger.ErrorContext(ctx, "failed to stage history", slog.String("error", err.Error()))
		return
	}
	if err := l.store.Flush(ctx); err != nil {
		l.logger.ErrorContext(ctx, "failed to flush history", slog.String("error", err.Error()))
	}
}

// dayIndex numbers civil days in loc so that consecutive days differ by one.
func dayIndex(t time.Time, loc *time.Location) int {
	y, m, d := t.In(loc).Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}
