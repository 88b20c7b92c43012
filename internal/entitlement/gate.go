// Package entitlement caches the user's premium status and the daily free
// quota that applies while it is false.
package entitlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/phrazzld/action-deck/internal/store"
)

// DefaultDailyFreeLimit is the number of completions a free user gets per day.
const DefaultDailyFreeLimit = 3

// ErrRestoreFailed wraps any failure reported by the entitlement service
// during a restore.
var ErrRestoreFailed = errors.New("restore purchases failed")

// Service is the purchasing backend as seen by the gate.
type Service interface {
	// IsPremiumActive reports the backend's current view of the subscription.
	IsPremiumActive(ctx context.Context) (bool, error)

	// RestorePurchases asks the backend to restore previous purchases and
	// returns the resulting status.
	RestorePurchases(ctx context.Context) (bool, error)

	// Updates delivers out-of-band status changes. It may return nil when the
	// backend never pushes.
	Updates() <-chan bool
}

// Gate holds the cached premium flag. Failed checks never clear the cache.
type Gate struct {
	svc    Service
	store  store.SettingsStore
	limit  int
	logger *slog.Logger

	mu        sync.RWMutex
	premium   bool
	listeners []func(bool)
}

// NewGate creates a Gate. A non-positive limit uses DefaultDailyFreeLimit.
// store may be nil, in which case the cached flag is not persisted.
func NewGate(svc Service, s store.SettingsStore, limit int, logger *slog.Logger) *Gate {
	if svc == nil {
		panic("entitlement service cannot be nil")
	}
	if limit <= 0 {
		limit = DefaultDailyFreeLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{
		svc:    svc,
		store:  s,
		limit:  limit,
		logger: logger.With(slog.String("component", "entitlement_gate")),
	}
}

// Load seeds the cache from the last persisted value, so a restart without
// a reachable backend keeps the previous status.
func (g *Gate) Load(ctx context.Context) {
	if g.store == nil {
		return
	}
	v, err := store.GetBool(ctx, g.store, store.KeyHasActiveSubscription)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			g.logger.WarnContext(ctx, "ignoring unreadable cached entitlement",
				slog.String("error", err.Error()))
		}
		return
	}
	g.mu.Lock()
	g.premium = v
	g.mu.Unlock()
}

// IsPremium returns the cached flag.
func (g *Gate) IsPremium() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.premium
}

// DailyFreeLimit returns the free quota.
func (g *Gate) DailyFreeLimit() int {
	return g.limit
}

// OnChange registers fn to run whenever the cached flag changes value.
// Callbacks run synchronously on the goroutine that made the change.
func (g *Gate) OnChange(fn func(premium bool)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listeners = append(g.listeners, fn)
}

// Unlock marks the user premium right after a successful purchase.
func (g *Gate) Unlock(ctx context.Context) {
	g.set(ctx, true, "unlock")
}

// Restore delegates to the service and caches its answer. On failure the
// cache is untouched and the error is returned.
func (g *Gate) Restore(ctx context.Context) (bool, error) {
	premium, err := g.svc.RestorePurchases(ctx)
	if err != nil {
		g.logger.WarnContext(ctx, "restore purchases failed", slog.String("error", err.Error()))
		return g.IsPremium(), fmt.Errorf("%w: %w", ErrRestoreFailed, err)
	}
	g.set(ctx, premium, "restore")
	return premium, nil
}

// Refresh asks the service for the current status. On failure the cache is
// untouched.
func (g *Gate) Refresh(ctx context.Context) error {
	premium, err := g.svc.IsPremiumActive(ctx)
	if err != nil {
		g.logger.WarnContext(ctx, "entitlement check failed, keeping cached status",
			slog.String("error", err.Error()),
			slog.Bool("premium", g.IsPremium()))
		return err
	}
	g.set(ctx, premium, "refresh")
	return nil
}

// Watch applies pushed status changes until ctx is done or the service
// closes its channel.
func (g *Gate) Watch(ctx context.Context) {
	updates := g.svc.Updates()
	if updates == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case premium, ok := <-updates:
			if !ok {
				return
			}
			g.set(ctx, premium, "push")
		}
	}
}

func (g *Gate) set(ctx context.Context, premium bool, source string) {
	g.mu.Lock()
	changed := g.premium != premium
	g.premium = premium
	listeners := append([]func(bool){}, g.listeners...)
	g.mu.Unlock()

	g.persist(ctx, premium)

	if !changed {
		return
	}
	g.logger.InfoContext(ctx, "entitlement changed",
		slog.Bool("premium", premium),
		slog.String("source", source))
	for _, fn := range listeners {
		fn(premium)
	}
}

func (g *Gate) persist(ctx context.Context, premium bool) {
	if g.store == nil {
		return
	}
	err := store.SetBool(ctx, g.store, store.KeyHasActiveSubscription, premium)
	if err == nil {
		err = g.store.Flush(ctx)
	}
	if err != nil {
		g.logger.ErrorContext(ctx, "failed to persist entitlement", slog.String("error", err.Error()))
	}
}
