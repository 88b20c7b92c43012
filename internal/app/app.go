// Package app assembles a running deck session from configuration: the
// settings store, catalog, ledger, progress tracker, entitlement gate,
// signal fan-out and the session controller itself. Both the HTTP server
// and the CLI build on it.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/phrazzld/action-deck/internal/catalog"
	"github.com/phrazzld/action-deck/internal/config"
	"github.com/phrazzld/action-deck/internal/domain/streak"
	"github.com/phrazzld/action-deck/internal/entitlement"
	"github.com/phrazzld/action-deck/internal/events"
	"github.com/phrazzld/action-deck/internal/ledger"
	"github.com/phrazzld/action-deck/internal/metrics"
	"github.com/phrazzld/action-deck/internal/platform/postgres"
	"github.com/phrazzld/action-deck/internal/platform/sqlite"
	"github.com/phrazzld/action-deck/internal/progress"
	"github.com/phrazzld/action-deck/internal/session"
	"github.com/phrazzld/action-deck/internal/store"
	"github.com/phrazzld/action-deck/internal/timer"
)

// App holds every long-lived dependency of a session.
type App struct {
	Config *config.Config
	Logger *slog.Logger

	Store       store.SettingsStore
	Catalog     *catalog.Catalog
	Ledger      *ledger.Ledger
	Progress    *progress.Tracker
	Entitlement *entitlement.StaticService
	Gate        *entitlement.Gate

	Events   *events.InMemoryEventEmitter
	Feed     *events.Feed
	Registry *prometheus.Registry
	Metrics  *metrics.Collector

	Controller *session.Controller

	stopWatch context.CancelFunc
	watching  chan struct{}
}

type options struct {
	store    store.SettingsStore
	clock    timer.Clock
	now      func() time.Time
	handlers []signalHandler
}

// Option customizes New.
type Option func(*options)

// WithStore uses s instead of opening the configured backend.
func WithStore(s store.SettingsStore) Option {
	return func(o *options) {
		o.store = s
	}
}

// WithClock drives signal timers and day boundaries from a custom clock.
func WithClock(clock timer.Clock, now func() time.Time) Option {
	return func(o *options) {
		o.clock = clock
		o.now = now
	}
}

type signalHandler struct {
	handler events.EventHandler
	types   []string
}

// WithEventHandlers registers extra handlers for every signal before the
// first draw.
func WithEventHandlers(handlers ...events.EventHandler) Option {
	return func(o *options) {
		for _, h := range handlers {
			o.handlers = append(o.handlers, signalHandler{handler: h})
		}
	}
}

// WithSignalHandler registers handler for the given signal types only.
func WithSignalHandler(handler events.EventHandler, types ...string) Option {
	return func(o *options) {
		o.handlers = append(o.handlers, signalHandler{handler: handler, types: types})
	}
}

// New builds and starts an App. The caller must Close it.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	o := options{clock: timer.SystemClock{}, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	s := o.store
	if s == nil {
		var err error
		s, err = OpenStore(ctx, cfg.Storage, logger)
		if err != nil {
			return nil, err
		}
	}

	loc := cfg.Session.Location()
	a := &App{
		Config: cfg,
		Logger: logger,
		Store:  s,
	}

	a.Catalog = catalog.Load(cfg.Catalog.Path, logger)

	streaks := streak.NewServiceWithParams(streak.NewParams(streak.ParamsConfig{Location: loc}))
	a.Progress = progress.NewTracker(s, streaks, logger, progress.WithClock(o.now))
	a.Progress.Load(ctx)

	a.Ledger = ledger.New(s, logger, ledger.WithClock(o.now), ledger.WithLocation(loc))
	a.Ledger.Load(ctx)

	// The in-process service stands in for a purchase store, so it starts
	// from the cached entitlement and follows later unlocks.
	cached, _ := store.GetBool(ctx, s, store.KeyHasActiveSubscription)
	a.Entitlement = entitlement.NewStaticService(cfg.Entitlement.Premium || cached)
	a.Gate = entitlement.NewGate(a.Entitlement, s, cfg.Session.DailyFreeLimit, logger)
	a.Gate.Load(ctx)
	// A failed check keeps the cached status.
	_ = a.Gate.Refresh(ctx)

	a.Registry = prometheus.NewRegistry()
	a.Metrics = metrics.NewCollector(a.Registry)
	a.Feed = events.NewFeed(0)
	a.Events = events.NewInMemoryEventEmitter(logger)
	a.Events.RegisterHandler(a.Feed)
	a.Events.RegisterHandler(a.Metrics)
	for _, h := range o.handlers {
		a.Events.RegisterHandler(h.handler, h.types...)
	}

	a.Controller = session.New(ctx, session.Deps{
		Deck:      a.Catalog,
		Progress:  a.Progress,
		Ledger:    a.Ledger,
		Gate:      a.Gate,
		Scheduler: timer.NewScheduler(o.clock),
		Events:    a.Events,
		Logger:    logger,
		Now:       o.now,
	}, session.Options{
		FreeDeckSize:     cfg.Session.FreeDeckSize,
		GateDelay:        cfg.Session.GateDelay,
		CelebrationDelay: cfg.Session.CelebrationDelay,
	})

	a.Gate.OnChange(func(premium bool) {
		a.Entitlement.Set(premium)
		a.Controller.EntitlementChanged(context.Background(), premium)
	})

	watchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	a.stopWatch = cancel
	a.watching = make(chan struct{})
	go func() {
		defer close(a.watching)
		a.Gate.Watch(watchCtx)
	}()

	logger.Info("session ready",
		slog.Int("catalog_size", a.Catalog.Len()),
		slog.Bool("catalog_loaded", a.Catalog.Loaded()),
		slog.Bool("premium", a.Gate.IsPremium()),
		slog.String("storage", cfg.Storage.Driver))

	return a, nil
}

// OpenStore opens the settings store named by cfg.Driver.
func OpenStore(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (store.SettingsStore, error) {
	switch cfg.Driver {
	case "memory":
		return store.NewMemoryStore(), nil
	case "sqlite":
		s, err := sqlite.Open(ctx, cfg.Path, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return s, nil
	case "postgres":
		s, err := postgres.Open(ctx, cfg.URL, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// Close stops background work and releases the store.
func (a *App) Close() error {
	if a.stopWatch != nil {
		a.stopWatch()
		<-a.watching
	}
	a.Controller.Close()
	if err := a.Store.Close(); err != nil {
		a.Logger.Error("failed to close settings store", slog.String("error", err.Error()))
		return err
	}
	a.Logger.Info("application shutdown completed")
	return nil
}
