package events

import (
	"context"
	"log/slog"
	"slices"
	"sync"
)

// gateSignals are logged at info level; everything else is debug noise.
var gateSignals = []string{TypeAtCapacity, TypePaywallOpened, TypePaywallDismissed}

type subscription struct {
	handler EventHandler
	types   []string // empty means every type
}

func (s subscription) wants(eventType string) bool {
	return len(s.types) == 0 || slices.Contains(s.types, eventType)
}

// InMemoryEventEmitter dispatches session signals to registered handlers in
// registration order. It stamps every event with the next session sequence
// number, so all handlers see the same ordering.
type InMemoryEventEmitter struct {
	mu     sync.RWMutex
	subs   []subscription
	seq    uint64
	logger *slog.Logger
}

var _ EventEmitter = (*InMemoryEventEmitter)(nil)

// NewInMemoryEventEmitter creates an emitter with no handlers.
func NewInMemoryEventEmitter(logger *slog.Logger) *InMemoryEventEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryEventEmitter{
		logger: logger.With(slog.String("component", "session_signals")),
	}
}

// RegisterHandler subscribes handler to the given signal types, or to every
// signal when none are given.
func (e *InMemoryEventEmitter) RegisterHandler(handler EventHandler, types ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subs = append(e.subs, subscription{handler: handler, types: slices.Clone(types)})
	e.logger.Debug("registered signal handler",
		slog.Int("handler_count", len(e.subs)),
		slog.Any("types", types))
}

// Seq returns the sequence number of the last emitted event, or 0.
func (e *InMemoryEventEmitter) Seq() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.seq
}

// EmitEvent stamps event with the next sequence number and hands it to every
// interested handler. A failing handler does not stop delivery; the first
// error is returned. Nil events are ignored.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *Event) error {
	if event == nil {
		return nil
	}

	e.mu.Lock()
	e.seq++
	event.Seq = e.seq
	subs := slices.Clone(e.subs)
	e.mu.Unlock()

	level := slog.LevelDebug
	if slices.Contains(gateSignals, event.Type) {
		level = slog.LevelInfo
	}
	e.logger.Log(ctx, level, "session signal",
		slog.String("event_type", event.Type),
		slog.Uint64("seq", event.Seq),
		slog.String("event_id", event.ID.String()))

	if len(subs) == 0 {
		e.logger.WarnContext(ctx, "no handlers registered for signal",
			slog.String("event_type", event.Type))
		return nil
	}

	var firstErr error
	for i, sub := range subs {
		if !sub.wants(event.Type) {
			continue
		}
		if err := sub.handler.HandleEvent(ctx, event); err != nil {
			e.logger.ErrorContext(ctx, "handler failed to process signal",
				slog.String("error", err.Error()),
				slog.Int("handler_index", i),
				slog.String("event_type", event.Type),
				slog.Uint64("seq", event.Seq))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
