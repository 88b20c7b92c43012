// Package session runs a deck session: it cycles cards, records wins and
// skips, enforces the free quota, and emits the deferred gating signals.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/action-deck/internal/domain"
	"github.com/phrazzld/action-deck/internal/events"
	"github.com/phrazzld/action-deck/internal/timer"
)

// Deps are the collaborators a Controller needs. Now may be nil.
type Deps struct {
	Deck      DeckSource
	Progress  ProgressTracker
	Ledger    Ledger
	Gate      Gate
	Scheduler *timer.Scheduler
	Events    events.EventEmitter
	Logger    *slog.Logger
	Now       func() time.Time
}

// Controller owns one session. All state changes are serialized by mu;
// deferred signals only apply while their generation is current.
type Controller struct {
	deck     DeckSource
	progress ProgressTracker
	ledger   Ledger
	gate     Gate
	sched    *timer.Scheduler
	emitter  events.EventEmitter
	logger   *slog.Logger
	now      func() time.Time
	opts     Options

	mu          sync.Mutex
	cards       []domain.ActionCard
	cursor      int
	premium     bool
	paywallOpen bool
	version     uint64
}

// New reconciles the daily rollover, draws the first deck and returns a
// ready Controller.
func New(ctx context.Context, deps Deps, opts Options) *Controller {
	if deps.Deck == nil {
		panic("deck source cannot be nil")
	}
	if deps.Progress == nil {
		panic("progress tracker cannot be nil")
	}
	if deps.Ledger == nil {
		panic("ledger cannot be nil")
	}
	if deps.Gate == nil {
		panic("gate cannot be nil")
	}
	if deps.Scheduler == nil {
		panic("scheduler cannot be nil")
	}
	if deps.Events == nil {
		panic("event emitter cannot be nil")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	c := &Controller{
		deck:     deps.Deck,
		progress: deps.Progress,
		ledger:   deps.Ledger,
		gate:     deps.Gate,
		sched:    deps.Scheduler,
		emitter:  deps.Events,
		logger:   deps.Logger.With(slog.String("component", "session_controller")),
		now:      deps.Now,
		opts:     opts,
	}

	c.progress.Reconcile(ctx)

	c.mu.Lock()
	c.premium = c.gate.IsPremium()
	c.cards = c.deck.SessionDeck(c.premium, c.opts.FreeDeckSize)
	c.cursor = 0
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "session started",
		slog.Int("deck_size", len(c.cards)),
		slog.Bool("premium", c.premium))
	return c
}

// CurrentCard returns the card at the cursor.
func (c *Controller) CurrentCard() (domain.ActionCard, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	card := c.currentLocked()
	if card == nil {
		return domain.ActionCard{}, false
	}
	return *card, true
}

// Version increments on every observable change.
func (c *Controller) Version() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

// Snapshot copies the full session state, applying the daily rollover first
// if the calendar day has changed.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rolloverLocked(context.Background())
	return c.snapshotLocked()
}

// AcceptCurrent completes the current card, or emits the gating signals if
// the free quota is already used up.
func (c *Controller) AcceptCurrent(ctx context.Context) (AcceptResult, error) {
	if err := ctx.Err(); err != nil {
		return AcceptResult{}, err
	}

	c.mu.Lock()
	var out outbox
	defer func() { c.flush(ctx, out) }()
	defer c.mu.Unlock()

	c.rolloverLocked(ctx)
	card := c.currentLocked()
	if card == nil {
		return AcceptResult{Outcome: OutcomeNoCard, Progress: c.progress.Snapshot()}, nil
	}
	accepted := *card

	gen := c.sched.Advance()
	premium := c.gate.IsPremium()
	limit := c.gate.DailyFreeLimit()

	if !premium && c.progress.Snapshot().CompletedToday >= limit {
		c.version++
		out.add(c.event(events.TypeAtCapacity, c.quotaPayloadLocked()))
		c.sched.Schedule(gen, c.opts.GateDelay, c.openPaywall(ctx, gen))
		c.logger.DebugContext(ctx, "accept gated by quota",
			slog.String("card_id", accepted.ID.String()),
			slog.Int("limit", limit))
		return AcceptResult{Outcome: OutcomeGated, QuotaReached: true, Progress: c.progress.Snapshot()}, nil
	}

	entry := c.ledger.AddWin(ctx, accepted)
	p := c.progress.RecordCompletion(ctx)
	out.add(c.event(events.TypeCardCompleted, completedPayload{
		CardID:         accepted.ID.String(),
		Title:          accepted.Title,
		Category:       accepted.Category,
		EntryID:        entry.ID.String(),
		CompletedToday: p.CompletedToday,
		CurrentStreak:  p.CurrentStreak,
	}))

	reshuffled := c.advanceLocked(&out)
	c.version++

	quotaReached := !premium && p.CompletedToday >= limit
	if quotaReached {
		c.sched.Schedule(gen, c.opts.CelebrationDelay, func() {
			c.mu.Lock()
			if c.sched.Generation() != gen {
				c.mu.Unlock()
				return
			}
			var later outbox
			c.version++
			later.add(c.event(events.TypeAtCapacity, c.quotaPayloadLocked()))
			c.sched.Schedule(gen, c.opts.GateDelay, c.openPaywall(ctx, gen))
			c.mu.Unlock()
			c.flush(ctx, later)
		})
	}

	c.logger.InfoContext(ctx, "card completed",
		slog.String("card_id", accepted.ID.String()),
		slog.Int("completed_today", p.CompletedToday),
		slog.Int("current_streak", p.CurrentStreak),
		slog.Bool("quota_reached", quotaReached))

	return AcceptResult{
		Outcome:      OutcomeCompleted,
		Completed:    &entry,
		Reshuffled:   reshuffled,
		QuotaReached: quotaReached,
		Progress:     p,
	}, nil
}

// SkipCurrent moves the current card to the back of the deck. The cursor
// stays put, so the next card slides into place.
func (c *Controller) SkipCurrent(ctx context.Context) SkipResult {
	c.mu.Lock()
	var out outbox
	defer func() { c.flush(ctx, out) }()
	defer c.mu.Unlock()

	c.rolloverLocked(ctx)
	card := c.currentLocked()
	if card == nil {
		return SkipResult{Progress: c.progress.Snapshot()}
	}
	skipped := *card

	c.sched.Advance()
	p := c.progress.RecordSkip(ctx)

	rest := append(c.cards[:c.cursor:c.cursor], c.cards[c.cursor+1:]...)
	c.cards = append(rest, skipped)
	c.version++

	out.add(c.event(events.TypeCardSkipped, skippedPayload{
		CardID:       skipped.ID.String(),
		Title:        skipped.Title,
		SkippedToday: p.SkippedToday,
	}))

	c.logger.DebugContext(ctx, "card skipped", slog.String("card_id", skipped.ID.String()))
	return SkipResult{Skipped: true, Card: &skipped, Progress: p}
}

// Reshuffle draws a new deck for the current entitlement.
func (c *Controller) Reshuffle(ctx context.Context) Snapshot {
	c.mu.Lock()
	var out outbox
	defer func() { c.flush(ctx, out) }()
	defer c.mu.Unlock()

	c.sched.Advance()
	c.reshuffleLocked(&out)
	return c.snapshotLocked()
}

// Unlock grants premium after a purchase, closes the paywall and draws a
// deck that includes premium cards.
func (c *Controller) Unlock(ctx context.Context) Snapshot {
	c.gate.Unlock(ctx)
	c.EntitlementChanged(ctx, true)
	return c.Snapshot()
}

// Restore asks the entitlement service to restore purchases. A failure is
// returned and leaves the session untouched.
func (c *Controller) Restore(ctx context.Context) (bool, error) {
	premium, err := c.gate.Restore(ctx)
	if err != nil {
		return premium, err
	}
	c.EntitlementChanged(ctx, premium)
	return premium, nil
}

// DismissPaywall closes the paywall without a purchase.
func (c *Controller) DismissPaywall(ctx context.Context) {
	c.mu.Lock()
	var out outbox
	defer func() { c.flush(ctx, out) }()
	defer c.mu.Unlock()

	if !c.paywallOpen {
		return
	}
	c.sched.Advance()
	c.paywallOpen = false
	c.version++
	out.add(c.event(events.TypePaywallDismissed, nil))
}

// EntitlementChanged applies a premium status change, including ones pushed
// by the entitlement service. Repeated calls with the same value are no-ops.
func (c *Controller) EntitlementChanged(ctx context.Context, premium bool) {
	c.mu.Lock()
	var out outbox
	defer func() { c.flush(ctx, out) }()
	defer c.mu.Unlock()

	if c.premium == premium {
		return
	}
	c.premium = premium
	c.sched.Advance()

	if premium {
		c.paywallOpen = false
		out.add(c.event(events.TypePaywallDismissed, nil))
	}
	c.reshuffleLocked(&out)

	c.logger.InfoContext(ctx, "entitlement applied to session", slog.Bool("premium", premium))
}

// Close cancels every pending signal.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sched.Advance()
}

// rolloverLocked starts a new day of free quota once the calendar day
// changes under a running session.
func (c *Controller) rolloverLocked(ctx context.Context) {
	p, rolled := c.progress.RolloverIfNewDay(ctx)
	if !rolled {
		return
	}
	c.version++
	c.logger.InfoContext(ctx, "daily rollover applied",
		slog.Int("completed_today", p.CompletedToday),
		slog.Int("current_streak", p.CurrentStreak))
}

func (c *Controller) currentLocked() *domain.ActionCard {
	if c.cursor < 0 || c.cursor >= len(c.cards) {
		return nil
	}
	return &c.cards[c.cursor]
}

// advanceLocked moves past the current card, reshuffling after the last one.
func (c *Controller) advanceLocked(out *outbox) bool {
	if c.cursor+1 >= len(c.cards) {
		c.reshuffleLocked(out)
		return true
	}
	c.cursor++
	return false
}

func (c *Controller) reshuffleLocked(out *outbox) {
	c.cards = c.deck.SessionDeck(c.gate.IsPremium(), c.opts.FreeDeckSize)
	c.cursor = 0
	c.version++
	out.add(c.event(events.TypeDeckReshuffled, reshuffledPayload{DeckSize: len(c.cards)}))
}

func (c *Controller) openPaywall(ctx context.Context, gen uint64) func() {
	return func() {
		c.mu.Lock()
		if c.sched.Generation() != gen {
			c.mu.Unlock()
			return
		}
		var out outbox
		c.paywallOpen = true
		c.version++
		out.add(c.event(events.TypePaywallOpened, nil))
		c.mu.Unlock()
		c.flush(ctx, out)
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	p := c.progress.Snapshot()
	premium := c.gate.IsPremium()
	limit := c.gate.DailyFreeLimit()

	s := Snapshot{
		Deck:           append([]domain.ActionCard{}, c.cards...),
		Cursor:         c.cursor,
		Progress:       p,
		Premium:        premium,
		DailyFreeLimit: limit,
		RemainingFree:  max(0, limit-p.CompletedToday),
		PaywallOpen:    c.paywallOpen,
		Generation:     c.sched.Generation(),
		Version:        c.version,
	}
	if card := c.currentLocked(); card != nil {
		current := *card
		s.Current = &current
	}

	switch {
	case s.Current == nil:
		s.State = StateEmpty
	case !premium && p.CompletedToday >= limit:
		s.State = StateAtQuota
	default:
		s.State = StateActive
	}
	return s
}

func (c *Controller) quotaPayloadLocked() quotaPayload {
	return quotaPayload{
		CompletedToday: c.progress.Snapshot().CompletedToday,
		DailyFreeLimit: c.gate.DailyFreeLimit(),
	}
}

func (c *Controller) event(eventType string, payload interface{}) *events.Event {
	e, err := events.NewEvent(eventType, payload, c.now())
	if err != nil {
		c.logger.Error("failed to build event",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()))
		return nil
	}
	return e
}

// flush emits queued events after the lock is released, so handlers may
// read the controller. Deferred signals outlive the request that caused
// them, hence the uncancellable context.
func (c *Controller) flush(ctx context.Context, out outbox) {
	ctx = context.WithoutCancel(ctx)
	for _, e := range out {
		if err := c.emitter.EmitEvent(ctx, e); err != nil {
			c.logger.WarnContext(ctx, "event handler failed",
				slog.String("event_type", e.Type),
				slog.String("error", err.Error()))
		}
	}
}

type outbox []*events.Event

func (o *outbox) add(e *events.Event) {
	if e != nil {
		*o = append(*o, e)
	}
}

type completedPayload struct {
	CardID         string          `json:"card_id"`
	Title          string          `json:"title"`
	Category       domain.Category `json:"category"`
	EntryID        string          `json:"entry_id"`
	CompletedToday int             `json:"completed_today"`
	CurrentStreak  int             `json:"current_streak"`
}

type skippedPayload struct {
	CardID       string `json:"card_id"`
	Title        string `json:"title"`
	SkippedToday int    `json:"skipped_today"`
}

type quotaPayload struct {
	CompletedToday int `json:"completed_today"`
	DailyFreeLimit int `json:"daily_free_limit"`
}

type reshuffledPayload struct {
	DeckSize int `json:"deck_size"`
}
