package session_test

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/action-deck/internal/catalog"
	"github.com/phrazzld/action-deck/internal/domain"
	"github.com/phrazzld/action-deck/internal/domain/streak"
	"github.com/phrazzld/action-deck/internal/entitlement"
	"github.com/phrazzld/action-deck/internal/events"
	"github.com/phrazzld/action-deck/internal/ledger"
	"github.com/phrazzld/action-deck/internal/platform/logger"
	"github.com/phrazzld/action-deck/internal/progress"
	"github.com/phrazzld/action-deck/internal/session"
	"github.com/phrazzld/action-deck/internal/store"
	"github.com/phrazzld/action-deck/internal/timer"
)

type recorder struct {
	mu    sync.Mutex
	types []string
}

func (r *recorder) HandleEvent(_ context.Context, e *events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types = append(r.types, e.Type)
	return nil
}

func (r *recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.types...)
}

func (r *recorder) Count(eventType string) int {
	n := 0
	for _, t := range r.Types() {
		if t == eventType {
			n++
		}
	}
	return n
}

type harness struct {
	ctrl    *session.Controller
	clock   *timer.ManualClock
	store   *store.MemoryStore
	ledger  *ledger.Ledger
	tracker *progress.Tracker
	gate    *entitlement.Gate
	svc     *entitlement.StaticService
	events  *recorder
}

func card(title string, premium bool) domain.ActionCard {
	return domain.ActionCard{
		ID:              uuid.New(),
		Title:           title,
		Category:        domain.CategoryMindset,
		IconName:        "star.fill",
		IsPremium:       premium,
		DurationMinutes: 2,
		Difficulty:      domain.DifficultyEasy,
	}
}

func newHarness(t *testing.T, cards []domain.ActionCard, limit int) *harness {
	t.Helper()
	ctx := context.Background()
	log, _ := logger.GetTestLogger(t)

	clock := timer.NewManualClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	s := store.NewMemoryStore()
	streaks := streak.NewServiceWithParams(streak.NewParams(streak.ParamsConfig{Location: time.UTC}))

	tracker := progress.NewTracker(s, streaks, log, progress.WithClock(clock.Now))
	tracker.Load(ctx)
	l := ledger.New(s, log, ledger.WithClock(clock.Now), ledger.WithLocation(time.UTC))
	l.Load(ctx)

	svc := entitlement.NewStaticService(false)
	gate := entitlement.NewGate(svc, s, limit, log)

	rec := &recorder{}
	emitter := events.NewInMemoryEventEmitter(log)
	emitter.RegisterHandler(rec)

	ctrl := session.New(ctx, session.Deps{
		Deck:      catalog.FromCards(cards, catalog.WithRand(rand.New(rand.NewSource(7)))),
		Progress:  tracker,
		Ledger:    l,
		Gate:      gate,
		Scheduler: timer.NewScheduler(clock),
		Events:    emitter,
		Logger:    log,
		Now:       clock.Now,
	}, session.DefaultOptions())
	t.Cleanup(ctrl.Close)

	return &harness{
		ctrl: ctrl, clock: clock, store: s, ledger: l, tracker: tracker,
		gate: gate, svc: svc, events: rec,
	}
}

func deckIDs(cards []domain.ActionCard) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.ID.String()
	}
	sort.Strings(out)
	return out
}

func TestNewDrawsFreeDeck(t *testing.T) {
	t.Parallel()
	cards := []domain.ActionCard{card("A", false), card("B", true), card("C", false)}
	h := newHarness(t, cards, 3)

	snap := h.ctrl.Snapshot()

	assert.Equal(t, session.StateActive, snap.State)
	assert.Len(t, snap.Deck, 2)
	for _, c := range snap.Deck {
		assert.False(t, c.IsPremium)
	}
	require.NotNil(t, snap.Current)
	assert.Equal(t, 3, snap.RemainingFree)
	assert.Equal(t, 3, snap.DailyFreeLimit)
}

func TestEmptyCatalog(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil, 3)
	ctx := context.Background()

	assert.Equal(t, session.StateEmpty, h.ctrl.Snapshot().State)

	res, err := h.ctrl.AcceptCurrent(ctx)
	require.NoError(t, err)
	assert.Equal(t, session.OutcomeNoCard, res.Outcome)
	assert.False(t, h.ctrl.SkipCurrent(ctx).Skipped)
	assert.Empty(t, h.events.Types())
	assert.Equal(t, 0, h.ledger.Total())
}

func TestSkipRotatesCurrentToTail(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, []domain.ActionCard{card("A", false), card("B", false), card("C", false)}, 3)

	before := h.ctrl.Snapshot()
	res := h.ctrl.SkipCurrent(ctx)
	after := h.ctrl.Snapshot()

	require.True(t, res.Skipped)
	assert.Equal(t, before.Deck[0].ID, res.Card.ID)
	assert.Equal(t, deckIDs(before.Deck), deckIDs(after.Deck))
	assert.Equal(t, before.Deck[0].ID, after.Deck[len(after.Deck)-1].ID)
	assert.Equal(t, before.Deck[1].ID, after.Current.ID)
	assert.Equal(t, 0, after.Cursor)
	assert.Equal(t, 1, after.Progress.SkippedToday)
	assert.Equal(t, []string{events.TypeCardSkipped}, h.events.Types())
}

func TestThreeSkipsRestoreOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, []domain.ActionCard{card("A", false), card("B", false), card("C", false)}, 3)

	before := h.ctrl.Snapshot().Deck
	for i := 0; i < 3; i++ {
		h.ctrl.SkipCurrent(ctx)
	}

	assert.Equal(t, before, h.ctrl.Snapshot().Deck)
	assert.Equal(t, 3, h.tracker.Snapshot().SkippedToday)
}

func TestAcceptUnderQuota(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, []domain.ActionCard{card("A", false), card("B", false), card("C", false)}, 3)
	first, _ := h.ctrl.CurrentCard()

	res, err := h.ctrl.AcceptCurrent(ctx)

	require.NoError(t, err)
	assert.Equal(t, session.OutcomeCompleted, res.Outcome)
	require.NotNil(t, res.Completed)
	assert.Equal(t, first.Title, res.Completed.Title)
	assert.False(t, res.QuotaReached)
	assert.Equal(t, 1, res.Progress.CompletedToday)
	assert.Equal(t, 1, res.Progress.TotalCompleted)
	assert.Equal(t, 1, h.ledger.Total())
	assert.Equal(t, 1, h.ctrl.Snapshot().Cursor)
	assert.Equal(t, []string{events.TypeCardCompleted}, h.events.Types())
}

func TestQuotaScenario(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, []domain.ActionCard{card("A", false), card("B", false), card("C", false)}, 3)

	for i := 0; i < 2; i++ {
		res, err := h.ctrl.AcceptCurrent(ctx)
		require.NoError(t, err)
		require.Equal(t, session.OutcomeCompleted, res.Outcome)
	}

	res, err := h.ctrl.AcceptCurrent(ctx)
	require.NoError(t, err)
	assert.Equal(t, session.OutcomeCompleted, res.Outcome)
	assert.True(t, res.QuotaReached)
	assert.True(t, res.Reshuffled, "last card completed")
	assert.Equal(t, 0, h.ctrl.Snapshot().Cursor)
	assert.Equal(t, session.StateAtQuota, h.ctrl.Snapshot().State)
	assert.Equal(t, 0, h.ctrl.Snapshot().RemainingFree)
	assert.Equal(t, 0, h.events.Count(events.TypeAtCapacity))

	h.clock.Advance(2 * time.Second)
	assert.Equal(t, 1, h.events.Count(events.TypeAtCapacity))
	assert.Equal(t, 0, h.events.Count(events.TypePaywallOpened))

	h.clock.Advance(2500 * time.Millisecond)
	assert.Equal(t, 1, h.events.Count(events.TypePaywallOpened))
	assert.True(t, h.ctrl.Snapshot().PaywallOpen)

	res, err = h.ctrl.AcceptCurrent(ctx)
	require.NoError(t, err)
	assert.Equal(t, session.OutcomeGated, res.Outcome)
	assert.Equal(t, 3, res.Progress.CompletedToday)
	assert.Equal(t, 3, res.Progress.TotalCompleted)
	assert.Equal(t, 3, h.ledger.Total())
	assert.Equal(t, 2, h.events.Count(events.TypeAtCapacity), "gated accept signals immediately")

	h.clock.Advance(2500 * time.Millisecond)
	assert.Equal(t, 2, h.events.Count(events.TypePaywallOpened))

	assert.Equal(t, []string{
		events.TypeCardCompleted,
		events.TypeCardCompleted,
		events.TypeCardCompleted,
		events.TypeDeckReshuffled,
		events.TypeAtCapacity,
		events.TypePaywallOpened,
		events.TypeAtCapacity,
		events.TypePaywallOpened,
	}, h.events.Types())
}

func TestNewActionSupersedesPendingSignals(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, []domain.ActionCard{card("A", false), card("B", false), card("C", false), card("D", false)}, 1)

	res, err := h.ctrl.AcceptCurrent(ctx)
	require.NoError(t, err)
	require.True(t, res.QuotaReached)

	h.clock.Advance(time.Second)
	h.ctrl.SkipCurrent(ctx)
	h.clock.Advance(10 * time.Second)

	assert.Equal(t, 0, h.events.Count(events.TypeAtCapacity))
	assert.Equal(t, 0, h.events.Count(events.TypePaywallOpened))
	assert.False(t, h.ctrl.Snapshot().PaywallOpen)
	assert.Equal(t, session.StateAtQuota, h.ctrl.Snapshot().State)
}

func TestGatedAcceptSupersededBeforePaywall(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, []domain.ActionCard{card("A", false), card("B", false)}, 1)
	_, err := h.ctrl.AcceptCurrent(ctx)
	require.NoError(t, err)
	h.clock.Advance(5 * time.Second)
	require.Equal(t, 1, h.events.Count(events.TypePaywallOpened))

	res, err := h.ctrl.AcceptCurrent(ctx)
	require.NoError(t, err)
	require.Equal(t, session.OutcomeGated, res.Outcome)
	h.ctrl.Reshuffle(ctx)
	h.clock.Advance(5 * time.Second)

	assert.Equal(t, 1, h.events.Count(events.TypePaywallOpened))
}

func TestPremiumIsNeverGated(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, []domain.ActionCard{card("A", false), card("B", true)}, 1)
	h.ctrl.Unlock(ctx)

	for i := 0; i < 5; i++ {
		res, err := h.ctrl.AcceptCurrent(ctx)
		require.NoError(t, err)
		assert.Equal(t, session.OutcomeCompleted, res.Outcome)
		assert.False(t, res.QuotaReached)
	}
	h.clock.Advance(time.Minute)

	assert.Equal(t, 0, h.events.Count(events.TypeAtCapacity))
	assert.Equal(t, 5, h.ledger.Total())
}

func TestUnlockClosesPaywallAndAddsPremiumCards(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, []domain.ActionCard{card("A", false), card("B", true), card("C", true)}, 1)
	_, err := h.ctrl.AcceptCurrent(ctx)
	require.NoError(t, err)
	h.clock.Advance(5 * time.Second)
	require.True(t, h.ctrl.Snapshot().PaywallOpen)

	snap := h.ctrl.Unlock(ctx)

	assert.True(t, snap.Premium)
	assert.False(t, snap.PaywallOpen)
	assert.Equal(t, session.StateActive, snap.State)
	assert.Len(t, snap.Deck, 3)
	assert.Equal(t, 1, h.events.Count(events.TypePaywallDismissed))

	h.ctrl.Unlock(ctx)
	assert.Equal(t, 1, h.events.Count(events.TypePaywallDismissed), "second unlock is a no-op")
}

func TestRestore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("failure leaves session untouched", func(t *testing.T) {
		h := newHarness(t, []domain.ActionCard{card("A", false), card("B", true)}, 3)
		h.svc.SetRestoreError(errors.New("offline"))
		version := h.ctrl.Version()

		premium, err := h.ctrl.Restore(ctx)

		assert.ErrorIs(t, err, entitlement.ErrRestoreFailed)
		assert.False(t, premium)
		assert.False(t, h.ctrl.Snapshot().Premium)
		assert.Equal(t, version, h.ctrl.Version())
	})

	t.Run("success applies premium", func(t *testing.T) {
		h := newHarness(t, []domain.ActionCard{card("A", false), card("B", true)}, 3)
		h.svc.Publish(true)

		premium, err := h.ctrl.Restore(ctx)

		require.NoError(t, err)
		assert.True(t, premium)
		assert.Len(t, h.ctrl.Snapshot().Deck, 2)
	})
}

func TestEntitlementPushReshuffles(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, []domain.ActionCard{card("A", false), card("B", true)}, 3)
	h.gate.OnChange(func(p bool) { h.ctrl.EntitlementChanged(ctx, p) })

	h.svc.Publish(true)
	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go h.gate.Watch(watchCtx)

	assert.Eventually(t, func() bool { return len(h.ctrl.Snapshot().Deck) == 2 }, time.Second, 5*time.Millisecond)
}

func TestDismissPaywall(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, []domain.ActionCard{card("A", false), card("B", false)}, 1)
	_, err := h.ctrl.AcceptCurrent(ctx)
	require.NoError(t, err)

	h.ctrl.DismissPaywall(ctx)
	assert.Equal(t, 0, h.events.Count(events.TypePaywallDismissed), "nothing to dismiss yet")

	h.clock.Advance(5 * time.Second)
	h.ctrl.DismissPaywall(ctx)

	assert.False(t, h.ctrl.Snapshot().PaywallOpen)
	assert.Equal(t, 1, h.events.Count(events.TypePaywallDismissed))
	assert.False(t, h.ctrl.Snapshot().Premium)
}

func TestVersionIncreases(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, []domain.ActionCard{card("A", false), card("B", false)}, 3)

	v0 := h.ctrl.Version()
	h.ctrl.SkipCurrent(ctx)
	v1 := h.ctrl.Version()
	_, err := h.ctrl.AcceptCurrent(ctx)
	require.NoError(t, err)
	v2 := h.ctrl.Version()

	assert.Greater(t, v1, v0)
	assert.Greater(t, v2, v1)
}

func TestAcceptWithCancelledContext(t *testing.T) {
	t.Parallel()
	h := newHarness(t, []domain.ActionCard{card("A", false)}, 3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.ctrl.AcceptCurrent(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, h.ledger.Total())
}

func TestCloseCancelsSignals(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, []domain.ActionCard{card("A", false), card("B", false)}, 1)
	_, err := h.ctrl.AcceptCurrent(ctx)
	require.NoError(t, err)

	h.ctrl.Close()
	h.clock.Advance(time.Minute)

	assert.Equal(t, 0, h.events.Count(events.TypeAtCapacity))
}

func TestRolloverOnStartup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, []domain.ActionCard{card("A", false), card("B", false)}, 1)
	_, err := h.ctrl.AcceptCurrent(ctx)
	require.NoError(t, err)
	require.Equal(t, session.StateAtQuota, h.ctrl.Snapshot().State)

	log, _ := logger.GetTestLogger(t)
	tomorrow := func() time.Time { return time.Date(2025, 3, 11, 8, 0, 0, 0, time.UTC) }
	tracker := progress.NewTracker(h.store,
		streak.NewServiceWithParams(streak.NewParams(streak.ParamsConfig{Location: time.UTC})),
		log, progress.WithClock(tomorrow))
	tracker.Load(ctx)

	next := session.New(ctx, session.Deps{
		Deck:      catalog.FromCards([]domain.ActionCard{card("A", false)}),
		Progress:  tracker,
		Ledger:    h.ledger,
		Gate:      h.gate,
		Scheduler: timer.NewScheduler(timer.NewManualClock(tomorrow())),
		Events:    events.NewInMemoryEventEmitter(log),
		Logger:    log,
		Now:       tomorrow,
	}, session.DefaultOptions())
	defer next.Close()

	snap := next.Snapshot()
	assert.Equal(t, session.StateActive, snap.State)
	assert.Equal(t, 0, snap.Progress.CompletedToday)
	assert.Equal(t, 1, snap.Progress.CurrentStreak)
	assert.Equal(t, 1, snap.RemainingFree)
}

func TestQuotaResetsOnNextCalendarDay(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, []domain.ActionCard{card("A", false), card("B", false), card("C", false)}, 3)

	for i := 0; i < 3; i++ {
		_, err := h.ctrl.AcceptCurrent(ctx)
		require.NoError(t, err)
	}
	h.clock.Advance(5 * time.Second)
	require.Equal(t, session.StateAtQuota, h.ctrl.Snapshot().State)
	before := h.ctrl.Version()

	h.clock.Advance(26 * time.Hour)

	snap := h.ctrl.Snapshot()
	assert.Equal(t, session.StateActive, snap.State)
	assert.Equal(t, 0, snap.Progress.CompletedToday)
	assert.Equal(t, 3, snap.RemainingFree)
	assert.Equal(t, 1, snap.Progress.CurrentStreak, "one day apart keeps the streak")
	assert.Greater(t, snap.Version, before)

	res, err := h.ctrl.AcceptCurrent(ctx)
	require.NoError(t, err)
	assert.Equal(t, session.OutcomeCompleted, res.Outcome)
	assert.Equal(t, 1, res.Progress.CompletedToday)
	assert.Equal(t, 2, res.Progress.CurrentStreak)
	assert.Equal(t, 4, h.ledger.Total())
}

func TestSkipAfterMidnightResetsSkipCounter(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, []domain.ActionCard{card("A", false), card("B", false), card("C", false)}, 3)

	_, err := h.ctrl.AcceptCurrent(ctx)
	require.NoError(t, err)
	h.ctrl.SkipCurrent(ctx)
	h.ctrl.SkipCurrent(ctx)

	h.clock.Advance(24 * time.Hour)

	res := h.ctrl.SkipCurrent(ctx)
	assert.True(t, res.Skipped)
	assert.Equal(t, 1, res.Progress.SkippedToday)
	assert.Equal(t, 0, res.Progress.CompletedToday)
}
