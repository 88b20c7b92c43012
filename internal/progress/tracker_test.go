package progress_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/action-deck/internal/domain/streak"
	"github.com/phrazzld/action-deck/internal/platform/logger"
	"github.com/phrazzld/action-deck/internal/progress"
	"github.com/phrazzld/action-deck/internal/store"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func utcStreak() streak.Service {
	return streak.NewServiceWithParams(streak.NewParams(streak.ParamsConfig{
		Location:        time.UTC,
		StreakGraceDays: 1,
	}))
}

func newTracker(t *testing.T, s store.SettingsStore, clock *fakeClock) *progress.Tracker {
	t.Helper()
	log, _ := logger.GetTestLogger(t)
	tr := progress.NewTracker(s, utcStreak(), log, progress.WithClock(clock.Now))
	tr.Load(context.Background())
	return tr
}

func TestLoadDefaultsWhenEmpty(t *testing.T) {
	t.Parallel()
	tr := newTracker(t, store.NewMemoryStore(), &fakeClock{now: time.Now()})

	p := tr.Snapshot()

	assert.Zero(t, p.CompletedToday)
	assert.Zero(t, p.CurrentStreak)
	assert.Nil(t, p.LastCompletedAt)
}

func TestRecordCompletionPersistsAndReloads(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := store.NewMemoryStore()
	clock := &fakeClock{now: time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)}
	tr := newTracker(t, s, clock)

	tr.RecordCompletion(ctx)
	tr.RecordSkip(ctx)
	p := tr.RecordCompletion(ctx)

	assert.Equal(t, 2, p.CompletedToday)
	assert.Equal(t, 1, p.SkippedToday)
	assert.Equal(t, 1, p.CurrentStreak)
	assert.Equal(t, 1, p.LongestStreak)
	assert.Equal(t, 2, p.TotalCompleted)
	require.NotNil(t, p.LastCompletedAt)
	assert.True(t, clock.now.Equal(*p.LastCompletedAt))

	raw, ok := s.Committed(store.KeyTotalCompleted)
	require.True(t, ok)
	assert.Equal(t, "2", string(raw))

	reloaded := newTracker(t, s, clock)
	assert.Equal(t, tr.Snapshot(), reloaded.Snapshot())
}

func TestStreakAcrossDays(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2025, 3, 10, 22, 0, 0, 0, time.UTC)}
	tr := newTracker(t, store.NewMemoryStore(), clock)

	tr.RecordCompletion(ctx)

	clock.now = time.Date(2025, 3, 11, 8, 0, 0, 0, time.UTC)
	tr.Reconcile(ctx)
	p := tr.RecordCompletion(ctx)
	assert.Equal(t, 2, p.CurrentStreak)
	assert.Equal(t, 1, p.CompletedToday, "daily counter rolled over")

	clock.now = time.Date(2025, 3, 14, 8, 0, 0, 0, time.UTC)
	p = tr.Reconcile(ctx)
	assert.Equal(t, 0, p.CurrentStreak, "gap longer than the grace period")
	assert.Equal(t, 2, p.LongestStreak)
	assert.Equal(t, 0, p.CompletedToday)

	p = tr.RecordCompletion(ctx)
	assert.Equal(t, 1, p.CurrentStreak)
	assert.Equal(t, 2, p.LongestStreak)
	assert.Equal(t, 3, p.TotalCompleted)
}

func TestReconcileSameDayKeepsCounters(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	tr := newTracker(t, store.NewMemoryStore(), clock)
	tr.RecordCompletion(ctx)
	tr.RecordSkip(ctx)

	clock.now = clock.now.Add(3 * time.Hour)
	p := tr.Reconcile(ctx)

	assert.Equal(t, 1, p.CompletedToday)
	assert.Equal(t, 1, p.SkippedToday)
	assert.Equal(t, 1, p.CurrentStreak)
}

func TestReconcileWithClockBehindIsNoop(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := store.NewMemoryStore()
	clock := &fakeClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	log, buf := logger.GetTestLogger(t)
	tr := progress.NewTracker(s, utcStreak(), log, progress.WithClock(clock.Now))
	tr.RecordCompletion(ctx)

	clock.now = clock.now.Add(-72 * time.Hour)
	p := tr.Reconcile(ctx)

	assert.Equal(t, 1, p.CompletedToday)
	assert.Equal(t, 1, p.CurrentStreak)
	logger.AssertLogContains(t, buf, "clock is behind last completion")
}

func TestLoadIgnoresCorruptValues(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := store.NewMemoryStore()
	require.NoError(t, s.Set(ctx, store.KeyCompletedToday, []byte("many")))
	require.NoError(t, s.Set(ctx, store.KeyCurrentStreak, []byte("4")))
	require.NoError(t, s.Set(ctx, store.KeyLongestStreak, []byte("2")))
	require.NoError(t, s.Set(ctx, store.KeyLastCompletedDate, []byte("yesterday")))
	log, buf := logger.GetTestLogger(t)
	tr := progress.NewTracker(s, utcStreak(), log)

	tr.Load(ctx)

	p := tr.Snapshot()
	assert.Zero(t, p.CompletedToday)
	assert.Equal(t, 4, p.CurrentStreak)
	assert.Equal(t, 4, p.LongestStreak, "longest never trails current")
	assert.Nil(t, p.LastCompletedAt)
	logger.AssertLogContains(t, buf, "ignoring unreadable counter")
}

func TestPersistFailureKeepsMemoryState(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := store.NewMemoryStore()
	s.FlushErr = errors.New("read-only filesystem")
	log, buf := logger.GetTestLogger(t)
	tr := progress.NewTracker(s, utcStreak(), log)

	p := tr.RecordCompletion(ctx)

	assert.Equal(t, 1, p.CompletedToday)
	assert.Equal(t, 1, tr.CompletedToday())
	logger.AssertLogContains(t, buf, "failed to persist progress")
}

func TestRolloverIfNewDay(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := store.NewMemoryStore()
	clock := &fakeClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	tr := newTracker(t, s, clock)

	_, rolled := tr.RolloverIfNewDay(ctx)
	assert.True(t, rolled, "first call always reconciles")

	tr.RecordCompletion(ctx)
	tr.RecordSkip(ctx)

	clock.now = time.Date(2025, 3, 10, 23, 59, 0, 0, time.UTC)
	p, rolled := tr.RolloverIfNewDay(ctx)
	assert.False(t, rolled)
	assert.Equal(t, 1, p.CompletedToday)

	clock.now = time.Date(2025, 3, 11, 0, 1, 0, 0, time.UTC)
	p, rolled = tr.RolloverIfNewDay(ctx)
	assert.True(t, rolled)
	assert.Equal(t, 0, p.CompletedToday)
	assert.Equal(t, 0, p.SkippedToday)
	assert.Equal(t, 1, p.CurrentStreak)

	n, err := store.GetInt(ctx, s, store.KeyCompletedToday)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "rollover is persisted")

	_, rolled = tr.RolloverIfNewDay(ctx)
	assert.False(t, rolled, "same day again")
}

func TestRolloverIfNewDayIgnoresClockMovingBack(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	tr := newTracker(t, store.NewMemoryStore(), clock)
	tr.Reconcile(ctx)
	tr.RecordCompletion(ctx)

	clock.now = clock.now.Add(-48 * time.Hour)
	p, rolled := tr.RolloverIfNewDay(ctx)

	assert.False(t, rolled)
	assert.Equal(t, 1, p.CompletedToday)
}
