package streak

import (
	"testing"
	"time"

	"github.com/phrazzld/action-deck/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func utcParams() *Params {
	return NewParams(ParamsConfig{Location: time.UTC})
}

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr(t time.Time) *time.Time { return &t }

func TestCalendarDaysBetween(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		from     time.Time
		to       time.Time
		expected int
	}{
		{"same instant", at("2024-03-10T12:00:00Z"), at("2024-03-10T12:00:00Z"), 0},
		{"same day morning to night", at("2024-03-10T00:00:01Z"), at("2024-03-10T23:59:59Z"), 0},
		{"one minute across midnight", at("2024-03-10T23:59:00Z"), at("2024-03-11T00:00:00Z"), 1},
		{"almost two full days", at("2024-03-10T00:00:00Z"), at("2024-03-11T23:59:00Z"), 1},
		{"two days", at("2024-03-10T23:00:00Z"), at("2024-03-12T01:00:00Z"), 2},
		{"backwards", at("2024-03-12T10:00:00Z"), at("2024-03-10T10:00:00Z"), -2},
		{"month boundary", at("2024-02-29T08:00:00Z"), at("2024-03-01T08:00:00Z"), 1},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, calendarDaysBetween(tc.from, tc.to, time.UTC))
		})
	}
}

func TestCalendarDaysBetweenRespectsLocation(t *testing.T) {
	t.Parallel()

	// 23:30 UTC on the 10th is already the 11th in UTC+2.
	loc := time.FixedZone("UTC+2", 2*60*60)
	from := at("2024-03-10T12:00:00Z")
	to := at("2024-03-10T23:30:00Z")

	assert.Equal(t, 0, calendarDaysBetween(from, to, time.UTC))
	assert.Equal(t, 1, calendarDaysBetween(from, to, loc))
}

func TestNextStreak(t *testing.T) {
	t.Parallel()
	params := utcParams()
	now := at("2024-03-10T09:00:00Z")

	testCases := []struct {
		name     string
		current  int
		last     *time.Time
		expected int
	}{
		{"first completion ever", 0, nil, 1},
		{"same day keeps streak", 4, ptr(at("2024-03-10T01:00:00Z")), 4},
		{"yesterday extends streak", 4, ptr(at("2024-03-09T23:59:00Z")), 5},
		{"two days ago restarts", 4, ptr(at("2024-03-08T09:00:00Z")), 1},
		{"a week ago restarts", 9, ptr(at("2024-03-03T09:00:00Z")), 1},
		{"future date leaves streak alone", 4, ptr(at("2024-03-12T09:00:00Z")), 4},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, nextStreak(tc.current, tc.last, now, params))
		})
	}
}

func TestCalculateCompletion(t *testing.T) {
	t.Parallel()
	params := utcParams()

	t.Run("does not mutate input", func(t *testing.T) {
		t.Parallel()
		last := at("2024-03-09T10:00:00Z")
		original := &domain.Progress{CompletedToday: 1, CurrentStreak: 2, LongestStreak: 2, TotalCompleted: 7, LastCompletedAt: &last}

		next := calculateCompletion(original, at("2024-03-10T10:00:00Z"), params)

		assert.Equal(t, 1, original.CompletedToday)
		assert.Equal(t, 2, original.CurrentStreak)
		assert.Equal(t, last, *original.LastCompletedAt)
		assert.Equal(t, 2, next.CompletedToday)
		assert.Equal(t, 3, next.CurrentStreak)
		assert.Equal(t, 8, next.TotalCompleted)
	})

	t.Run("stores the full timestamp", func(t *testing.T) {
		t.Parallel()
		now := at("2024-03-10T17:45:12Z")
		next := calculateCompletion(&domain.Progress{}, now, params)
		require.NotNil(t, next.LastCompletedAt)
		assert.True(t, now.Equal(*next.LastCompletedAt))
	})

	t.Run("longest streak follows current", func(t *testing.T) {
		t.Parallel()
		last := at("2024-03-09T10:00:00Z")
		p := &domain.Progress{CurrentStreak: 5, LongestStreak: 5, LastCompletedAt: &last}
		next := calculateCompletion(p, at("2024-03-10T10:00:00Z"), params)
		assert.Equal(t, 6, next.LongestStreak)
	})

	t.Run("longest streak survives reset", func(t *testing.T) {
		t.Parallel()
		last := at("2024-03-01T10:00:00Z")
		p := &domain.Progress{CurrentStreak: 5, LongestStreak: 8, LastCompletedAt: &last}
		next := calculateCompletion(p, at("2024-03-10T10:00:00Z"), params)
		assert.Equal(t, 1, next.CurrentStreak)
		assert.Equal(t, 8, next.LongestStreak)
	})
}

func TestCalculateRollover(t *testing.T) {
	t.Parallel()
	params := utcParams()

	testCases := []struct {
		name          string
		last          *time.Time
		now           time.Time
		wantCompleted int
		wantSkipped   int
		wantStreak    int
	}{
		{
			name:          "no completion yet keeps counters",
			last:          nil,
			now:           at("2024-03-10T09:00:00Z"),
			wantCompleted: 2,
			wantSkipped:   3,
			wantStreak:    4,
		},
		{
			name:          "same day keeps counters",
			last:          ptr(at("2024-03-10T07:00:00Z")),
			now:           at("2024-03-10T09:00:00Z"),
			wantCompleted: 2,
			wantSkipped:   3,
			wantStreak:    4,
		},
		{
			name:          "next day resets daily counters only",
			last:          ptr(at("2024-03-09T20:00:00Z")),
			now:           at("2024-03-10T09:00:00Z"),
			wantCompleted: 0,
			wantSkipped:   0,
			wantStreak:    4,
		},
		{
			name:          "calendar gap of two days but under 48 hours keeps streak",
			last:          ptr(at("2024-03-08T23:00:00Z")),
			now:           at("2024-03-10T01:00:00Z"),
			wantCompleted: 0,
			wantSkipped:   0,
			wantStreak:    4,
		},
		{
			name:          "more than two whole days zeroes streak",
			last:          ptr(at("2024-03-07T08:00:00Z")),
			now:           at("2024-03-10T09:00:00Z"),
			wantCompleted: 0,
			wantSkipped:   0,
			wantStreak:    0,
		},
		{
			name:          "clock moved backwards changes nothing",
			last:          ptr(at("2024-03-12T08:00:00Z")),
			now:           at("2024-03-10T09:00:00Z"),
			wantCompleted: 2,
			wantSkipped:   3,
			wantStreak:    4,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			p := &domain.Progress{
				CompletedToday:  2,
				SkippedToday:    3,
				CurrentStreak:   4,
				LongestStreak:   6,
				TotalCompleted:  20,
				LastCompletedAt: tc.last,
			}

			next := calculateRollover(p, tc.now, params)

			assert.Equal(t, tc.wantCompleted, next.CompletedToday)
			assert.Equal(t, tc.wantSkipped, next.SkippedToday)
			assert.Equal(t, tc.wantStreak, next.CurrentStreak)
			assert.Equal(t, 6, next.LongestStreak)
			assert.Equal(t, 20, next.TotalCompleted)
		})
	}
}
