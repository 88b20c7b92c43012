package streak

import (
	"time"

	"github.com/phrazzld/action-deck/internal/domain"
)

const day = 24 * time.Hour

// calendarDay returns midnight UTC of the civil date of t in loc. Using a
// UTC anchor keeps day subtraction exact across DST transitions.
func calendarDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// calendarDaysBetween returns the number of calendar days from "from" to
// "to" in loc. The result is negative when "to" falls on an earlier day.
func calendarDaysBetween(from, to time.Time, loc *time.Location) int {
	return int(calendarDay(to, loc).Sub(calendarDay(from, loc)) / day)
}

// elapsedWholeDays returns the number of complete 24 hour periods between
// from and to, ignoring calendar boundaries.
func elapsedWholeDays(from, to time.Time) int {
	return int(to.Sub(from) / day)
}

// nextStreak computes the current streak after a completion at now.
//
// Algorithm behavior:
//   - No previous completion: the streak starts at 1
//   - Same calendar day: unchanged
//   - Next calendar day: incremented
//   - Two or more days later: restarted at 1
//   - Earlier calendar day (clock moved backwards): unchanged
func nextStreak(current int, last *time.Time, now time.Time, params *Params) int {
	if last == nil {
		return 1
	}

	diff := calendarDaysBetween(*last, now, params.Location)
	switch {
	case diff == 1:
		return current + 1
	case diff > 1:
		return 1
	default:
		return current
	}
}

// calculateCompletion creates a new Progress after one completed action.
// The original is not modified.
func calculateCompletion(p *domain.Progress, now time.Time, params *Params) *domain.Progress {
	next := p.Clone()

	next.CompletedToday++
	next.TotalCompleted++

	next.CurrentStreak = nextStreak(p.CurrentStreak, p.LastCompletedAt, now, params)

	completedAt := now
	next.LastCompletedAt = &completedAt

	if next.CurrentStreak > next.LongestStreak {
		next.LongestStreak = next.CurrentStreak
	}

	return next
}

// calculateRollover creates a new Progress reconciled against now.
//
// Daily counters reset when the last completion happened on an earlier
// calendar day. Independently, the current streak is zeroed when more than
// StreakGraceDays whole 24 hour periods have elapsed since the last
// completion.
func calculateRollover(p *domain.Progress, now time.Time, params *Params) *domain.Progress {
	next := p.Clone()
	if p.LastCompletedAt == nil {
		return next
	}

	last := *p.LastCompletedAt
	if calendarDaysBetween(last, now, params.Location) > 0 {
		next.CompletedToday = 0
		next.SkippedToday = 0
	}

	if elapsedWholeDays(last, now) > params.StreakGraceDays {
		next.CurrentStreak = 0
	}

	return next
}
