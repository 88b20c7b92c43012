package domain

import (
	"errors"
	"time"
)

// Common validation errors for Progress
var (
	ErrNegativeCounter    = errors.New("progress counters cannot be negative")
	ErrLongestBelowStreak = errors.New("longest streak cannot be below current streak")
)

// Progress holds the persisted daily counters and streak state.
// It is mutated only through the streak algorithm and the progress tracker.
type Progress struct {
	CompletedToday  int        `json:"completed_today"`
	SkippedToday    int        `json:"skipped_today"`
	CurrentStreak   int        `json:"current_streak"`
	LongestStreak   int        `json:"longest_streak"`
	TotalCompleted  int        `json:"total_completed"`
	LastCompletedAt *time.Time `json:"last_completed_at,omitempty"`
}

// Validate checks the counter invariants.
func (p *Progress) Validate() error {
	if p.CompletedToday < 0 ||
		p.SkippedToday < 0 ||
		p.CurrentStreak < 0 ||
		p.LongestStreak < 0 ||
		p.TotalCompleted < 0 {
		return ErrNegativeCounter
	}

	if p.LongestStreak < p.CurrentStreak {
		return ErrLongestBelowStreak
	}

	return nil
}

// Clone returns a deep copy of p.
func (p *Progress) Clone() *Progress {
	c := *p
	if p.LastCompletedAt != nil {
		t := *p.LastCompletedAt
		c.LastCompletedAt = &t
	}
	return &c
}
