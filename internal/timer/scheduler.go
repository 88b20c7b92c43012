// Package timer schedules deferred callbacks keyed by a generation counter.
// Advancing the generation cancels everything scheduled under older ones,
// so a superseded signal can never fire late.
package timer

import (
	"sync"
	"time"
)

// Stopper cancels a pending callback.
type Stopper interface {
	Stop() bool
}

// Clock abstracts time.AfterFunc so tests can drive time by hand.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Stopper
}

// SystemClock is the wall clock.
type SystemClock struct{}

// AfterFunc delegates to time.AfterFunc.
func (SystemClock) AfterFunc(d time.Duration, f func()) Stopper {
	return time.AfterFunc(d, f)
}

// Scheduler owns a generation counter and the timers registered under it.
type Scheduler struct {
	clock Clock

	mu      sync.Mutex
	gen     uint64
	nextID  uint64
	pending map[uint64]Stopper
}

// NewScheduler creates a Scheduler. A nil clock means SystemClock.
func NewScheduler(clock Clock) *Scheduler {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Scheduler{
		clock:   clock,
		pending: make(map[uint64]Stopper),
	}
}

// Generation returns the current generation.
func (s *Scheduler) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Advance cancels every pending timer and returns the new generation.
func (s *Scheduler) Advance() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
	s.gen++
	return s.gen
}

// Schedule runs fn after delay if gen is still current when the timer fires.
// It reports false when gen is already stale.
func (s *Scheduler) Schedule(gen uint64, delay time.Duration, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		return false
	}

	s.nextID++
	id := s.nextID
	s.pending[id] = s.clock.AfterFunc(delay, func() {
		s.mu.Lock()
		_, live := s.pending[id]
		delete(s.pending, id)
		current := s.gen == gen
		s.mu.Unlock()

		if live && current {
			fn()
		}
	})
	return true
}

// Pending returns the number of timers that have neither fired nor been cancelled.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Stop cancels every pending timer without changing the generation.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
}

func (s *Scheduler) cancelLocked() {
	for id, t := range s.pending {
		t.Stop()
		delete(s.pending, id)
	}
}
