package events

import (
	"context"
	"sync"
)

// DefaultFeedCapacity is the number of events a Feed keeps when none is given.
const DefaultFeedCapacity = 256

// Feed is an EventHandler that keeps the most recent events in sequence
// order. Events stamped by an InMemoryEventEmitter keep their number; unstamped
// ones get the next number after the newest stored event.
type Feed struct {
	mu       sync.Mutex
	capacity int
	seq      uint64
	buf      []Event
}

var _ EventHandler = (*Feed)(nil)

// NewFeed creates a Feed holding at most capacity events.
func NewFeed(capacity int) *Feed {
	if capacity <= 0 {
		capacity = DefaultFeedCapacity
	}
	return &Feed{capacity: capacity}
}

// HandleEvent stores a stamped copy of event.
func (f *Feed) HandleEvent(_ context.Context, event *Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored := *event
	if stored.Seq <= f.seq {
		stored.Seq = f.seq + 1
	}
	f.seq = stored.Seq
	f.buf = append(f.buf, stored)
	if over := len(f.buf) - f.capacity; over > 0 {
		f.buf = append(f.buf[:0:0], f.buf[over:]...)
	}
	return nil
}

// After returns the buffered events with a sequence number greater than seq,
// oldest first. Events evicted from the buffer are silently skipped.
func (f *Feed) After(seq uint64) []Event {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]Event, 0, len(f.buf))
	for _, e := range f.buf {
		if e.Seq > seq {
			out = append(out, e)
		}
	}
	return out
}

// LastSeq returns the sequence number of the newest event, or 0.
func (f *Feed) LastSeq() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seq
}
