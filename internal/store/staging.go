package store

import (
	"sort"
	"sync"
)

// Change is one staged mutation. A nil Value marks a deletion.
type Change struct {
	Key   string
	Value []byte
}

// Staging buffers Set and Delete calls between flushes. Backends embed it
// and drain it inside their Flush transaction.
type Staging struct {
	mu      sync.Mutex
	pending map[string][]byte
	deleted map[string]bool
}

// Stage records a pending value for key.
func (s *Staging) Stage(key string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		s.pending = make(map[string][]byte)
		s.deleted = make(map[string]bool)
	}
	s.pending[key] = append([]byte(nil), value...)
	delete(s.deleted, key)
}

// StageDelete records a pending deletion for key.
func (s *Staging) StageDelete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		s.pending = make(map[string][]byte)
		s.deleted = make(map[string]bool)
	}
	delete(s.pending, key)
	s.deleted[key] = true
}

// Lookup reports a staged value for key. found is true when the key has a
// staged change; deleted is true when that change is a deletion.
func (s *Staging) Lookup(key string) (value []byte, found bool, deleted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleted[key] {
		return nil, true, true
	}
	v, ok := s.pending[key]
	if !ok {
		return nil, false, false
	}
	return append([]byte(nil), v...), true, false
}

// Changes returns the staged changes sorted by key.
func (s *Staging) Changes() []Change {
	s.mu.Lock()
	defer s.mu.Unlock()
	changes := make([]Change, 0, len(s.pending)+len(s.deleted))
	for k, v := range s.pending {
		changes = append(changes, Change{Key: k, Value: append([]byte(nil), v...)})
	}
	for k := range s.deleted {
		changes = append(changes, Change{Key: k})
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Key < changes[j].Key })
	return changes
}

// Commit drops the given changes from the staging area, unless a newer
// change for the same key was staged since they were read.
func (s *Staging) Commit(changes []Change) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range changes {
		if c.Value == nil {
			if s.deleted[c.Key] {
				delete(s.deleted, c.Key)
			}
			continue
		}
		if v, ok := s.pending[c.Key]; ok && string(v) == string(c.Value) {
			delete(s.pending, c.Key)
		}
	}
}
