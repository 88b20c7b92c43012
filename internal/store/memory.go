package store

import (
	"context"
	"strings"
	"sync"
)

// MemoryStore is an in-process SettingsStore. Flushed values live only for
// the lifetime of the process.
type MemoryStore struct {
	Staging

	mu        sync.RWMutex
	committed map[string][]byte
	closed    bool

	// FlushErr, when set, makes Flush fail without committing anything.
	FlushErr error

	flushes int
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{committed: make(map[string][]byte)}
}

// Ensure MemoryStore implements SettingsStore interface
var _ SettingsStore = (*MemoryStore)(nil)

// Get implements SettingsStore.Get
func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(key) == "" {
		return nil, ErrEmptyKey
	}
	if v, found, deleted := m.Lookup(key); found {
		if deleted {
			return nil, ErrSettingNotFound
		}
		return v, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	v, ok := m.committed[key]
	if !ok {
		return nil, ErrSettingNotFound
	}
	return append([]byte(nil), v...), nil
}

// Set implements SettingsStore.Set
func (m *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	if value == nil {
		value = []byte{}
	}
	m.Stage(key, value)
	return nil
}

// Delete implements SettingsStore.Delete
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	m.StageDelete(key)
	return nil
}

// Flush implements SettingsStore.Flush
func (m *MemoryStore) Flush(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if m.FlushErr != nil {
		return NewStoreError("setting", "flush", "failed to write settings", m.FlushErr)
	}

	changes := m.Changes()
	for _, c := range changes {
		if c.Value == nil {
			delete(m.committed, c.Key)
			continue
		}
		m.committed[c.Key] = c.Value
	}
	m.Commit(changes)
	m.flushes++
	return nil
}

// Close implements SettingsStore.Close
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Committed returns a copy of the flushed value for key, ignoring staged changes.
func (m *MemoryStore) Committed(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.committed[key]
	return append([]byte(nil), v...), ok
}

// Flushes returns the number of successful flushes.
func (m *MemoryStore) Flushes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.flushes
}
