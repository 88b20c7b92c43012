package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// SQLDialect holds the statements a SQLSettingsStore runs against the
// settings table. Each backend supplies its own placeholders and upsert form.
type SQLDialect struct {
	// GetQuery selects value by key.
	GetQuery string
	// UpsertQuery writes (key, value, updated_at).
	UpsertQuery string
	// DeleteQuery removes a key.
	DeleteQuery string
	// MapError translates driver errors. May be nil.
	MapError func(error) error
}

// SQLSettingsStore is a SettingsStore over database/sql. Set and Delete are
// staged in memory; Flush writes every staged change in one transaction.
type SQLSettingsStore struct {
	Staging

	db      *sql.DB
	dialect SQLDialect
	now     func() time.Time

	mu     sync.RWMutex
	closed bool
}

// Ensure SQLSettingsStore implements SettingsStore interface
var _ SettingsStore = (*SQLSettingsStore)(nil)

// NewSQLSettingsStore wraps an open database whose schema is already migrated.
func NewSQLSettingsStore(db *sql.DB, dialect SQLDialect) *SQLSettingsStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if dialect.MapError == nil {
		dialect.MapError = func(err error) error { return err }
	}
	return &SQLSettingsStore{db: db, dialect: dialect, now: time.Now}
}

// DB returns the underlying handle.
func (s *SQLSettingsStore) DB() *sql.DB {
	return s.db
}

// Get implements SettingsStore.Get
func (s *SQLSettingsStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(key) == "" {
		return nil, ErrEmptyKey
	}
	if v, found, deleted := s.Lookup(key); found {
		if deleted {
			return nil, ErrSettingNotFound
		}
		return v, nil
	}
	if s.isClosed() {
		return nil, ErrClosed
	}

	var value []byte
	err := s.db.QueryRowContext(ctx, s.dialect.GetQuery, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSettingNotFound
	}
	if err != nil {
		return nil, NewStoreError("setting", "get", "failed to read setting", s.dialect.MapError(err))
	}
	if value == nil {
		value = []byte{}
	}
	return value, nil
}

// Set implements SettingsStore.Set
func (s *SQLSettingsStore) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	if value == nil {
		value = []byte{}
	}
	s.Stage(key, value)
	return nil
}

// Delete implements SettingsStore.Delete
func (s *SQLSettingsStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	s.StageDelete(key)
	return nil
}

// Flush implements SettingsStore.Flush
func (s *SQLSettingsStore) Flush(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.isClosed() {
		return ErrClosed
	}

	changes := s.Changes()
	if len(changes) == 0 {
		return nil
	}

	now := s.now().UTC()
	err := RunInTransaction(ctx, s.db, func(ctx context.Context, q DBTX) error {
		return s.write(ctx, q, changes, now)
	})
	if err != nil {
		return NewStoreError("setting", "flush", "failed to write settings", errors.Join(ErrTransactionFailed, err))
	}

	s.Commit(changes)
	return nil
}

func (s *SQLSettingsStore) write(ctx context.Context, q DBTX, changes []Change, now time.Time) error {
	for _, c := range changes {
		var err error
		if c.Value == nil {
			_, err = q.ExecContext(ctx, s.dialect.DeleteQuery, c.Key)
		} else {
			_, err = q.ExecContext(ctx, s.dialect.UpsertQuery, c.Key, c.Value, now)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", c.Key, s.dialect.MapError(err))
		}
	}
	return nil
}

// Close implements SettingsStore.Close
func (s *SQLSettingsStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *SQLSettingsStore) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}
