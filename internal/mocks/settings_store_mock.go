package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/phrazzld/action-deck/internal/store"
)

// TestifyMockSettingsStore is a mock of store.SettingsStore for use with testify/mock
type TestifyMockSettingsStore struct {
	mock.Mock
}

var _ store.SettingsStore = (*TestifyMockSettingsStore)(nil)

// Get is a mock implementation of store.SettingsStore.Get
func (m *TestifyMockSettingsStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if v, ok := args.Get(0).([]byte); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

// Set is a mock implementation of store.SettingsStore.Set
func (m *TestifyMockSettingsStore) Set(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

// Delete is a mock implementation of store.SettingsStore.Delete
func (m *TestifyMockSettingsStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// Flush is a mock implementation of store.SettingsStore.Flush
func (m *TestifyMockSettingsStore) Flush(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close is a mock implementation of store.SettingsStore.Close
func (m *TestifyMockSettingsStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
