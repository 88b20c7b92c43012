package store

import "context"

// Keys persisted by the session engine.
const (
	KeyCompletedToday        = "completedToday"
	KeySkippedToday          = "skippedToday"
	KeyCurrentStreak         = "currentStreak"
	KeyLongestStreak         = "longestStreak"
	KeyTotalCompleted        = "totalActionsCompleted"
	KeyLastCompletedDate     = "lastCompletedDate"
	KeyLedger                = "completedActionsHistory"
	KeyHasSeenOnboarding     = "hasSeenOnboarding"
	KeyHasActiveSubscription = "hasActiveSubscription"
)

// SettingsStore is a key-value store for small persisted values.
// Version: 1.0
type SettingsStore interface {
	// Get returns the committed or staged value for key.
	// Returns ErrSettingNotFound if the key has never been set.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stages value under key. Staged values are visible to Get
	// immediately but only become durable after Flush.
	Set(ctx context.Context, key string, value []byte) error

	// Delete stages the removal of key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Flush durably writes every staged change in a single atomic step.
	// A failed flush keeps the staged changes so a later Flush can retry.
	Flush(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
