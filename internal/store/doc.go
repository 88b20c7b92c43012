// Package store defines interfaces for data persistence operations.
// The session engine persists a handful of counters and the win ledger
// through SettingsStore, a small key-value contract with explicit
// Get/Set/Flush calls. Backends live under internal/platform; MemoryStore
// serves tests and ephemeral runs.
package store
