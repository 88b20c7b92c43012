// Package streak implements the calendar arithmetic behind daily progress:
// counting completions, extending or restarting the streak, and the rollover
// that opens a fresh daily quota.
//
// Completions compare calendar days in the configured location. Rollover
// zeroes the streak by counting whole 24 hour periods since the last
// completion instead, so a completion late on Monday followed by a session
// early on Wednesday keeps the streak alive until the next completion
// restarts it at 1.
package streak
