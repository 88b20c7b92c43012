package session

import (
	"context"
	"time"

	"github.com/phrazzld/action-deck/internal/domain"
)

// State is the derived condition of a session.
type State string

const (
	// StateActive means a card is showing and accepting it would count.
	StateActive State = "active"
	// StateAtQuota means a free user has used up today's completions.
	StateAtQuota State = "at_quota"
	// StateEmpty means the deck has no cards.
	StateEmpty State = "empty"
)

// Outcome describes what an accept did.
type Outcome string

const (
	// OutcomeNoCard means there was no current card; nothing changed.
	OutcomeNoCard Outcome = "no_card"
	// OutcomeGated means the quota was already reached; nothing was recorded.
	OutcomeGated Outcome = "gated"
	// OutcomeCompleted means the card was recorded as a win.
	OutcomeCompleted Outcome = "completed"
)

// AcceptResult reports the effect of AcceptCurrent.
type AcceptResult struct {
	Outcome Outcome `json:"outcome"`
	// Completed is the new ledger entry when Outcome is OutcomeCompleted.
	Completed *domain.CompletedAction `json:"completed,omitempty"`
	// Reshuffled is true when completing the last card drew a new deck.
	Reshuffled bool `json:"reshuffled"`
	// QuotaReached is true when this completion used up the free quota.
	QuotaReached bool            `json:"quota_reached"`
	Progress     domain.Progress `json:"progress"`
}

// SkipResult reports the effect of SkipCurrent.
type SkipResult struct {
	Skipped  bool               `json:"skipped"`
	Card     *domain.ActionCard `json:"card,omitempty"`
	Progress domain.Progress    `json:"progress"`
}

// Snapshot is a copy of everything a client needs to render a session.
type Snapshot struct {
	State          State               `json:"state"`
	Deck           []domain.ActionCard `json:"deck"`
	Cursor         int                 `json:"cursor"`
	Current        *domain.ActionCard  `json:"current,omitempty"`
	Progress       domain.Progress     `json:"progress"`
	Premium        bool                `json:"premium"`
	DailyFreeLimit int                 `json:"daily_free_limit"`
	RemainingFree  int                 `json:"remaining_free"`
	PaywallOpen    bool                `json:"paywall_open"`
	Generation     uint64              `json:"generation"`
	Version        uint64              `json:"version"`
}

// Options holds the deck size and signal timings.
type Options struct {
	// FreeDeckSize bounds a free user's deck.
	FreeDeckSize int
	// GateDelay separates the at-capacity signal from the paywall signal.
	GateDelay time.Duration
	// CelebrationDelay precedes the gate when a completion uses up the quota.
	CelebrationDelay time.Duration
}

// DefaultOptions returns the standard timings: a five card free deck, 2.5s
// between at-capacity and paywall, 2s of celebration.
func DefaultOptions() Options {
	return Options{
		FreeDeckSize:     5,
		GateDelay:        2500 * time.Millisecond,
		CelebrationDelay: 2 * time.Second,
	}
}

// DeckSource draws session decks.
type DeckSource interface {
	SessionDeck(isPremium bool, freeLimit int) []domain.ActionCard
}

// ProgressTracker owns daily counters and the streak.
type ProgressTracker interface {
	Reconcile(ctx context.Context) domain.Progress
	RolloverIfNewDay(ctx context.Context) (domain.Progress, bool)
	RecordCompletion(ctx context.Context) domain.Progress
	RecordSkip(ctx context.Context) domain.Progress
	Snapshot() domain.Progress
}

// Ledger records wins.
type Ledger interface {
	AddWin(ctx context.Context, card domain.ActionCard) domain.CompletedAction
}

// Gate answers entitlement questions.
type Gate interface {
	IsPremium() bool
	DailyFreeLimit() int
	Unlock(ctx context.Context)
	Restore(ctx context.Context) (bool, error)
}
