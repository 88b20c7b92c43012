package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrCompletedAtZero is returned when a completed action has no timestamp.
var ErrCompletedAtZero = errors.New("completed action timestamp cannot be zero")

// CompletedAction is a ledger entry recording one finished action card.
// It copies the display fields of the card at completion time so later
// catalog changes never rewrite history.
type CompletedAction struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Category    Category  `json:"category"`
	IconName    string    `json:"icon_name"`
	CompletedAt time.Time `json:"completed_at"`
}

// NewCompletedAction copies card into a new ledger entry stamped with now.
// The entry gets its own ID, distinct from the card's.
func NewCompletedAction(card ActionCard, now time.Time) CompletedAction {
	return CompletedAction{
		ID:          uuid.New(),
		Title:       card.Title,
		Category:    card.Category,
		IconName:    card.IconName,
		CompletedAt: now,
	}
}

// Validate checks if the CompletedAction has valid data.
func (a *CompletedAction) Validate() error {
	if a.ID == uuid.Nil {
		return ErrInvalidID
	}
	if a.Title == "" {
		return ErrCardTitleEmpty
	}
	if !a.Category.Valid() {
		return ErrCardCategoryInvalid
	}
	if a.CompletedAt.IsZero() {
		return ErrCompletedAtZero
	}
	return nil
}
