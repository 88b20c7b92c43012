package catalog

import (
	"github.com/google/uuid"

	"github.com/phrazzld/action-deck/internal/domain"
)

// Fallback returns the free cards used when no bundle can be loaded, one per
// category. Each call yields fresh ids.
func Fallback() []domain.ActionCard {
	return []domain.ActionCard{
		{
			ID:              uuid.New(),
			Title:           "Main Character Energy",
			Description:     "Walk into the next room like you own it. Shoulders back, chin up, slow down.",
			Category:        domain.CategoryMindset,
			IconName:        "star.fill",
			DurationMinutes: 2,
			Difficulty:      domain.DifficultyEasy,
		},
		{
			ID:              uuid.New(),
			Title:           "Face Your Finances",
			Description:     "Open your bank app and look at your balance. No fear, no judgment. Financial freedom starts with awareness.",
			Category:        domain.CategoryFinance,
			IconName:        "dollarsign.circle.fill",
			DurationMinutes: 3,
			Difficulty:      domain.DifficultyEasy,
		},
		{
			ID:              uuid.New(),
			Title:           "Check Flight Prices",
			Description:     "Open Google Flights and look up your dream destination. No commitment, just possibilities.",
			Category:        domain.CategoryAdventure,
			IconName:        "airplane.departure",
			DurationMinutes: 5,
			Difficulty:      domain.DifficultyEasy,
		},
		{
			ID:              uuid.New(),
			Title:           "Polish One Line",
			Description:     "Open your resume or profile and rewrite a single line so it sounds like you. Small edits add up.",
			Category:        domain.CategoryCareer,
			IconName:        "briefcase.fill",
			DurationMinutes: 3,
			Difficulty:      domain.DifficultyEasy,
		},
	}
}
