package domain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// Category groups action cards by the area of life they target.
type Category string

// Supported categories
const (
	CategoryAdventure Category = "adventure"
	CategoryCareer    Category = "career"
	CategoryMindset   Category = "mindset"
	CategoryFinance   Category = "finance"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryAdventure,
	CategoryCareer,
	CategoryMindset,
	CategoryFinance,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryAdventure, CategoryCareer, CategoryMindset, CategoryFinance:
		return true
	default:
		return false
	}
}

// DisplayName returns the human-readable category name.
func (c Category) DisplayName() string {
	switch c {
	case CategoryAdventure:
		return "Adventure"
	case CategoryCareer:
		return "Career"
	case CategoryMindset:
		return "Mindset"
	case CategoryFinance:
		return "Finance"
	default:
		return string(c)
	}
}

// Difficulty is the rough effort level of an action.
type Difficulty string

// Supported difficulty levels
const (
	DifficultyEasy        Difficulty = "easy"
	DifficultyMedium      Difficulty = "medium"
	DifficultyChallenging Difficulty = "challenging"
)

// Valid reports whether d is one of the known difficulty levels.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyChallenging:
		return true
	default:
		return false
	}
}

// Card-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is nil.
	ErrCardIDEmpty = errors.New("card ID cannot be empty")

	// ErrCardTitleEmpty is returned when a card has no title.
	ErrCardTitleEmpty = errors.New("card title cannot be empty")

	// ErrCardCategoryInvalid is returned when a card's category is unknown.
	ErrCardCategoryInvalid = errors.New("card category is invalid")

	// ErrCardDifficultyInvalid is returned when a card's difficulty is unknown.
	ErrCardDifficultyInvalid = errors.New("card difficulty is invalid")

	// ErrCardDurationInvalid is returned when a card's duration is not positive.
	ErrCardDurationInvalid = errors.New("card duration must be greater than 0")
)

// ActionCard is a single micro-action shown to the user. Cards are owned by
// the catalog and never mutated after loading.
type ActionCard struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Category        Category   `json:"category"`
	IconName        string     `json:"iconName"`
	IsPremium       bool       `json:"isPremium"`
	DurationMinutes int        `json:"durationMinutes"`
	Difficulty      Difficulty `json:"difficulty"`
}

// NewActionCard creates a validated ActionCard with a freshly generated ID.
func NewActionCard(
	title, description string,
	category Category,
	iconName string,
	isPremium bool,
	durationMinutes int,
	difficulty Difficulty,
) (*ActionCard, error) {
	card := &ActionCard{
		ID:              uuid.New(),
		Title:           title,
		Description:     description,
		Category:        category,
		IconName:        iconName,
		IsPremium:       isPremium,
		DurationMinutes: durationMinutes,
		Difficulty:      difficulty,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the ActionCard has valid data.
// Returns an error if any field fails validation.
func (c *ActionCard) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}

	if strings.TrimSpace(c.Title) == "" {
		return ErrCardTitleEmpty
	}

	if !c.Category.Valid() {
		return ErrCardCategoryInvalid
	}

	if !c.Difficulty.Valid() {
		return ErrCardDifficultyInvalid
	}

	if c.DurationMinutes <= 0 {
		return ErrCardDurationInvalid
	}

	return nil
}
