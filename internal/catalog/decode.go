package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/phrazzld/action-deck/internal/domain"
)

var (
	// ErrUnsupportedFormat is returned for catalog files with an unknown extension.
	ErrUnsupportedFormat = errors.New("unsupported catalog format")

	// ErrEmptyCatalog is returned when a bundle decodes to zero cards.
	ErrEmptyCatalog = errors.New("catalog contains no actions")
)

// record is the on-disk shape of one action. The id is optional.
type record struct {
	ID              string `json:"id"              toml:"id"              yaml:"id"              validate:"omitempty,uuid"`
	Title           string `json:"title"           toml:"title"           yaml:"title"           validate:"required"`
	Description     string `json:"description"     toml:"description"     yaml:"description"`
	Category        string `json:"category"        toml:"category"        yaml:"category"        validate:"required,oneof=adventure career mindset finance"`
	IconName        string `json:"iconName"        toml:"iconName"        yaml:"iconName"`
	IsPremium       bool   `json:"isPremium"       toml:"isPremium"       yaml:"isPremium"`
	DurationMinutes int    `json:"durationMinutes" toml:"durationMinutes" yaml:"durationMinutes" validate:"gt=0"`
	Difficulty      string `json:"difficulty"      toml:"difficulty"      yaml:"difficulty"      validate:"required,oneof=easy medium challenging"`
}

// tomlBundle wraps records as [[actions]] tables, since TOML has no top-level arrays.
type tomlBundle struct {
	Actions []record `toml:"actions"`
}

var validate = validator.New()

// ReadFile decodes and validates the catalog at path.
func ReadFile(path string) ([]domain.ActionCard, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Decode(data, filepath.Ext(path))
}

// Decode parses data in the format named by ext (".json", ".toml", ".yaml"
// or ".yml") and returns validated cards.
func Decode(data []byte, ext string) ([]domain.ActionCard, error) {
	var records []record

	switch strings.ToLower(ext) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&records); err != nil {
			return nil, fmt.Errorf("decode json catalog: %w", err)
		}
	case ".toml":
		var bundle tomlBundle
		if _, err := toml.Decode(string(data), &bundle); err != nil {
			return nil, fmt.Errorf("decode toml catalog: %w", err)
		}
		records = bundle.Actions
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("decode yaml catalog: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	return toCards(records)
}

func toCards(records []record) ([]domain.ActionCard, error) {
	if len(records) == 0 {
		return nil, ErrEmptyCatalog
	}

	cards := make([]domain.ActionCard, 0, len(records))
	seen := make(map[uuid.UUID]int, len(records))

	for i, r := range records {
		if err := validate.Struct(r); err != nil {
			return nil, fmt.Errorf("action %d: %w: %v", i, domain.ErrValidation, err)
		}

		id := uuid.New()
		if r.ID != "" {
			parsed, err := uuid.Parse(r.ID)
			if err != nil {
				return nil, fmt.Errorf("action %d: %w", i, domain.ErrInvalidID)
			}
			id = parsed
		}
		if prev, dup := seen[id]; dup {
			return nil, fmt.Errorf("action %d repeats id of action %d: %w", i, prev, domain.ErrDuplicateID)
		}
		seen[id] = i

		card := domain.ActionCard{
			ID:              id,
			Title:           r.Title,
			Description:     r.Description,
			Category:        domain.Category(r.Category),
			IconName:        r.IconName,
			IsPremium:       r.IsPremium,
			DurationMinutes: r.DurationMinutes,
			Difficulty:      domain.Difficulty(r.Difficulty),
		}
		if err := card.Validate(); err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
		cards = append(cards, card)
	}

	return cards, nil
}
