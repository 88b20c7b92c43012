// Package catalog loads the bundled set of action cards and builds the
// shuffled decks a session draws from.
package catalog

import (
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/action-deck/internal/domain"
)

// DefaultFreeDeckSize is the number of free cards drawn when the caller
// passes a non-positive limit.
const DefaultFreeDeckSize = 5

// Catalog is an immutable set of action cards. It is safe for concurrent use.
type Catalog struct {
	cards  []domain.ActionCard
	loaded bool

	mu  sync.Mutex // guards rng
	rng *rand.Rand
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithRand replaces the random source used for shuffling.
func WithRand(rng *rand.Rand) Option {
	return func(c *Catalog) {
		if rng != nil {
			c.rng = rng
		}
	}
}

// FromCards builds a catalog over an in-memory card list. The slice is copied
// and ids are kept unique: a card whose id was already seen is dropped.
func FromCards(cards []domain.ActionCard, opts ...Option) *Catalog {
	c := &Catalog{
		cards:  uniqueByID(cards),
		loaded: true,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load reads the catalog at path. Any failure is logged and replaced with
// the built-in fallback set, so Load never fails.
func Load(path string, logger *slog.Logger, opts ...Option) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With(slog.String("component", "catalog"))

	if path == "" {
		log.Info("no catalog path configured, using fallback actions")
		return fallbackCatalog(opts...)
	}

	cards, err := ReadFile(path)
	if err != nil {
		log.Warn("failed to load catalog, using fallback actions",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return fallbackCatalog(opts...)
	}

	log.Info("catalog loaded", slog.String("path", path), slog.Int("cards", len(cards)))
	return FromCards(cards, opts...)
}

func uniqueByID(cards []domain.ActionCard) []domain.ActionCard {
	out := make([]domain.ActionCard, 0, len(cards))
	seen := make(map[uuid.UUID]struct{}, len(cards))
	for _, card := range cards {
		if _, dup := seen[card.ID]; dup {
			continue
		}
		seen[card.ID] = struct{}{}
		out = append(out, card)
	}
	return out
}

func fallbackCatalog(opts ...Option) *Catalog {
	c := FromCards(Fallback(), opts...)
	c.loaded = false
	return c
}

// Loaded reports whether the catalog came from a bundle rather than the fallback set.
func (c *Catalog) Loaded() bool {
	return c.loaded
}

// Len returns the number of cards in the catalog.
func (c *Catalog) Len() int {
	return len(c.cards)
}

// All returns a copy of every card in bundle order.
func (c *Catalog) All() []domain.ActionCard {
	return append([]domain.ActionCard(nil), c.cards...)
}

// ForCategory returns the cards of one category in bundle order.
func (c *Catalog) ForCategory(category domain.Category) []domain.ActionCard {
	var out []domain.ActionCard
	for _, card := range c.cards {
		if card.Category == category {
			out = append(out, card)
		}
	}
	return out
}

// SessionDeck draws a fresh deck. Premium users get a permutation of the
// whole catalog; free users get at most freeLimit shuffled free cards.
func (c *Catalog) SessionDeck(isPremium bool, freeLimit int) []domain.ActionCard {
	if isPremium {
		return c.shuffle(c.All())
	}

	if freeLimit <= 0 {
		freeLimit = DefaultFreeDeckSize
	}

	free := make([]domain.ActionCard, 0, len(c.cards))
	for _, card := range c.cards {
		if !card.IsPremium {
			free = append(free, card)
		}
	}
	free = c.shuffle(free)
	if len(free) > freeLimit {
		free = free[:freeLimit]
	}
	return free
}

func (c *Catalog) shuffle(cards []domain.ActionCard) []domain.ActionCard {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
	return cards
}
