package api

import (
	"net/http"

	"github.com/phrazzld/action-deck/internal/api/shared"
	"github.com/phrazzld/action-deck/internal/domain"
	"github.com/phrazzld/action-deck/internal/events"
)

// EventFeed buffers recent session signals.
type EventFeed interface {
	After(seq uint64) []events.Event
	LastSeq() uint64
}

// CardSource lists catalog cards.
type CardSource interface {
	All() []domain.ActionCard
	ForCategory(category domain.Category) []domain.ActionCard
}

// EventsResponse is a page of signals newer than the requested sequence.
type EventsResponse struct {
	Events  []events.Event `json:"events"`
	LastSeq uint64         `json:"last_seq"`
}

// CatalogQuery filters GET /api/catalog.
type CatalogQuery struct {
	Category string `validate:"omitempty,oneof=adventure career mindset finance"`
}

// CatalogResponse lists catalog cards.
type CatalogResponse struct {
	Cards []domain.ActionCard `json:"cards"`
}

// FeedHandler serves the signal feed and the catalog listing.
type FeedHandler struct {
	feed    EventFeed
	catalog CardSource
}

// NewFeedHandler creates a FeedHandler.
func NewFeedHandler(feed EventFeed, catalog CardSource) *FeedHandler {
	if feed == nil {
		panic("feed cannot be nil")
	}
	if catalog == nil {
		panic("catalog cannot be nil")
	}
	return &FeedHandler{feed: feed, catalog: catalog}
}

// GetEvents handles GET /api/events?after=<seq>.
func (h *FeedHandler) GetEvents(w http.ResponseWriter, r *http.Request) {
	after, err := shared.QueryUint(r, "after", 0)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid after: must be a sequence number", err)
		return
	}
	evts := h.feed.After(after)
	if evts == nil {
		evts = []events.Event{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, EventsResponse{Events: evts, LastSeq: h.feed.LastSeq()})
}

// GetCatalog handles GET /api/catalog?category=<name>.
func (h *FeedHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	q := CatalogQuery{Category: r.URL.Query().Get("category")}
	if err := shared.ValidateRequest(&q); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	var cards []domain.ActionCard
	if q.Category == "" {
		cards = h.catalog.All()
	} else {
		cards = h.catalog.ForCategory(domain.Category(q.Category))
	}
	if cards == nil {
		cards = []domain.ActionCard{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, CatalogResponse{Cards: cards})
}
