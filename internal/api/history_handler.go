package api

import (
	"context"
	"net/http"

	"github.com/phrazzld/action-deck/internal/api/shared"
	"github.com/phrazzld/action-deck/internal/ledger"
)

// HistoryLedger is the read and clear side of the win ledger.
type HistoryLedger interface {
	Grouped() ledger.Groups
	ClearAll(ctx context.Context)
}

// HistoryHandler serves the completed actions history.
type HistoryHandler struct {
	ledger HistoryLedger
}

// NewHistoryHandler creates a HistoryHandler.
func NewHistoryHandler(l HistoryLedger) *HistoryHandler {
	if l == nil {
		panic("ledger cannot be nil")
	}
	return &HistoryHandler{ledger: l}
}

// GetHistory handles GET /api/history.
func (h *HistoryHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, h.ledger.Grouped())
}

// ClearHistory handles DELETE /api/history.
func (h *HistoryHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	h.ledger.ClearAll(r.Context())
	w.WriteHeader(http.StatusNoContent)
}
