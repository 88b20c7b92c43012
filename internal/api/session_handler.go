package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/phrazzld/action-deck/internal/api/shared"
	"github.com/phrazzld/action-deck/internal/session"
)

// SessionController is the subset of session.Controller the HTTP layer drives.
type SessionController interface {
	Snapshot() session.Snapshot
	AcceptCurrent(ctx context.Context) (session.AcceptResult, error)
	SkipCurrent(ctx context.Context) session.SkipResult
	Reshuffle(ctx context.Context) session.Snapshot
	Unlock(ctx context.Context) session.Snapshot
	Restore(ctx context.Context) (bool, error)
	DismissPaywall(ctx context.Context)
}

var _ SessionController = (*session.Controller)(nil)

// AcceptResponse pairs an accept outcome with the session after it.
type AcceptResponse struct {
	Result  session.AcceptResult `json:"result"`
	Session session.Snapshot     `json:"session"`
}

// SkipResponse pairs a skip outcome with the session after it.
type SkipResponse struct {
	Result  session.SkipResult `json:"result"`
	Session session.Snapshot   `json:"session"`
}

// RestoreResponse reports the restored entitlement.
type RestoreResponse struct {
	Premium bool             `json:"premium"`
	Session session.Snapshot `json:"session"`
}

// SessionHandler serves the deck, progress and entitlement endpoints.
type SessionHandler struct {
	ctrl   SessionController
	logger *slog.Logger
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(ctrl SessionController, logger *slog.Logger) *SessionHandler {
	if ctrl == nil {
		panic("ctrl cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionHandler{
		ctrl:   ctrl,
		logger: logger.With(slog.String("component", "session_handler")),
	}
}

// GetSession handles GET /api/session.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, h.ctrl.Snapshot())
}

// Accept handles POST /api/session/accept.
func (h *SessionHandler) Accept(w http.ResponseWriter, r *http.Request) {
	result, err := h.ctrl.AcceptCurrent(r.Context())
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, AcceptResponse{Result: result, Session: h.ctrl.Snapshot()})
}

// Skip handles POST /api/session/skip.
func (h *SessionHandler) Skip(w http.ResponseWriter, r *http.Request) {
	result := h.ctrl.SkipCurrent(r.Context())
	shared.RespondWithJSON(w, r, http.StatusOK, SkipResponse{Result: result, Session: h.ctrl.Snapshot()})
}

// Reshuffle handles POST /api/session/reshuffle.
func (h *SessionHandler) Reshuffle(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, h.ctrl.Reshuffle(r.Context()))
}

// GetProgress handles GET /api/progress.
func (h *SessionHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, h.ctrl.Snapshot().Progress)
}

// Unlock handles POST /api/entitlement/unlock.
func (h *SessionHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	snap := h.ctrl.Unlock(r.Context())
	h.logger.InfoContext(r.Context(), "premium unlocked")
	shared.RespondWithJSON(w, r, http.StatusOK, snap)
}

// Restore handles POST /api/entitlement/restore.
func (h *SessionHandler) Restore(w http.ResponseWriter, r *http.Request) {
	premium, err := h.ctrl.Restore(r.Context())
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, RestoreResponse{Premium: premium, Session: h.ctrl.Snapshot()})
}

// DismissPaywall handles POST /api/paywall/dismiss.
func (h *SessionHandler) DismissPaywall(w http.ResponseWriter, r *http.Request) {
	h.ctrl.DismissPaywall(r.Context())
	shared.RespondWithJSON(w, r, http.StatusOK, h.ctrl.Snapshot())
}
