package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/pointlog/internal/websocket"
)

const resetTokenTTL = 2 * time.Minute

var ErrInvalidResetToken = errors.New("reset token is invalid or expired")

// LedgerResetter destroys and recreates both tables.
type LedgerResetter interface {
	Reset(ctx context.Context) error
}

// ResetHandler guards the destructive reset behind a short-lived token the
// client must echo back.
type ResetHandler struct {
	ledger LedgerResetter
	hub    *websocket.Hub
	logger *slog.Logger
	now    func() time.Time

	mu     sync.Mutex
	tokens map[string]time.Time
}

func NewResetHandler(ledger LedgerResetter, hub *websocket.Hub, logger *slog.Logger) *ResetHandler {
	return &ResetHandler{
		ledger: ledger,
		hub:    hub,
		logger: logger,
		now:    time.Now,
		tokens: make(map[string]time.Time),
	}
}

// Issue creates a token valid for resetTokenTTL.
func (h *ResetHandler) Issue() (string, time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	for t, exp := range h.tokens {
		if !now.Before(exp) {
			delete(h.tokens, t)
		}
	}

	token := uuid.NewString()
	expires := now.Add(resetTokenTTL)
	h.tokens[token] = expires
	return token, expires
}

// Confirm consumes token and wipes the ledger.
func (h *ResetHandler) Confirm(ctx context.Context, token string) error {
	h.mu.Lock()
	exp, ok := h.tokens[token]
	delete(h.tokens, token)
	h.mu.Unlock()

	if !ok || !h.now().Before(exp) {
		return ErrInvalidResetToken
	}

	if err := h.ledger.Reset(ctx); err != nil {
		h.logger.Error("reset ledger", "error", err)
		return err
	}
	h.logger.Warn("ledger reset")
	h.hub.Notify(websocket.EntityLedger, "reset", 0)
	return nil
}

func (h *ResetHandler) Request(w http.ResponseWriter, r *http.Request) {
	token, expires := h.Issue()
	writeJSON(w, http.StatusOK, map[string]any{"token": token, "expires_at": expires})
}

type resetConfirmRequest struct {
	Token string `json:"token"`
}

func (h *ResetHandler) ConfirmAPI(w http.ResponseWriter, r *http.Request) {
	var req resetConfirmRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.Confirm(r.Context(), req.Token); err != nil {
		if errors.Is(err, ErrInvalidResetToken) {
			writeError(w, http.StatusForbidden, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to reset")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}
