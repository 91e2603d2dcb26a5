package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLedger struct {
	resets int
	err    error
}

func (f *fakeLedger) Reset(context.Context) error {
	f.resets++
	return f.err
}

func newTestResetHandler(l LedgerResetter) (*ResetHandler, *time.Time) {
	now := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	h := NewResetHandler(l, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	h.now = func() time.Time { return now }
	return h, &now
}

func TestResetConfirmConsumesToken(t *testing.T) {
	ledger := &fakeLedger{}
	h, _ := newTestResetHandler(ledger)

	token, expires := h.Issue()
	assert.NotEmpty(t, token)
	assert.Equal(t, resetTokenTTL, expires.Sub(h.now()))

	require.NoError(t, h.Confirm(context.Background(), token))
	assert.Equal(t, 1, ledger.resets)

	err := h.Confirm(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidResetToken)
	assert.Equal(t, 1, ledger.resets, "a token works once")
}

func TestResetConfirmExpired(t *testing.T) {
	ledger := &fakeLedger{}
	h, now := newTestResetHandler(ledger)

	token, _ := h.Issue()
	*now = now.Add(resetTokenTTL)

	assert.ErrorIs(t, h.Confirm(context.Background(), token), ErrInvalidResetToken)
	assert.Zero(t, ledger.resets)
}

func TestResetConfirmUnknownToken(t *testing.T) {
	ledger := &fakeLedger{}
	h, _ := newTestResetHandler(ledger)

	assert.ErrorIs(t, h.Confirm(context.Background(), "guess"), ErrInvalidResetToken)
	assert.Zero(t, ledger.resets)
}

func TestResetConfirmStoreFailure(t *testing.T) {
	ledger := &fakeLedger{err: errors.New("disk full")}
	h, _ := newTestResetHandler(ledger)

	token, _ := h.Issue()
	err := h.Confirm(context.Background(), token)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidResetToken)
}

func TestIssuePrunesExpiredTokens(t *testing.T) {
	h, now := newTestResetHandler(&fakeLedger{})

	h.Issue()
	*now = now.Add(resetTokenTTL + time.Second)
	h.Issue()

	h.mu.Lock()
	defer h.mu.Unlock()
	assert.Len(t, h.tokens, 1)
}
