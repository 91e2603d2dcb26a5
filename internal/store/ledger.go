package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/pointlog/internal/database"
)

// LedgerStore owns whole-database operations on the SQLite backend.
type LedgerStore struct {
	db *sql.DB
}

func NewLedgerStore(db *sql.DB) *LedgerStore {
	return &LedgerStore{db: db}
}

// Reset destroys and recreates the tasks and todos tables.
func (s *LedgerStore) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := database.Reset(s.db); err != nil {
		return fmt.Errorf("reset ledger: %w", err)
	}
	return nil
}
