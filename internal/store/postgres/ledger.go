package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dukerupert/pointlog/internal/database"
)

// LedgerStore owns whole-database operations on the Postgres backend.
type LedgerStore struct {
	pool *pgxpool.Pool
}

func NewLedgerStore(pool *pgxpool.Pool) *LedgerStore {
	return &LedgerStore{pool: pool}
}

// Reset destroys and recreates the tasks and todos tables.
func (s *LedgerStore) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := database.ResetPostgres(s.pool); err != nil {
		return fmt.Errorf("reset ledger: %w", err)
	}
	return nil
}
