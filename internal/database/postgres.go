package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

// OpenPostgres connects to a hosted Postgres database and runs migrations.
func OpenPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	// The *sql.DB shares the pool's connections and keeps none idle.
	if err := runMigrations(stdlib.OpenDBFromPool(pool), "postgres", postgresDir); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return pool, nil
}

// ResetPostgres drops every table of the Postgres schema and recreates it empty.
func ResetPostgres(pool *pgxpool.Pool) error {
	return resetSchema(stdlib.OpenDBFromPool(pool), "postgres", postgresDir)
}
