package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukerupert/pointlog/internal/config"
	"github.com/dukerupert/pointlog/internal/database"
	"github.com/dukerupert/pointlog/internal/model"
	"github.com/dukerupert/pointlog/internal/store"
	"github.com/dukerupert/pointlog/internal/store/postgres"
)

type taskStore interface {
	Create(ctx context.Context, entry model.TaskEntry) (int64, error)
	Update(ctx context.Context, entry model.TaskEntry) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]model.TaskEntry, error)
}

type todoStore interface {
	Create(ctx context.Context, title string, createdAt time.Time) (int64, error)
	List(ctx context.Context) ([]model.TodoEntry, error)
	Delete(ctx context.Context, id int64) error
	Complete(ctx context.Context, id int64, award func(*model.TodoEntry) model.TaskEntry) (*model.TaskEntry, error)
}

type ledgerStore interface {
	Reset(ctx context.Context) error
}

// backend is the store set for the configured storage backend.
type backend struct {
	tasks  taskStore
	todos  todoStore
	ledger ledgerStore
	close  func()
}

func openBackend(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (*backend, error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		pool, err := database.OpenPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		logger.Info("storage ready", "backend", cfg.Backend)
		return &backend{
			tasks:  postgres.NewTaskStore(pool),
			todos:  postgres.NewTodoStore(pool),
			ledger: postgres.NewLedgerStore(pool),
			close:  pool.Close,
		}, nil

	default:
		db, err := database.Open(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		logger.Info("storage ready", "backend", cfg.Backend, "path", cfg.DBPath)
		return &backend{
			tasks:  store.NewTaskStore(db),
			todos:  store.NewTodoStore(db),
			ledger: store.NewLedgerStore(db),
			close:  func() { db.Close() },
		}, nil
	}
}
