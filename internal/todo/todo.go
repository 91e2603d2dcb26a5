package todo

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dukerupert/pointlog/internal/clock"
	"github.com/dukerupert/pointlog/internal/model"
	"github.com/dukerupert/pointlog/internal/progress"
)

// DefaultRetentionDays is how long a completed to-do stays listed.
const DefaultRetentionDays = 1

// Repository stores to-do entries. List returns the newest entry first.
//
// Complete marks the entry done and inserts the entry built by award in a
// single transaction. award receives nil when the row no longer exists.
// If the entry is already done nothing is written and Complete returns nil.
type Repository interface {
	Create(ctx context.Context, title string, createdAt time.Time) (int64, error)
	List(ctx context.Context) ([]model.TodoEntry, error)
	Delete(ctx context.Context, id int64) error
	Complete(ctx context.Context, id int64, award func(*model.TodoEntry) model.TaskEntry) (*model.TaskEntry, error)
}

// Manager runs the to-do lifecycle: create, complete, delete, expire.
type Manager struct {
	repo   Repository
	engine *progress.Engine
	clock  *clock.Clock
	logger *slog.Logger
}

func NewManager(repo Repository, engine *progress.Engine, clk *clock.Clock, logger *slog.Logger) *Manager {
	return &Manager{repo: repo, engine: engine, clock: clk, logger: logger}
}

func (m *Manager) AddTodo(ctx context.Context, title string) (int64, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return 0, &progress.ValidationError{Field: "title", Msg: "is required"}
	}

	id, err := m.repo.Create(ctx, title, m.clock.Now())
	if err != nil {
		m.logger.Error("add todo", "title", title, "error", err)
		return 0, &progress.StorageError{Op: "add todo", Err: err}
	}
	return id, nil
}

// ListTodos returns all to-dos newest first, or nothing if the store cannot
// be read.
func (m *Manager) ListTodos(ctx context.Context) []model.TodoEntry {
	todos, err := m.repo.List(ctx)
	if err != nil {
		m.logger.Error("list todos", "error", err)
		return nil
	}
	return todos
}

// MarkDone completes a to-do and awards the daily task points. It returns
// the awarded entry, or nil if the to-do was already done.
func (m *Manager) MarkDone(ctx context.Context, id int64) (*model.TaskEntry, error) {
	award := func(t *model.TodoEntry) model.TaskEntry {
		title := fmt.Sprintf("Todo %d", id)
		if t != nil {
			title = t.Title
		}
		return m.engine.DailyEntry(title)
	}

	entry, err := m.repo.Complete(ctx, id, award)
	if err != nil {
		m.logger.Error("mark todo done", "id", id, "error", err)
		return nil, &progress.StorageError{Op: "mark todo done", Err: err}
	}
	if entry == nil {
		m.logger.Debug("todo already done", "id", id)
	}
	return entry, nil
}

// DeleteTodo removes a to-do. Unknown ids are not an error.
func (m *Manager) DeleteTodo(ctx context.Context, id int64) error {
	if err := m.repo.Delete(ctx, id); err != nil {
		m.logger.Error("delete todo", "id", id, "error", err)
		return &progress.StorageError{Op: "delete todo", Err: err}
	}
	return nil
}

// ExpireCompleted deletes done to-dos created more than retentionDays ago
// and returns how many were removed.
func (m *Manager) ExpireCompleted(ctx context.Context, retentionDays int) (int, error) {
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}
	cutoff := m.clock.Now().Add(-time.Duration(retentionDays) * 24 * time.Hour)

	todos, err := m.repo.List(ctx)
	if err != nil {
		m.logger.Error("expire todos", "error", err)
		return 0, &progress.StorageError{Op: "expire todos", Err: err}
	}

	removed := 0
	for _, t := range todos {
		if !t.Done || !t.CreatedAt.Before(cutoff) {
			continue
		}
		if err := m.repo.Delete(ctx, t.ID); err != nil {
			m.logger.Error("expire todo", "id", t.ID, "error", err)
			return removed, &progress.StorageError{Op: "expire todos", Err: err}
		}
		removed++
	}

	if removed > 0 {
		m.logger.Info("expired completed todos", "count", removed, "retention_days", retentionDays)
	}
	return removed, nil
}
