// Package postgres implements the ledger stores on a hosted Postgres
// database through pgxpool.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dukerupert/pointlog/internal/model"
)

type TaskStore struct {
	pool *pgxpool.Pool
}

func NewTaskStore(pool *pgxpool.Pool) *TaskStore {
	return &TaskStore{pool: pool}
}

func scanTask(row pgx.Row) (*model.TaskEntry, error) {
	var t model.TaskEntry
	if err := row.Scan(&t.ID, &t.Date, &t.Name, &t.Points, &t.Note); err != nil {
		return nil, err
	}
	return &t, nil
}

// date is a DATE column; it is read back in ISO form.
const taskCols = `id, to_char(date, 'YYYY-MM-DD'), name, points, note`

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func insertTask(ctx context.Context, q querier, t model.TaskEntry) (int64, error) {
	var id int64
	err := q.QueryRow(ctx,
		`INSERT INTO tasks (date, name, points, note) VALUES ($1::date, $2, $3, $4) RETURNING id`,
		t.Date, t.Name, t.Points, t.Note,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert task: %w", err)
	}
	return id, nil
}

func (s *TaskStore) Create(ctx context.Context, t model.TaskEntry) (int64, error) {
	return insertTask(ctx, s.pool, t)
}

func (s *TaskStore) GetByID(ctx context.Context, id int64) (*model.TaskEntry, error) {
	t, err := scanTask(s.pool.QueryRow(ctx, `SELECT `+taskCols+` FROM tasks WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// List returns all entries ordered by id ascending.
func (s *TaskStore) List(ctx context.Context) ([]model.TaskEntry, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+taskCols+` FROM tasks ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.TaskEntry
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskStore) Update(ctx context.Context, t model.TaskEntry) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE tasks SET date = $1::date, name = $2, points = $3, note = $4 WHERE id = $5`,
		t.Date, t.Name, t.Points, t.Note, t.ID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

func (s *TaskStore) Delete(ctx context.Context, id int64) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}
