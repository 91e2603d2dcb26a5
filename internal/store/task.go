package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/pointlog/internal/model"
)

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

func scanTask(scanner interface{ Scan(...any) error }) (*model.TaskEntry, error) {
	var t model.TaskEntry
	if err := scanner.Scan(&t.ID, &t.Date, &t.Name, &t.Points, &t.Note); err != nil {
		return nil, err
	}
	return &t, nil
}

const taskCols = `id, date, name, points, note`

func (s *TaskStore) Create(ctx context.Context, t model.TaskEntry) (int64, error) {
	return insertTask(ctx, s.db, t)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertTask(ctx context.Context, db execer, t model.TaskEntry) (int64, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO tasks (date, name, points, note) VALUES (?, ?, ?, ?)`,
		t.Date, t.Name, t.Points, t.Note,
	)
	if err != nil {
		return 0, fmt.Errorf("insert task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

func (s *TaskStore) GetByID(ctx context.Context, id int64) (*model.TaskEntry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// List returns all entries ordered by id ascending.
func (s *TaskStore) List(ctx context.Context) ([]model.TaskEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+taskCols+` FROM tasks ORDER BY id ASC`)
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
	return tasks, rows.Err()
}

func (s *TaskStore) Update(ctx context.Context, t model.TaskEntry) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET date = ?, name = ?, points = ?, note = ? WHERE id = ?`,
		t.Date, t.Name, t.Points, t.Note, t.ID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

func (s *TaskStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}
