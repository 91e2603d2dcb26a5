package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/pointlog/internal/model"
)

type TodoStore struct {
	db *sql.DB
}

func NewTodoStore(db *sql.DB) *TodoStore {
	return &TodoStore{db: db}
}

func scanTodo(scanner interface{ Scan(...any) error }) (*model.TodoEntry, error) {
	var t model.TodoEntry
	var done int

	if err := scanner.Scan(&t.ID, &t.Title, &done, &t.CreatedAt); err != nil {
		return nil, err
	}

	t.Done = done != 0
	return &t, nil
}

const todoCols = `id, title, done, created_at`

func (s *TodoStore) Create(ctx context.Context, title string, createdAt time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO todos (title, done, created_at) VALUES (?, 0, ?)`,
		title, createdAt.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert todo: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

func (s *TodoStore) GetByID(ctx context.Context, id int64) (*model.TodoEntry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+todoCols+` FROM todos WHERE id = ?`, id)
	t, err := scanTodo(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get todo: %w", err)
	}
	return t, nil
}

// List returns all to-dos, newest first.
func (s *TodoStore) List(ctx context.Context) ([]model.TodoEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+todoCols+` FROM todos ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	var todos []model.TodoEntry
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		todos = append(todos, *t)
	}
	return todos, rows.Err()
}

func (s *TodoStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	return nil
}

// Complete marks a to-do done and inserts the task built by award, both in
// one transaction. award gets nil if the to-do does not exist. An already
// completed to-do is left alone and Complete returns nil.
func (s *TodoStore) Complete(ctx context.Context, id int64, award func(*model.TodoEntry) model.TaskEntry) (*model.TaskEntry, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	todo, err := scanTodo(tx.QueryRowContext(ctx, `SELECT `+todoCols+` FROM todos WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		todo = nil
	} else if err != nil {
		return nil, fmt.Errorf("get todo: %w", err)
	}

	if todo != nil && todo.Done {
		return nil, nil
	}

	if _, err := tx.ExecContext(ctx, `UPDATE todos SET done = 1 WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("mark todo done: %w", err)
	}
	if todo != nil {
		todo.Done = true
	}

	entry := award(todo)
	entry.ID, err = insertTask(ctx, tx, entry)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &entry, nil
}
