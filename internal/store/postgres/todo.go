package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dukerupert/pointlog/internal/model"
)

type TodoStore struct {
	pool *pgxpool.Pool
}

func NewTodoStore(pool *pgxpool.Pool) *TodoStore {
	return &TodoStore{pool: pool}
}

func scanTodo(row pgx.Row) (*model.TodoEntry, error) {
	var t model.TodoEntry
	if err := row.Scan(&t.ID, &t.Title, &t.Done, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

const todoCols = `id, title, done, created_at`

func (s *TodoStore) Create(ctx context.Context, title string, createdAt time.Time) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO todos (title, done, created_at) VALUES ($1, FALSE, $2) RETURNING id`,
		title, createdAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert todo: %w", err)
	}
	return id, nil
}

func (s *TodoStore) GetByID(ctx context.Context, id int64) (*model.TodoEntry, error) {
	t, err := scanTodo(s.pool.QueryRow(ctx, `SELECT `+todoCols+` FROM todos WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get todo: %w", err)
	}
	return t, nil
}

// List returns all to-dos, newest first.
func (s *TodoStore) List(ctx context.Context) ([]model.TodoEntry, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+todoCols+` FROM todos ORDER BY id DESC`)
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate todos: %w", err)
	}
	return todos, nil
}

func (s *TodoStore) Delete(ctx context.Context, id int64) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM todos WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	return nil
}

// Complete marks a to-do done and inserts the task built by award in one
// transaction. The row is locked for the duration so concurrent completions
// award once.
func (s *TodoStore) Complete(ctx context.Context, id int64, award func(*model.TodoEntry) model.TaskEntry) (*model.TaskEntry, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	todo, err := scanTodo(tx.QueryRow(ctx, `SELECT `+todoCols+` FROM todos WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		todo = nil
	} else if err != nil {
		return nil, fmt.Errorf("get todo: %w", err)
	}

	if todo != nil && todo.Done {
		return nil, nil
	}

	if _, err := tx.Exec(ctx, `UPDATE todos SET done = TRUE WHERE id = $1`, id); err != nil {
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

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &entry, nil
}
