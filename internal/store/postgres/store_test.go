package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dukerupert/pointlog/internal/database"
	"github.com/dukerupert/pointlog/internal/model"
)

// These tests need a disposable Postgres database. Every test resets it.
const dsnEnv = "POINTLOG_TEST_POSTGRES_DSN"

func setupPostgresTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv(dsnEnv)
	if dsn == "" {
		t.Skipf("%s not set", dsnEnv)
	}

	ctx := context.Background()
	pool, err := database.OpenPostgres(ctx, dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := NewLedgerStore(pool).Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	return pool
}

func TestTaskCRUD(t *testing.T) {
	pool := setupPostgresTestDB(t)
	ts := NewTaskStore(pool)
	ctx := context.Background()

	id, err := ts.Create(ctx, model.TaskEntry{Date: "2026-05-10", Name: "Ran 5k", Points: 1.5, Note: "morning"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	got, err := ts.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	want := model.TaskEntry{ID: id, Date: "2026-05-10", Name: "Ran 5k", Points: 1.5, Note: "morning"}
	if got == nil || *got != want {
		t.Fatalf("task = %+v, want %+v", got, want)
	}

	want.Date = "2026-05-11"
	if err := ts.Update(ctx, want); err != nil {
		t.Fatalf("update task: %v", err)
	}
	got, _ = ts.GetByID(ctx, id)
	if *got != want {
		t.Errorf("updated task = %+v, want %+v", *got, want)
	}

	if err := ts.Delete(ctx, id); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	got, _ = ts.GetByID(ctx, id)
	if got != nil {
		t.Error("expected nil after delete")
	}
}

func TestTaskListAscending(t *testing.T) {
	pool := setupPostgresTestDB(t)
	ts := NewTaskStore(pool)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		ts.Create(ctx, model.TaskEntry{Date: "2026-05-10", Name: name, Points: 1})
	}
	tasks, err := ts.List(ctx)
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 3 || tasks[0].Name != "a" || tasks[2].Name != "c" {
		t.Errorf("tasks = %+v, want a, b, c", tasks)
	}
}

func TestTodoCompleteOnce(t *testing.T) {
	pool := setupPostgresTestDB(t)
	tasks := NewTaskStore(pool)
	todos := NewTodoStore(pool)
	ctx := context.Background()

	award := func(td *model.TodoEntry) model.TaskEntry {
		return model.TaskEntry{Date: "2026-05-10", Name: "Daily task", Points: 0.2, Note: td.Title}
	}

	id, err := todos.Create(ctx, "Stretch", time.Now())
	if err != nil {
		t.Fatalf("create todo: %v", err)
	}

	entry, err := todos.Complete(ctx, id, award)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if entry == nil || entry.Note != "Stretch" {
		t.Fatalf("entry = %+v, want note Stretch", entry)
	}

	entry, err = todos.Complete(ctx, id, award)
	if err != nil {
		t.Fatalf("second complete: %v", err)
	}
	if entry != nil {
		t.Errorf("second complete awarded %+v", entry)
	}

	list, _ := tasks.List(ctx)
	if len(list) != 1 {
		t.Errorf("tasks = %d, want 1", len(list))
	}

	listed, _ := todos.List(ctx)
	if len(listed) != 1 || !listed[0].Done {
		t.Errorf("todos = %+v, want one done entry", listed)
	}
}

func TestLedgerReset(t *testing.T) {
	pool := setupPostgresTestDB(t)
	ctx := context.Background()

	NewTaskStore(pool).Create(ctx, model.TaskEntry{Date: "2026-05-10", Name: "x", Points: 1})
	NewTodoStore(pool).Create(ctx, "y", time.Now())

	if err := NewLedgerStore(pool).Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}

	tl, _ := NewTaskStore(pool).List(ctx)
	dl, _ := NewTodoStore(pool).List(ctx)
	if len(tl) != 0 || len(dl) != 0 {
		t.Errorf("after reset tasks=%d todos=%d, want 0", len(tl), len(dl))
	}
}
