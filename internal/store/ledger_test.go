package store

import (
	"context"
	"testing"
	"time"

	"github.com/dukerupert/pointlog/internal/model"
)

func TestLedgerReset(t *testing.T) {
	tasks, todos, ledger := setupLedgerTestDB(t)
	ctx := context.Background()

	tasks.Create(ctx, model.TaskEntry{Date: "2026-05-10", Name: "x", Points: 1})
	todos.Create(ctx, "y", time.Now())

	if err := ledger.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}

	tl, err := tasks.List(ctx)
	if err != nil {
		t.Fatalf("list tasks after reset: %v", err)
	}
	if len(tl) != 0 {
		t.Errorf("tasks = %d, want 0", len(tl))
	}
	dl, err := todos.List(ctx)
	if err != nil {
		t.Fatalf("list todos after reset: %v", err)
	}
	if len(dl) != 0 {
		t.Errorf("todos = %d, want 0", len(dl))
	}
}
