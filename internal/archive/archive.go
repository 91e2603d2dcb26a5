// Package archive writes passphrase-sealed snapshots of the whole ledger.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dukerupert/pointlog/internal/model"
)

const FormatVersion = 1

// Ledger is the plaintext content of an archive.
type Ledger struct {
	Version   int               `json:"version"`
	CreatedAt time.Time         `json:"created_at"`
	Tasks     []model.TaskEntry `json:"tasks"`
	Todos     []model.TodoEntry `json:"todos"`
}

type TaskLister interface {
	List(ctx context.Context) ([]model.TaskEntry, error)
}

type TodoLister interface {
	List(ctx context.Context) ([]model.TodoEntry, error)
}

// Snapshot reads every task and to-do from the stores.
func Snapshot(ctx context.Context, tasks TaskLister, todos TodoLister, now time.Time) (*Ledger, error) {
	t, err := tasks.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	d, err := todos.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	if t == nil {
		t = []model.TaskEntry{}
	}
	if d == nil {
		d = []model.TodoEntry{}
	}
	return &Ledger{Version: FormatVersion, CreatedAt: now.UTC(), Tasks: t, Todos: d}, nil
}

// Encode serializes and seals a ledger.
func Encode(l *Ledger, passphrase string) ([]byte, error) {
	plaintext, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("marshal ledger: %w", err)
	}
	return Seal(plaintext, passphrase)
}

// Decode opens sealed data and parses the ledger inside.
func Decode(data []byte, passphrase string) (*Ledger, error) {
	plaintext, err := Open(data, passphrase)
	if err != nil {
		return nil, err
	}
	var l Ledger
	if err := json.Unmarshal(plaintext, &l); err != nil {
		return nil, fmt.Errorf("unmarshal ledger: %w", err)
	}
	if l.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported archive version %d", l.Version)
	}
	return &l, nil
}

func WriteFile(path string, l *Ledger, passphrase string) error {
	data, err := Encode(l, passphrase)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write archive: %w", err)
	}
	return nil
}

func ReadFile(path, passphrase string) (*Ledger, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	return Decode(data, passphrase)
}

// Filename is the default object name for an archive taken at t.
func Filename(t time.Time) string {
	return fmt.Sprintf("pointlog-%s.enc", t.UTC().Format("20060102-150405"))
}
