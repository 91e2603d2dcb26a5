package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dukerupert/pointlog/internal/archive"
	"github.com/dukerupert/pointlog/internal/config"
	"github.com/dukerupert/pointlog/internal/database"
	"github.com/dukerupert/pointlog/internal/model"
	"github.com/dukerupert/pointlog/internal/store"
)

func TestExportThenDecrypt(t *testing.T) {
	t.Setenv(passphraseEnv, "correct horse")

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "pointlog.db")

	db, err := database.Open(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	ctx := context.Background()
	store.NewTaskStore(db).Create(ctx, model.TaskEntry{Date: "2026-05-10", Name: "Bought a car", Points: 20})
	store.NewTodoStore(db).Create(ctx, "Wash it", time.Now())
	db.Close()

	cfg := config.Default()
	cfg.Storage.DBPath = dbPath
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if err := exportArchive(&cfg, []string{"-dir", dir}, logger); err != nil {
		t.Fatalf("export: %v", err)
	}

	matches, _ := filepath.Glob(filepath.Join(dir, "pointlog-*.enc"))
	if len(matches) != 1 {
		t.Fatalf("archives = %v, want one", matches)
	}

	var out bytes.Buffer
	if err := decryptArchive(&cfg, []string{matches[0]}, &out); err != nil {
		t.Fatalf("decrypt: %v", err)
	}

	var got archive.Ledger
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(got.Tasks) != 1 || got.Tasks[0].Name != "Bought a car" {
		t.Errorf("tasks = %+v", got.Tasks)
	}
	if len(got.Todos) != 1 || got.Todos[0].Title != "Wash it" {
		t.Errorf("todos = %+v", got.Todos)
	}
}

func TestDecryptRequiresPassphrase(t *testing.T) {
	t.Setenv(passphraseEnv, "")
	path := filepath.Join(t.TempDir(), "x.enc")
	os.WriteFile(path, []byte("junk"), 0600)

	cfg := config.Default()
	if err := decryptArchive(&cfg, []string{path}, io.Discard); err == nil {
		t.Error("expected error without passphrase")
	}
}

func TestDecryptS3NotConfigured(t *testing.T) {
	t.Setenv(passphraseEnv, "secret")
	cfg := config.Default()
	if err := decryptArchive(&cfg, []string{"-s3", "pointlog-x.enc"}, io.Discard); err == nil {
		t.Error("expected error when s3 is not configured")
	}
}
