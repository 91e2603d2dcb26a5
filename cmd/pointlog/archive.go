package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dukerupert/pointlog/internal/archive"
	"github.com/dukerupert/pointlog/internal/config"
)

const passphraseEnv = "POINTLOG_ARCHIVE_PASSPHRASE"

func passphrase() (string, error) {
	p := os.Getenv(passphraseEnv)
	if p == "" {
		return "", fmt.Errorf("%s is not set", passphraseEnv)
	}
	return p, nil
}

// exportArchive writes a sealed snapshot to a local directory and, when S3
// is configured, uploads the same bytes.
func exportArchive(cfg *config.Config, args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	dir := fs.String("dir", ".", "directory to write the archive to")
	upload := fs.Bool("upload", true, "upload to S3 when configured")
	if err := fs.Parse(args); err != nil {
		return err
	}

	pass, err := passphrase()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	b, err := openBackend(ctx, cfg.Storage, logger)
	if err != nil {
		return err
	}
	defer b.close()

	now := time.Now()
	ledger, err := archive.Snapshot(ctx, b.tasks, b.todos, now)
	if err != nil {
		return err
	}
	data, err := archive.Encode(ledger, pass)
	if err != nil {
		return err
	}

	name := archive.Filename(now)
	path := filepath.Join(*dir, name)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write archive: %w", err)
	}
	logger.Info("archive written", "path", path, "tasks", len(ledger.Tasks), "todos", len(ledger.Todos))

	if remote := archive.NewRemote(cfg.Archive.S3); *upload && remote != nil {
		key, err := remote.Put(ctx, name, data)
		if err != nil {
			return err
		}
		logger.Info("archive uploaded", "bucket", cfg.Archive.S3.Bucket, "key", key)
	}
	return nil
}

// decryptArchive prints an archive as indented JSON. The argument is a local
// path, or an object name with -s3.
func decryptArchive(cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("decrypt", flag.ContinueOnError)
	fromS3 := fs.Bool("s3", false, "read the named object from the configured bucket")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("decrypt takes exactly one archive path or object name")
	}

	pass, err := passphrase()
	if err != nil {
		return err
	}

	var data []byte
	if *fromS3 {
		remote := archive.NewRemote(cfg.Archive.S3)
		if remote == nil {
			return errors.New("s3 is not configured")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if data, err = remote.Get(ctx, fs.Arg(0)); err != nil {
			return err
		}
	} else if data, err = os.ReadFile(fs.Arg(0)); err != nil {
		return fmt.Errorf("read archive: %w", err)
	}

	ledger, err := archive.Decode(data, pass)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(ledger)
}
