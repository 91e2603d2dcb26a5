package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/pointlog/internal/clock"
	"github.com/dukerupert/pointlog/internal/config"
	"github.com/dukerupert/pointlog/internal/logging"
	"github.com/dukerupert/pointlog/internal/progress"
	"github.com/dukerupert/pointlog/internal/scheduler"
	"github.com/dukerupert/pointlog/internal/server"
	"github.com/dukerupert/pointlog/internal/todo"
)

const usage = `usage: pointlog [command] [flags]

commands:
  serve     run the web app (default)
  export    write an encrypted archive of the ledger
  decrypt   print the contents of an encrypted archive as JSON

The archive passphrase is read from POINTLOG_ARCHIVE_PASSPHRASE.
`

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	cmd, args := "serve", os.Args[1:]
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "serve":
		err = serve(cfg, logger)
	case "export":
		err = exportArchive(cfg, args, logger)
	case "decrypt":
		err = decryptArchive(cfg, args, os.Stdout)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		logger.Error(cmd+" failed", "error", err)
		os.Exit(1)
	}
}

func serve(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b, err := openBackend(ctx, cfg.Storage, logger)
	if err != nil {
		return err
	}
	defer b.close()

	clk := clock.New(cfg.Progress.TimeZone, logger.With("component", "clock"))
	engine := progress.NewEngine(b.tasks, clk, cfg.Progress.Goal, logger.With("component", "progress"))
	todos := todo.NewManager(b.todos, engine, clk, logger.With("component", "todo"))

	if _, err := todos.ExpireCompleted(ctx, cfg.Todos.RetentionDays); err != nil {
		logger.Warn("startup expiry failed", "error", err)
	}

	srv, err := server.New(engine, todos, b.ledger, server.Config{RetentionDays: cfg.Todos.RetentionDays}, logger)
	if err != nil {
		return err
	}

	sched := scheduler.New(clk.Location(), logger.With("component", "scheduler"))
	if err := sched.Add("ratelimit-cleanup", "@every 1h", scheduler.Cleanup(srv.RateLimiter())); err != nil {
		return err
	}
	if cfg.Todos.ExpireCron != "" {
		job := scheduler.ExpireTodos(todos, cfg.Todos.RetentionDays, srv.Hub())
		if err := sched.Add("expire-todos", cfg.Todos.ExpireCron, job); err != nil {
			return err
		}
	}
	sched.Start()

	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		// no WriteTimeout: /ws connections stay open
		IdleTimeout: 120 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("pointlog starting", "addr", httpServer.Addr, "zone", clk.Location().String())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	sched.Stop(shutdownCtx)
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
