package server

import (
	"encoding/json"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/pointlog/internal/handler"
	"github.com/dukerupert/pointlog/internal/middleware"
	"github.com/dukerupert/pointlog/internal/progress"
	"github.com/dukerupert/pointlog/internal/todo"
	ws "github.com/dukerupert/pointlog/internal/websocket"
	"github.com/dukerupert/pointlog/web"
)

// Reset confirmations allowed per client per window.
const (
	resetConfirmLimit  = 5
	resetConfirmWindow = time.Minute
)

type Config struct {
	RetentionDays int
}

type Server struct {
	hub         *ws.Hub
	taskH       *handler.TaskHandler
	todoH       *handler.TodoHandler
	resetH      *handler.ResetHandler
	pageH       *handler.PageHandler
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(engine *progress.Engine, todos *todo.Manager, ledger handler.LedgerResetter, cfg Config, logger *slog.Logger) (*Server, error) {
	hub := ws.NewHub(logger.With("component", "websocket"))

	resetH := handler.NewResetHandler(ledger, hub, logger.With("component", "reset"))
	pageH, err := handler.NewPageHandler(engine, todos, resetH, cfg.RetentionDays, hub, logger.With("component", "page"))
	if err != nil {
		return nil, err
	}

	return &Server{
		hub:         hub,
		taskH:       handler.NewTaskHandler(engine, hub, logger.With("component", "task")),
		todoH:       handler.NewTodoHandler(todos, cfg.RetentionDays, hub, logger.With("component", "todo")),
		resetH:      resetH,
		pageH:       pageH,
		rateLimiter: middleware.NewRateLimiter(resetConfirmLimit, resetConfirmWindow),
		logger:      logger,
	}, nil
}

// Hub returns the websocket hub so background jobs can announce changes.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	static, _ := fs.Sub(web.FS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket")))

	// Tasks API
	mux.HandleFunc("GET /api/tasks", s.taskH.List)
	mux.HandleFunc("POST /api/tasks", s.taskH.Create)
	mux.HandleFunc("PUT /api/tasks", s.taskH.BulkEdit)
	mux.HandleFunc("POST /api/tasks/daily", s.taskH.CreateDaily)
	mux.HandleFunc("POST /api/tasks/predefined", s.taskH.CreatePredefined)
	mux.HandleFunc("POST /api/tasks/investment", s.taskH.CreateInvestment)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.taskH.Delete)
	mux.HandleFunc("GET /api/tasks/export.xlsx", s.taskH.Export)
	mux.HandleFunc("POST /api/tasks/import", s.taskH.Import)
	mux.HandleFunc("GET /api/catalog", s.taskH.Catalog)
	mux.HandleFunc("GET /api/stats", s.taskH.Stats)

	// Todos API
	mux.HandleFunc("GET /api/todos", s.todoH.List)
	mux.HandleFunc("POST /api/todos", s.todoH.Create)
	mux.HandleFunc("POST /api/todos/{id}/done", s.todoH.Done)
	mux.HandleFunc("DELETE /api/todos/{id}", s.todoH.Delete)
	mux.HandleFunc("POST /api/todos/expire", s.todoH.Expire)

	// Reset API
	mux.HandleFunc("POST /api/reset", s.resetH.Request)
	mux.Handle("POST /api/reset/confirm", s.rateLimiter.Limit(http.HandlerFunc(s.resetH.ConfirmAPI)))

	// Pages
	mux.HandleFunc("GET /", s.pageH.Progress)
	mux.HandleFunc("GET /todos", s.pageH.Todos)
	mux.HandleFunc("GET /stats", s.pageH.Stats)
	mux.HandleFunc("GET /reset", s.pageH.ResetPage)

	// Form posts
	mux.HandleFunc("POST /tasks", s.pageH.AddTask)
	mux.HandleFunc("POST /tasks/{id}/delete", s.pageH.DeleteTask)
	mux.HandleFunc("POST /todos", s.pageH.AddTodo)
	mux.HandleFunc("POST /todos/{id}/done", s.pageH.CompleteTodo)
	mux.HandleFunc("POST /todos/{id}/delete", s.pageH.DeleteTodo)
	mux.HandleFunc("POST /reset", s.pageH.ResetRequest)
	mux.Handle("POST /reset/confirm", s.rateLimiter.Limit(http.HandlerFunc(s.pageH.ResetConfirm)))

	logged := middleware.RequestLogger(s.logger.With("component", "http"))(mux)
	return middleware.Recover(s.logger)(logged)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
