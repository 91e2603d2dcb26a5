package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/pointlog/internal/model"
	"github.com/dukerupert/pointlog/internal/todo"
	"github.com/dukerupert/pointlog/internal/websocket"
)

type TodoHandler struct {
	manager       *todo.Manager
	retentionDays int
	hub           *websocket.Hub
	logger        *slog.Logger
}

func NewTodoHandler(m *todo.Manager, retentionDays int, hub *websocket.Hub, logger *slog.Logger) *TodoHandler {
	return &TodoHandler{manager: m, retentionDays: retentionDays, hub: hub, logger: logger}
}

type todoRequest struct {
	Title string `json:"title"`
}

func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	todos := h.manager.ListTodos(r.Context())
	if todos == nil {
		todos = []model.TodoEntry{}
	}
	writeJSON(w, http.StatusOK, todos)
}

func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req todoRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id, err := h.manager.AddTodo(r.Context(), req.Title)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	h.hub.Notify(websocket.EntityTodo, "created", id)
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// Done completes a to-do. The response carries the awarded task entry, or
// null when the to-do had already been completed.
func (h *TodoHandler) Done(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	entry, err := h.manager.MarkDone(r.Context(), id)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	if entry != nil {
		h.hub.Notify(websocket.EntityTodo, "completed", id)
	}
	writeJSON(w, http.StatusOK, map[string]*model.TaskEntry{"awarded": entry})
}

func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.manager.DeleteTodo(r.Context(), id); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	h.hub.Notify(websocket.EntityTodo, "deleted", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *TodoHandler) Expire(w http.ResponseWriter, r *http.Request) {
	removed, err := h.manager.ExpireCompleted(r.Context(), h.retentionDays)
	if removed > 0 {
		h.hub.Notify(websocket.EntityTodo, "expired", 0)
	}
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}
