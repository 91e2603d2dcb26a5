package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/pointlog/internal/model"
	"github.com/dukerupert/pointlog/internal/progress"
	"github.com/dukerupert/pointlog/internal/websocket"
)

type TaskHandler struct {
	engine *progress.Engine
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewTaskHandler(engine *progress.Engine, hub *websocket.Hub, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{engine: engine, hub: hub, logger: logger}
}

type taskRequest struct {
	Name   string  `json:"name"`
	Points float64 `json:"points"`
	Note   string  `json:"note"`
}

type investmentRequest struct {
	Amount float64 `json:"amount"`
	Note   string  `json:"note"`
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	tasks := h.engine.ListTasks(r.Context())
	if tasks == nil {
		tasks = []model.TaskEntry{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) created(w http.ResponseWriter, id int64, err error) {
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	h.hub.Notify(websocket.EntityTask, "created", id)
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// Create records a custom task.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id, err := h.engine.AddTask(r.Context(), req.Name, req.Points, req.Note)
	h.created(w, id, err)
}

func (h *TaskHandler) CreateDaily(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id, err := h.engine.AddDaily(r.Context(), req.Note)
	h.created(w, id, err)
}

func (h *TaskHandler) CreatePredefined(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id, err := h.engine.AddPredefined(r.Context(), req.Name, req.Note)
	h.created(w, id, err)
}

func (h *TaskHandler) CreateInvestment(w http.ResponseWriter, r *http.Request) {
	var req investmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id, err := h.engine.AddInvestment(r.Context(), req.Amount, req.Note)
	h.created(w, id, err)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.engine.DeleteTask(r.Context(), id); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	h.hub.Notify(websocket.EntityTask, "deleted", id)
	w.WriteHeader(http.StatusNoContent)
}

type bulkEditRequest struct {
	Prior  []model.TaskEntry  `json:"prior"`
	Edited []progress.EditRow `json:"edited"`
}

// BulkEdit applies an edited copy of the ledger. The client sends back the
// snapshot it started from so concurrent edits are diffed against what the
// user actually saw.
func (h *TaskHandler) BulkEdit(w http.ResponseWriter, r *http.Request) {
	var req bulkEditRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.applyBulkEdit(w, r, req.Prior, req.Edited)
}

func (h *TaskHandler) applyBulkEdit(w http.ResponseWriter, r *http.Request, prior []model.TaskEntry, edited []progress.EditRow) {
	plan, err := h.engine.ApplyBulkEdit(r.Context(), prior, edited)
	if !plan.Empty() {
		h.hub.Notify(websocket.EntityTask, "bulk_edited", 0)
	}
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (h *TaskHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, progress.Catalog())
}

func (h *TaskHandler) Stats(w http.ResponseWriter, r *http.Request) {
	summary := h.engine.Stats(r.Context())
	if summary.PerDay == nil {
		summary.PerDay = []progress.DayPoints{}
	}
	writeJSON(w, http.StatusOK, summary)
}
