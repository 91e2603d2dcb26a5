package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/dukerupert/pointlog/internal/model"
	"github.com/dukerupert/pointlog/internal/progress"
	"github.com/dukerupert/pointlog/internal/todo"
	"github.com/dukerupert/pointlog/internal/websocket"
	"github.com/dukerupert/pointlog/web"
)

// PageHandler serves the HTML views. Every form posts, then redirects back
// to the page it came from.
type PageHandler struct {
	engine        *progress.Engine
	todos         *todo.Manager
	reset         *ResetHandler
	retentionDays int
	hub           *websocket.Hub
	logger        *slog.Logger
	templates     map[string]*template.Template
}

var pageFuncs = template.FuncMap{
	"points": func(v float64) string { return humanize.FtoaWithDigits(v, 2) },
	"percent": func(v float64) int {
		return int(v * 100)
	},
	"ago":   humanize.Time,
	"month": func(i int) string { return time.Month(i + 1).String()[:3] },
	"days":  func() []int { return dayNumbers },
	"heat": func(n int) int {
		if n > 4 {
			return 4
		}
		return n
	},
	"bar": func(v, max float64) int {
		if max <= 0 {
			return 0
		}
		return int(v / max * 100)
	},
}

var dayNumbers = func() []int {
	d := make([]int, 31)
	for i := range d {
		d[i] = i + 1
	}
	return d
}()

func NewPageHandler(engine *progress.Engine, todos *todo.Manager, reset *ResetHandler, retentionDays int, hub *websocket.Hub, logger *slog.Logger) (*PageHandler, error) {
	h := &PageHandler{
		engine:        engine,
		todos:         todos,
		reset:         reset,
		retentionDays: retentionDays,
		hub:           hub,
		logger:        logger,
		templates:     make(map[string]*template.Template),
	}
	for _, page := range []string{"progress", "todos", "stats", "reset"} {
		tmpl, err := template.New("layout.html").Funcs(pageFuncs).ParseFS(web.FS,
			"templates/layout.html",
			"templates/"+page+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", page, err)
		}
		h.templates[page] = tmpl
	}
	return h, nil
}

func (h *PageHandler) render(w http.ResponseWriter, page string, data map[string]any) {
	data["View"] = page
	var buf bytes.Buffer
	if err := h.templates[page].ExecuteTemplate(&buf, "layout.html", data); err != nil {
		h.logger.Error("render page", "page", page, "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// back redirects to path, carrying err as a message for the next render.
func back(w http.ResponseWriter, r *http.Request, path string, err error) {
	if err != nil {
		_, msg := errorStatus(err)
		path += "?error=" + url.QueryEscape(msg)
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

func (h *PageHandler) Progress(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	tasks := h.engine.ListTasks(r.Context())
	h.render(w, "progress", map[string]any{
		"Title":   "Progress",
		"Error":   r.URL.Query().Get("error"),
		"Summary": progress.Summarize(tasks, h.engine.Goal()),
		"Tasks":   reversed(tasks),
		"Catalog": progress.Catalog(),
	})
}

// reversed lists the newest entries first for display.
func reversed(tasks []model.TaskEntry) []model.TaskEntry {
	out := make([]model.TaskEntry, len(tasks))
	for i, t := range tasks {
		out[len(tasks)-1-i] = t
	}
	return out
}

func (h *PageHandler) Todos(w http.ResponseWriter, r *http.Request) {
	h.render(w, "todos", map[string]any{
		"Title":         "To-do",
		"Error":         r.URL.Query().Get("error"),
		"Todos":         h.todos.ListTodos(r.Context()),
		"RetentionDays": h.retentionDays,
		"DailyPoints":   progress.DailyTaskPoints,
	})
}

func (h *PageHandler) Stats(w http.ResponseWriter, r *http.Request) {
	summary := h.engine.Stats(r.Context())
	var max float64
	for _, d := range summary.PerDay {
		if d.Points > max {
			max = d.Points
		}
	}
	h.render(w, "stats", map[string]any{
		"Title":   "Statistics",
		"Summary": summary,
		"MaxDay":  max,
	})
}

func (h *PageHandler) ResetPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, "reset", map[string]any{
		"Title": "Reset",
		"Error": r.URL.Query().Get("error"),
	})
}

// ResetRequest shows the confirmation step with a fresh token.
func (h *PageHandler) ResetRequest(w http.ResponseWriter, r *http.Request) {
	token, expires := h.reset.Issue()
	h.render(w, "reset", map[string]any{
		"Title":   "Reset",
		"Token":   token,
		"Expires": expires,
	})
}

func (h *PageHandler) ResetConfirm(w http.ResponseWriter, r *http.Request) {
	if err := h.reset.Confirm(r.Context(), r.FormValue("token")); err != nil {
		http.Redirect(w, r, "/reset?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func parsePoints(field, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, &progress.ValidationError{Field: field, Msg: "must be a number"}
	}
	return v, nil
}

// AddTask handles the four task forms, told apart by the kind field.
func (h *PageHandler) AddTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	note := strings.TrimSpace(r.FormValue("note"))

	var id int64
	var err error
	switch r.FormValue("kind") {
	case "daily":
		id, err = h.engine.AddDaily(ctx, note)
	case "predefined":
		id, err = h.engine.AddPredefined(ctx, r.FormValue("name"), note)
	case "investment":
		var amount float64
		if amount, err = parsePoints("amount", r.FormValue("amount")); err == nil {
			id, err = h.engine.AddInvestment(ctx, amount, note)
		}
	case "custom":
		var points float64
		if points, err = parsePoints("points", r.FormValue("points")); err == nil {
			id, err = h.engine.AddTask(ctx, strings.TrimSpace(r.FormValue("name")), points, note)
		}
	default:
		err = &progress.ValidationError{Field: "kind", Msg: "is not a known task form"}
	}

	if err == nil {
		h.hub.Notify(websocket.EntityTask, "created", id)
	}
	back(w, r, "/", err)
}

func (h *PageHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	err = h.engine.DeleteTask(r.Context(), id)
	if err == nil {
		h.hub.Notify(websocket.EntityTask, "deleted", id)
	}
	back(w, r, "/", err)
}

func (h *PageHandler) AddTodo(w http.ResponseWriter, r *http.Request) {
	id, err := h.todos.AddTodo(r.Context(), r.FormValue("title"))
	if err == nil {
		h.hub.Notify(websocket.EntityTodo, "created", id)
	}
	back(w, r, "/todos", err)
}

func (h *PageHandler) CompleteTodo(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	entry, err := h.todos.MarkDone(r.Context(), id)
	if entry != nil {
		h.hub.Notify(websocket.EntityTodo, "completed", id)
	}
	back(w, r, "/todos", err)
}

func (h *PageHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	err = h.todos.DeleteTodo(r.Context(), id)
	if err == nil {
		h.hub.Notify(websocket.EntityTodo, "deleted", id)
	}
	back(w, r, "/todos", err)
}
