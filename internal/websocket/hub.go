package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

// Pages that reload when the data behind them changes.
const (
	ViewProgress = "progress"
	ViewTodos    = "todos"
	ViewStats    = "stats"
)

// Entities that produce change messages.
const (
	EntityTask   = "task"
	EntityTodo   = "todo"
	EntityLedger = "ledger"
)

// Message tells open pages that data they show has changed.
type Message struct {
	Type   string   `json:"type"`
	Entity string   `json:"entity"`
	Action string   `json:"action"`
	ID     int64    `json:"id,omitempty"`
	Views  []string `json:"views"`
}

// NewMessage creates a Message with the Type field derived from entity and
// action and the affected views derived from entity.
func NewMessage(entity, action string, id int64) Message {
	return Message{
		Type:   fmt.Sprintf("%s_%s", entity, action),
		Entity: entity,
		Action: action,
		ID:     id,
		Views:  affectedViews(entity, action),
	}
}

func affectedViews(entity, action string) []string {
	switch {
	case entity == EntityTask:
		return []string{ViewProgress, ViewStats}
	case entity == EntityTodo && action == "completed":
		// completing a to-do also writes a task entry
		return []string{ViewTodos, ViewProgress, ViewStats}
	case entity == EntityTodo:
		return []string{ViewTodos}
	default:
		return []string{ViewProgress, ViewTodos, ViewStats}
	}
}

// Affects reports whether a page showing view must reload.
func (m Message) Affects(view string) bool {
	return view == "" || slices.Contains(m.Views, view)
}

// Hub maintains the set of active WebSocket clients and broadcasts messages.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast sends msg to every client whose view it affects.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		if !msg.Affects(c.view) {
			continue
		}
		select {
		case c.send <- data:
		default:
			// a reload is already queued for this client
		}
	}
}

// Notify broadcasts a change. It is a no-op on a nil Hub.
func (h *Hub) Notify(entity, action string, id int64) {
	if h == nil {
		return
	}
	h.Broadcast(NewMessage(entity, action, id))
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
