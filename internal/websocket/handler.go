package websocket

import (
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"
)

var knownViews = map[string]bool{"": true, ViewProgress: true, ViewTodos: true, ViewStats: true}

// HandleWebSocket upgrades GET /ws?view=<page> and streams change messages
// for that page until it disconnects.
func HandleWebSocket(hub *Hub, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view := r.URL.Query().Get("view")
		if !knownViews[view] {
			http.Error(w, "unknown view", http.StatusBadRequest)
			return
		}

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			InsecureSkipVerify: true, // single-user service reached through varying hostnames
		})
		if err != nil {
			logger.Warn("websocket accept", "error", err)
			return
		}
		defer conn.CloseNow()

		logger.Debug("page connected", "view", view, "clients", hub.ClientCount()+1)
		NewClient(hub, conn, view).Run(r.Context())
	}
}
