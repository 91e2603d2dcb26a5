package websocket

import (
	"context"
	"time"

	ws "github.com/coder/websocket"
)

const (
	sendBufferSize = 4
	pingInterval   = 30 * time.Second
)

// Client is one open page. view names the page so it only hears about
// changes it displays; empty means every change.
type Client struct {
	hub  *Hub
	conn *ws.Conn
	view string
	send chan []byte
}

func NewClient(hub *Hub, conn *ws.Conn, view string) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		view: view,
		send: make(chan []byte, sendBufferSize),
	}
}

// Run blocks until the page goes away.
func (c *Client) Run(ctx context.Context) {
	c.hub.Register(c)
	defer c.hub.Unregister(c)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Pages never send anything; CloseRead cancels ctx when the peer closes.
	ctx = c.conn.CloseRead(ctx)
	c.writePump(ctx)
}

func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := c.conn.Write(writeCtx, ws.MessageText, msg)
			cancel()
			if err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
