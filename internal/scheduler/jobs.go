package scheduler

import (
	"context"

	"github.com/dukerupert/pointlog/internal/websocket"
)

// Expirer removes completed to-dos older than the retention period.
type Expirer interface {
	ExpireCompleted(ctx context.Context, retentionDays int) (int, error)
}

// ExpireTodos returns a job that expires completed to-dos and tells open
// pages when anything was removed.
func ExpireTodos(e Expirer, retentionDays int, hub *websocket.Hub) func(context.Context) error {
	return func(ctx context.Context) error {
		removed, err := e.ExpireCompleted(ctx, retentionDays)
		if removed > 0 {
			hub.Notify(websocket.EntityTodo, "expired", 0)
		}
		return err
	}
}

// Cleaner is anything holding state that goes stale.
type Cleaner interface {
	Cleanup()
}

func Cleanup(c Cleaner) func(context.Context) error {
	return func(context.Context) error {
		c.Cleanup()
		return nil
	}
}
