package feed

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const heartbeatInterval = 30 * time.Second

// StreamHandler serves the change feed as Server-Sent Events.
// GET /api/changes?table=suppliers (all tables when table is omitted)
// The stream ends when the client goes away or ctx is cancelled.
func StreamHandler(ctx context.Context, hub *Hub, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		table := c.Query("table", AllTables)
		clientID := uuid.NewString()

		c.Set("Content-Type", "text/event-stream")
		c.Set("Cache-Control", "no-cache")
		c.Set("Connection", "keep-alive")
		c.Set("X-Accel-Buffering", "no")

		events := make(chan Change, 64)
		handle := hub.Subscribe(table, func(ch Change) {
			select {
			case events <- ch:
			default:
				logger.Warn("SSE client buffer full, skipping change",
					zap.String("client_id", clientID), zap.String("table", ch.Table))
			}
		})
		logger.Info("SSE client connected", zap.String("client_id", clientID), zap.String("table", table))

		c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
			defer func() {
				hub.Unsubscribe(handle)
				logger.Info("SSE client disconnected", zap.String("client_id", clientID))
			}()

			fmt.Fprintf(w, "event: connected\ndata: {\"client_id\":%q,\"table\":%q}\n\n", clientID, table)
			if err := w.Flush(); err != nil {
				return
			}

			heartbeat := time.NewTicker(heartbeatInterval)
			defer heartbeat.Stop()

			for {
				select {
				case <-ctx.Done():
					return
				case ch := <-events:
					data, err := json.Marshal(ch)
					if err != nil {
						continue
					}
					fmt.Fprintf(w, "event: change\ndata: %s\n\n", data)
				case <-heartbeat.C:
					fmt.Fprint(w, ": keepalive\n\n")
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		})
		return nil
	}
}
