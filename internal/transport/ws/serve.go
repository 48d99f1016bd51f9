package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"courier-dispatch/internal/logx"
)

const pingInterval = 30 * time.Second

// Serve upgrades the request and keeps the connection registered for courierID
// until the client goes away or ctx is done. Client messages are ignored.
func (h *Hub) Serve(ctx context.Context, w http.ResponseWriter, r *http.Request, courierID int64, origins []string) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: origins})
	if err != nil {
		h.logger.Warn("ws accept failed", logx.Int64("courier_id", courierID), logx.Err(err))
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")
	conn.SetReadLimit(1 << 16)

	c := NewClient(conn)
	h.Add(courierID, c)
	defer h.Remove(courierID, c)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		t := time.NewTicker(pingInterval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				pingCtx, pingCancel := context.WithTimeout(ctx, writeTimeout)
				err := conn.Ping(pingCtx)
				pingCancel()
				if err != nil {
					cancel()
					return
				}
			}
		}
	}()

	for {
		if _, _, err := conn.Read(ctx); err != nil {
			return
		}
	}
}
