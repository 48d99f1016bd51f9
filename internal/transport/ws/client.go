package ws

import (
	"context"
	"sync"
	"time"

	"github.com/coder/websocket"
)

const writeTimeout = 5 * time.Second

type sink interface {
	Send(b []byte) error
}

// Client is a single websocket connection of a courier device.
type Client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// NewClient wraps conn.
func NewClient(conn *websocket.Conn) *Client {
	return &Client{conn: conn}
}

// Send writes one text frame. Writes are serialised per connection.
func (c *Client) Send(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	return c.conn.Write(ctx, websocket.MessageText, b)
}
