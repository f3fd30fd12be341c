package ws

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Handle is the transport side of one registered connection. Send returns
// the write outcome so the router can treat a failed write as a disconnect.
// Implementations must serialize writes so records issued for the same
// connection keep their order.
type Handle interface {
	Send(payload []byte) error
	Close() error
}

type wsHandle struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// NewWSHandle wraps a websocket connection as a Handle.
func NewWSHandle(conn *websocket.Conn) Handle {
	return &wsHandle{conn: conn}
}

func (h *wsHandle) Send(payload []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.conn.WriteMessage(websocket.TextMessage, payload)
}

func (h *wsHandle) Close() error {
	return h.conn.Close()
}
