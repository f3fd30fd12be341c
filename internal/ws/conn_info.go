package ws

import "time"

// ConnInfo carries per-connection identity and trace metadata attached to
// a session for the lifetime of the websocket.
type ConnInfo struct {
	ConnID      string
	UserID      int
	DeviceID    string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}
