package models

import "time"

// DirectMessage is a persisted one-to-one message.
type DirectMessage struct {
	ID          int       `db:"id" json:"id"`
	SenderID    int       `db:"sender_id" json:"sender_id"`
	RecipientID int       `db:"recipient_id" json:"recipient_id"`
	Content     string    `db:"content" json:"content"`
	IsRead      bool      `db:"is_read" json:"is_read"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Frame types accepted on the messaging websocket.
const (
	FrameTypeDirect = "dm"
	FrameTypeGroup  = "group"
)

// Frame is one inbound websocket message. ReceiverID is required for dm
// frames, GroupID for group frames; ParentID is optional on group frames.
type Frame struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	ReceiverID int    `json:"receiver_id,omitempty"`
	GroupID    int    `json:"group_id,omitempty"`
	ParentID   *int   `json:"parent_id,omitempty"`
}

// DirectEvent is broadcasted to the recipient of a direct message.
type DirectEvent struct {
	Type    string         `json:"type"`
	Message *DirectMessage `json:"message,omitempty"`
}

// ErrorEvent is sent back on the same connection when a frame is rejected.
type ErrorEvent struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}
