package models

import "time"

// Group represents a group chat.
type Group struct {
	ID        int       `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	OwnerID   int       `db:"owner_id" json:"owner_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// GroupMessage is a persisted message in a group chat. ParentMessageID is
// set when the message replies to an earlier one in the same group.
type GroupMessage struct {
	ID              int       `db:"id" json:"id"`
	GroupChatID     int       `db:"group_chat_id" json:"group_chat_id"`
	SenderID        int       `db:"sender_id" json:"sender_id"`
	Content         string    `db:"content" json:"content"`
	ParentMessageID *int      `db:"parent_message_id" json:"parent_message_id,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// GroupEvent is broadcasted to online members of a group.
type GroupEvent struct {
	Type    string        `json:"type"`
	Message *GroupMessage `json:"message,omitempty"`
}
