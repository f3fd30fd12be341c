package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"messaging-service/internal/models"
)

// GroupMessageRepository defines interactions for group messages.
type GroupMessageRepository interface {
	Create(ctx context.Context, groupID int, senderID int, content string, parentID *int) (models.GroupMessage, error)
	History(ctx context.Context, groupID int) ([]models.GroupMessage, error)
	Get(ctx context.Context, messageID int) (models.GroupMessage, error)
}

// GroupMessageRepo is a sqlx-backed implementation.
type GroupMessageRepo struct {
	db *sqlx.DB
}

// NewGroupMessageRepo constructs a GroupMessageRepo.
func NewGroupMessageRepo(db *sqlx.DB) *GroupMessageRepo {
	return &GroupMessageRepo{db: db}
}

// Create persists a group message, optionally as a reply to parentID.
func (r *GroupMessageRepo) Create(ctx context.Context, groupID int, senderID int, content string, parentID *int) (models.GroupMessage, error) {
	var msg models.GroupMessage
	err := r.db.QueryRowxContext(ctx, `INSERT INTO group_messages (group_chat_id, sender_id, content, parent_message_id) VALUES ($1, $2, $3, $4) RETURNING id, group_chat_id, sender_id, content, parent_message_id, created_at`, groupID, senderID, content, parentID).
		Scan(&msg.ID, &msg.GroupChatID, &msg.SenderID, &msg.Content, &msg.ParentMessageID, &msg.CreatedAt)
	return msg, err
}

// History returns the group's messages ordered by creation time.
func (r *GroupMessageRepo) History(ctx context.Context, groupID int) ([]models.GroupMessage, error) {
	var msgs []models.GroupMessage
	err := r.db.SelectContext(ctx, &msgs, `SELECT id, group_chat_id, sender_id, content, parent_message_id, created_at FROM group_messages WHERE group_chat_id=$1 ORDER BY created_at ASC`, groupID)
	return msgs, err
}

// Get fetches a single message.
func (r *GroupMessageRepo) Get(ctx context.Context, messageID int) (models.GroupMessage, error) {
	var msg models.GroupMessage
	err := r.db.GetContext(ctx, &msg, `SELECT id, group_chat_id, sender_id, content, parent_message_id, created_at FROM group_messages WHERE id=$1`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.GroupMessage{}, ErrMessageNotFound
	}
	return msg, err
}
