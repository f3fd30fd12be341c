package repositories

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"messaging-service/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

// DirectMessageRepository defines interactions for one-to-one messages.
type DirectMessageRepository interface {
	Create(ctx context.Context, senderID int, recipientID int, content string) (models.DirectMessage, error)
	History(ctx context.Context, userID int, peerID int) ([]models.DirectMessage, error)
	MarkConversationRead(ctx context.Context, recipientID int, peerID int) error
}

// DirectMessageRepo is a sqlx-backed implementation.
type DirectMessageRepo struct {
	db *sqlx.DB
}

// NewDirectMessageRepo constructs a DirectMessageRepo.
func NewDirectMessageRepo(db *sqlx.DB) *DirectMessageRepo {
	return &DirectMessageRepo{db: db}
}

// Create stores a direct message and returns the canonical record with its
// assigned id and timestamp.
func (r *DirectMessageRepo) Create(ctx context.Context, senderID int, recipientID int, content string) (models.DirectMessage, error) {
	var msg models.DirectMessage
	err := r.db.QueryRowxContext(ctx, `INSERT INTO dm_messages (sender_id, recipient_id, content) VALUES ($1, $2, $3) RETURNING id, sender_id, recipient_id, content, is_read, created_at`, senderID, recipientID, content).
		Scan(&msg.ID, &msg.SenderID, &msg.RecipientID, &msg.Content, &msg.IsRead, &msg.CreatedAt)
	return msg, err
}

// History returns both sides of the conversation between two users ordered
// by creation time.
func (r *DirectMessageRepo) History(ctx context.Context, userID int, peerID int) ([]models.DirectMessage, error) {
	query := `SELECT id, sender_id, recipient_id, content, is_read, created_at
        FROM dm_messages
        WHERE (sender_id=$1 AND recipient_id=$2) OR (sender_id=$2 AND recipient_id=$1)
        ORDER BY created_at ASC`
	var msgs []models.DirectMessage
	err := r.db.SelectContext(ctx, &msgs, query, userID, peerID)
	return msgs, err
}

// MarkConversationRead marks the peer's messages to the recipient as read.
func (r *DirectMessageRepo) MarkConversationRead(ctx context.Context, recipientID int, peerID int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE dm_messages SET is_read = TRUE WHERE recipient_id=$1 AND sender_id=$2 AND is_read = FALSE`, recipientID, peerID)
	return err
}
