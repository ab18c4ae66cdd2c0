package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"messenger-service/internal/apperrors"
	"messenger-service/internal/models"
)

const messageColumns = `id, chat_id, sender_id, content, message_type, created_at, updated_at`

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateMessage advances the chat activity timestamp and stores a message created at that instant.
// The chat row lock orders sends, and each message time is strictly after the previous activity.
func (r *MessageRepo) CreateMessage(ctx context.Context, chatID int, senderID int, content string, messageType models.MessageType) (msg models.Message, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Message{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var createdAt time.Time
	err = tx.GetContext(ctx, &createdAt, `UPDATE chats
        SET updated_at = GREATEST(updated_at + interval '1 microsecond', clock_timestamp())
        WHERE id=$1 RETURNING updated_at`, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		err = apperrors.ErrChatNotFound
	}
	if err != nil {
		return models.Message{}, err
	}

	if err = tx.GetContext(ctx, &msg, `INSERT INTO messages (chat_id, sender_id, content, message_type, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $5) RETURNING `+messageColumns,
		chatID, senderID, content, messageType, createdAt); err != nil {
		return models.Message{}, err
	}

	if err = tx.Commit(); err != nil {
		return models.Message{}, err
	}
	return msg, nil
}

type messageSenderRow struct {
	models.Message
	SenderUsername  string    `db:"sender_username"`
	SenderEmail     string    `db:"sender_email"`
	SenderAvatarURL *string   `db:"sender_avatar_url"`
	SenderCreatedAt time.Time `db:"sender_created_at"`
	SenderUpdatedAt time.Time `db:"sender_updated_at"`
}

// ListMessages returns a page of messages newest first, each joined with its sender.
func (r *MessageRepo) ListMessages(ctx context.Context, chatID int, limit int, offset int) ([]models.MessageWithSender, error) {
	var rows []messageSenderRow
	err := r.db.SelectContext(ctx, &rows, `SELECT m.id, m.chat_id, m.sender_id, m.content, m.message_type, m.created_at, m.updated_at,
            u.username AS sender_username, u.email AS sender_email, u.avatar_url AS sender_avatar_url,
            u.created_at AS sender_created_at, u.updated_at AS sender_updated_at
        FROM messages m
        INNER JOIN users u ON u.id = m.sender_id
        WHERE m.chat_id=$1
        ORDER BY m.created_at DESC, m.id DESC
        LIMIT $2 OFFSET $3`, chatID, limit, offset)
	if err != nil {
		return nil, err
	}

	msgs := make([]models.MessageWithSender, 0, len(rows))
	for _, row := range rows {
		msgs = append(msgs, models.MessageWithSender{
			Message: row.Message,
			Sender: models.User{
				ID:        row.SenderID,
				Username:  row.SenderUsername,
				Email:     row.SenderEmail,
				AvatarURL: row.SenderAvatarURL,
				CreatedAt: row.SenderCreatedAt,
				UpdatedAt: row.SenderUpdatedAt,
			},
		})
	}
	return msgs, nil
}

// ChatActivity reads the last message and the unread count inside one read-only snapshot.
func (r *MessageRepo) ChatActivity(ctx context.Context, chatID int, userID int) (activity models.ChatActivity, err error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return models.ChatActivity{}, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var last models.Message
	err = tx.GetContext(ctx, &last, `SELECT `+messageColumns+` FROM messages WHERE chat_id=$1 ORDER BY created_at DESC, id DESC LIMIT 1`, chatID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return models.ChatActivity{}, err
	default:
		activity.LastMessage = &last
	}

	err = tx.GetContext(ctx, &activity.UnreadCount, `SELECT COUNT(*) FROM messages m
        LEFT JOIN chat_participants cp ON cp.chat_id = m.chat_id AND cp.user_id=$2
        WHERE m.chat_id=$1 AND m.created_at > COALESCE(cp.last_read_at, 'epoch'::timestamptz)`, chatID, userID)
	if err != nil {
		return models.ChatActivity{}, err
	}
	return activity, nil
}
