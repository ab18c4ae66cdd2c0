package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/samber/lo"

	"messenger-service/internal/apperrors"
	"messenger-service/internal/models"
)

const chatColumns = `c.id, c.name, c.is_group, c.avatar_url, c.created_at, c.updated_at`

// ChatRepo is a sqlx implementation of ChatRepository.
type ChatRepo struct {
	db *sqlx.DB
}

// NewChatRepo constructs a ChatRepo.
func NewChatRepo(db *sqlx.DB) *ChatRepo {
	return &ChatRepo{db: db}
}

// CreateChat creates a chat and its participants atomically.
func (r *ChatRepo) CreateChat(ctx context.Context, input models.NewChat) (chat models.Chat, err error) {
	ids := lo.Uniq(input.ParticipantIDs)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Chat{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// lock the referenced users so none can vanish between the check and the inserts
	var found int
	if err = tx.GetContext(ctx, &found, `SELECT COUNT(*) FROM (SELECT id FROM users WHERE id = ANY($1) FOR SHARE) u`, pq.Array(ids)); err != nil {
		return models.Chat{}, err
	}
	if found != len(ids) {
		err = apperrors.ErrUnknownParticipant
		return models.Chat{}, err
	}

	if err = tx.GetContext(ctx, &chat, `INSERT INTO chats AS c (name, is_group, avatar_url) VALUES ($1, $2, $3) RETURNING `+chatColumns,
		input.Name, input.IsGroup, input.AvatarURL); err != nil {
		return models.Chat{}, err
	}

	for _, id := range ids {
		if _, err = tx.ExecContext(ctx, `INSERT INTO chat_participants (chat_id, user_id) VALUES ($1, $2)`, chat.ID, id); err != nil {
			return models.Chat{}, err
		}
	}

	if err = tx.Commit(); err != nil {
		return models.Chat{}, err
	}
	return chat, nil
}

// GetChat fetches a chat by id.
func (r *ChatRepo) GetChat(ctx context.Context, chatID int) (models.Chat, error) {
	var chat models.Chat
	err := r.db.GetContext(ctx, &chat, `SELECT `+chatColumns+` FROM chats c WHERE c.id=$1`, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Chat{}, apperrors.ErrChatNotFound
	}
	return chat, err
}

// ListChatsForUser returns the chats the user participates in, with the user's read watermark.
func (r *ChatRepo) ListChatsForUser(ctx context.Context, userID int) ([]models.MemberChat, error) {
	chats := []models.MemberChat{}
	err := r.db.SelectContext(ctx, &chats, `SELECT `+chatColumns+`, cp.last_read_at FROM chat_participants cp
        INNER JOIN chats c ON c.id = cp.chat_id
        WHERE cp.user_id=$1
        ORDER BY c.id ASC`, userID)
	return chats, err
}

// ListParticipants resolves the users participating in a chat.
func (r *ChatRepo) ListParticipants(ctx context.Context, chatID int) ([]models.User, error) {
	users := []models.User{}
	err := r.db.SelectContext(ctx, &users, `SELECT u.id, u.username, u.email, u.avatar_url, u.created_at, u.updated_at FROM chat_participants cp
        INNER JOIN users u ON u.id = cp.user_id
        WHERE cp.chat_id=$1
        ORDER BY cp.joined_at ASC, cp.id ASC`, chatID)
	return users, err
}
