package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"messenger-service/internal/models"
)

// ParticipantRepo is a sqlx implementation of ParticipantRepository.
type ParticipantRepo struct {
	db *sqlx.DB
}

// NewParticipantRepo constructs a ParticipantRepo.
func NewParticipantRepo(db *sqlx.DB) *ParticipantRepo {
	return &ParticipantRepo{db: db}
}

// IsParticipant checks whether a user belongs to the chat.
func (r *ParticipantRepo) IsParticipant(ctx context.Context, chatID int, userID int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM chat_participants WHERE chat_id=$1 AND user_id=$2)`, chatID, userID)
	return exists, err
}

// AddParticipant inserts a membership row. The unique index turns a lost race into ErrAlreadyMember.
func (r *ParticipantRepo) AddParticipant(ctx context.Context, chatID int, userID int) (models.Participant, error) {
	var p models.Participant
	err := r.db.GetContext(ctx, &p, `INSERT INTO chat_participants (chat_id, user_id) VALUES ($1, $2)
        RETURNING id, chat_id, user_id, joined_at, last_read_at`, chatID, userID)
	if err != nil {
		return models.Participant{}, constraintError(err)
	}
	return p, nil
}

// MarkRead advances the watermark to the chat's committed activity time; GREATEST ignores a NULL previous value.
// Sends still in flight get a later time, so they stay unread.
func (r *ParticipantRepo) MarkRead(ctx context.Context, chatID int, userID int) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE chat_participants cp SET last_read_at = GREATEST(cp.last_read_at, c.updated_at)
        FROM chats c WHERE c.id = cp.chat_id AND cp.chat_id=$1 AND cp.user_id=$2`, chatID, userID)
	if err != nil {
		return false, err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
