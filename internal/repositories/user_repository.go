package repositories

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"messenger-service/internal/apperrors"
	"messenger-service/internal/models"
)

const userColumns = `id, username, email, avatar_url, created_at, updated_at`

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// CreateUser inserts a user, reporting which unique field collided.
func (r *UserRepo) CreateUser(ctx context.Context, user models.NewUser) (models.User, error) {
	var existing []models.User
	if err := r.db.SelectContext(ctx, &existing, `SELECT `+userColumns+` FROM users WHERE username=$1 OR email=$2`, user.Username, user.Email); err != nil {
		return models.User{}, err
	}
	if err := duplicateOf(existing, user); err != nil {
		return models.User{}, err
	}

	var created models.User
	err := r.db.GetContext(ctx, &created, `INSERT INTO users (username, email, avatar_url) VALUES ($1, $2, $3) RETURNING `+userColumns,
		user.Username, user.Email, user.AvatarURL)
	if err != nil {
		return models.User{}, constraintError(err)
	}
	return created, nil
}

// ListUsers returns every user ordered by id.
func (r *UserRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	err := r.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY id ASC`)
	return users, err
}

func duplicateOf(existing []models.User, user models.NewUser) error {
	for _, u := range existing {
		if u.Username == user.Username {
			return apperrors.ErrDuplicateUsername
		}
	}
	for _, u := range existing {
		if u.Email == user.Email {
			return apperrors.ErrDuplicateEmail
		}
	}
	return nil
}

// constraintError maps unique and foreign key violations to domain errors.
func constraintError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	if pqErr.Code == "23503" {
		switch pqErr.Constraint {
		case "chat_participants_user_id_fkey":
			return apperrors.ErrUserNotFound
		case "chat_participants_chat_id_fkey":
			return apperrors.ErrChatNotFound
		}
		return err
	}
	if pqErr.Code != "23505" {
		return err
	}
	switch pqErr.Constraint {
	case "users_username_key":
		return apperrors.ErrDuplicateUsername
	case "users_email_key":
		return apperrors.ErrDuplicateEmail
	case "chat_participants_chat_id_user_id_key":
		return apperrors.ErrAlreadyMember
	}
	return err
}
