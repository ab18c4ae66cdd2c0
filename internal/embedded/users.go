package embedded

import (
	"context"
	"strconv"

	"github.com/dgraph-io/badger/v4"

	"messenger-service/internal/apperrors"
	"messenger-service/internal/models"
)

// CreateUser stores a user and claims its username and email index keys.
func (s *Store) CreateUser(ctx context.Context, input models.NewUser) (models.User, error) {
	var user models.User
	err := s.update(ctx, func(txn *badger.Txn) error {
		taken, err := exists(txn, usernameKey(input.Username))
		if err != nil {
			return err
		}
		if taken {
			return apperrors.ErrDuplicateUsername
		}
		if taken, err = exists(txn, emailKey(input.Email)); err != nil {
			return err
		}
		if taken {
			return apperrors.ErrDuplicateEmail
		}

		id, err := nextID(s.userSeq)
		if err != nil {
			return err
		}
		now := s.now()
		user = models.User{
			ID:        id,
			Username:  input.Username,
			Email:     input.Email,
			AvatarURL: input.AvatarURL,
			CreatedAt: now,
			UpdatedAt: now,
		}
		ref := []byte(strconv.Itoa(id))
		if err := txn.Set([]byte(usernameKey(input.Username)), ref); err != nil {
			return err
		}
		if err := txn.Set([]byte(emailKey(input.Email)), ref); err != nil {
			return err
		}
		return setJSON(txn, userKey(id), user)
	})
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// ListUsers returns every user ordered by id.
func (s *Store) ListUsers(_ context.Context) ([]models.User, error) {
	users := []models.User{}
	err := s.db.View(func(txn *badger.Txn) error {
		return scanJSON(txn, "user:", false, func(val []byte) (bool, error) {
			var u models.User
			if err := unmarshal(val, &u); err != nil {
				return false, err
			}
			users = append(users, u)
			return true, nil
		})
	})
	return users, err
}

func getUser(txn *badger.Txn, id int) (models.User, error) {
	var u models.User
	if err := getJSON(txn, userKey(id), &u); err != nil {
		return models.User{}, err
	}
	return u, nil
}
