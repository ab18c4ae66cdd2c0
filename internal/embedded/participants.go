package embedded

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"

	"messenger-service/internal/apperrors"
	"messenger-service/internal/models"
)

// IsParticipant checks whether a user belongs to the chat.
func (s *Store) IsParticipant(_ context.Context, chatID int, userID int) (bool, error) {
	var member bool
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		member, err = exists(txn, memberKey(chatID, userID))
		return err
	})
	return member, err
}

// AddParticipant inserts a membership, refusing a second one for the same pair.
func (s *Store) AddParticipant(ctx context.Context, chatID int, userID int) (models.Participant, error) {
	var p models.Participant
	err := s.update(ctx, func(txn *badger.Txn) error {
		if _, err := getChat(txn, chatID); err != nil {
			return err
		}
		member, err := exists(txn, memberKey(chatID, userID))
		if err != nil {
			return err
		}
		if member {
			return apperrors.ErrAlreadyMember
		}
		ok, err := exists(txn, userKey(userID))
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.ErrUserNotFound
		}
		if err := s.putParticipant(txn, chatID, userID, s.now()); err != nil {
			return err
		}
		return getJSON(txn, memberKey(chatID, userID), &p)
	})
	if err != nil {
		return models.Participant{}, err
	}
	return p, nil
}

// MarkRead moves the watermark up to the chat's latest activity, never backwards.
// Reading the chat record makes a send committing meanwhile conflict with this
// transaction, so every message either counts as read or stays unread.
// Missing memberships are left alone.
func (s *Store) MarkRead(ctx context.Context, chatID int, userID int) (bool, error) {
	var updated bool
	err := s.update(ctx, func(txn *badger.Txn) error {
		updated = false
		var p models.Participant
		err := getJSON(txn, memberKey(chatID, userID), &p)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		chat, err := getChat(txn, chatID)
		if err != nil {
			return err
		}
		seen := chat.UpdatedAt
		if p.LastReadAt == nil || seen.After(*p.LastReadAt) {
			p.LastReadAt = &seen
		}
		updated = true
		return setJSON(txn, memberKey(chatID, userID), p)
	})
	return updated, err
}

func (s *Store) putParticipant(txn *badger.Txn, chatID, userID int, joinedAt time.Time) error {
	id, err := nextID(s.participantSeq)
	if err != nil {
		return err
	}
	p := models.Participant{
		ID:       id,
		ChatID:   chatID,
		UserID:   userID,
		JoinedAt: joinedAt,
	}
	if err := setJSON(txn, memberKey(chatID, userID), p); err != nil {
		return err
	}
	return txn.Set([]byte(userChatKey(userID, chatID)), []byte{})
}
