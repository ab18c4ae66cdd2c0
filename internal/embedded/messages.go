package embedded

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"messenger-service/internal/apperrors"
	"messenger-service/internal/models"
)

// CreateMessage appends the message and advances the chat activity timestamp in one transaction.
// The message time is kept strictly after the previous activity so that message times
// increase in commit order.
func (s *Store) CreateMessage(ctx context.Context, chatID int, senderID int, content string, messageType models.MessageType) (models.Message, error) {
	if !messageType.Valid() {
		return models.Message{}, apperrors.Validation("unknown message type %q", messageType)
	}
	var msg models.Message
	err := s.update(ctx, func(txn *badger.Txn) error {
		chat, err := getChat(txn, chatID)
		if err != nil {
			return err
		}
		id, err := nextID(s.messageSeq)
		if err != nil {
			return err
		}
		now := s.now()
		if !now.After(chat.UpdatedAt) {
			now = chat.UpdatedAt.Add(time.Nanosecond)
		}
		msg = models.Message{
			ID:          id,
			ChatID:      chatID,
			SenderID:    senderID,
			Content:     content,
			MessageType: messageType,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := setJSON(txn, messageKey(chatID, now, id), msg); err != nil {
			return err
		}
		chat.UpdatedAt = now
		return setJSON(txn, chatKey(chatID), chat)
	})
	if err != nil {
		return models.Message{}, err
	}
	return msg, nil
}

// ListMessages returns a page of messages newest first, each joined with its sender.
// A message whose sender record is gone fails the whole page.
func (s *Store) ListMessages(_ context.Context, chatID int, limit int, offset int) ([]models.MessageWithSender, error) {
	msgs := []models.MessageWithSender{}
	if limit <= 0 {
		return msgs, nil
	}
	err := s.db.View(func(txn *badger.Txn) error {
		var page []models.Message
		skipped := 0
		err := scanJSON(txn, messagePrefix(chatID), true, func(val []byte) (bool, error) {
			if skipped < offset {
				skipped++
				return true, nil
			}
			var m models.Message
			if err := unmarshal(val, &m); err != nil {
				return false, err
			}
			page = append(page, m)
			return len(page) < limit, nil
		})
		if err != nil {
			return err
		}

		for _, m := range page {
			sender, err := getUser(txn, m.SenderID)
			if err != nil {
				return fmt.Errorf("sender %d of message %d: %w", m.SenderID, m.ID, err)
			}
			msgs = append(msgs, models.MessageWithSender{Message: m, Sender: sender})
		}
		return nil
	})
	return msgs, err
}

// ChatActivity reads the last message and the member's unread count from one read transaction.
func (s *Store) ChatActivity(_ context.Context, chatID int, userID int) (models.ChatActivity, error) {
	var activity models.ChatActivity
	err := s.db.View(func(txn *badger.Txn) error {
		var watermark time.Time
		var p models.Participant
		err := getJSON(txn, memberKey(chatID, userID), &p)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
		case err != nil:
			return err
		case p.LastReadAt != nil:
			watermark = *p.LastReadAt
		}

		return scanJSON(txn, messagePrefix(chatID), true, func(val []byte) (bool, error) {
			var m models.Message
			if err := unmarshal(val, &m); err != nil {
				return false, err
			}
			if activity.LastMessage == nil {
				last := m
				activity.LastMessage = &last
			}
			if !m.CreatedAt.After(watermark) {
				// keys are time ordered, nothing older can be unread
				return false, nil
			}
			activity.UnreadCount++
			return true, nil
		})
	})
	return activity, err
}
