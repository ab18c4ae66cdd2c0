package embedded

import (
	"context"
	"errors"
	"sort"
	"strconv"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"

	"messenger-service/internal/apperrors"
	"messenger-service/internal/models"
)

// CreateChat writes the chat and its participants in one transaction.
func (s *Store) CreateChat(ctx context.Context, input models.NewChat) (models.Chat, error) {
	ids := lo.Uniq(input.ParticipantIDs)

	var chat models.Chat
	err := s.update(ctx, func(txn *badger.Txn) error {
		for _, id := range ids {
			ok, err := exists(txn, userKey(id))
			if err != nil {
				return err
			}
			if !ok {
				return apperrors.ErrUnknownParticipant
			}
		}

		chatID, err := nextID(s.chatSeq)
		if err != nil {
			return err
		}
		now := s.now()
		chat = models.Chat{
			ID:        chatID,
			Name:      input.Name,
			IsGroup:   input.IsGroup,
			AvatarURL: input.AvatarURL,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := setJSON(txn, chatKey(chatID), chat); err != nil {
			return err
		}
		for _, userID := range ids {
			if err := s.putParticipant(txn, chatID, userID, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.Chat{}, err
	}
	return chat, nil
}

// GetChat fetches a chat by id.
func (s *Store) GetChat(_ context.Context, chatID int) (models.Chat, error) {
	var chat models.Chat
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		chat, err = getChat(txn, chatID)
		return err
	})
	return chat, err
}

// ListChatsForUser returns the user's chats with the user's read watermark, ordered by chat id.
func (s *Store) ListChatsForUser(_ context.Context, userID int) ([]models.MemberChat, error) {
	chats := []models.MemberChat{}
	err := s.db.View(func(txn *badger.Txn) error {
		return scanKeys(txn, userChatPrefix(userID), func(suffix string) error {
			chatID, err := strconv.Atoi(suffix)
			if err != nil {
				return err
			}
			chat, err := getChat(txn, chatID)
			if err != nil {
				return err
			}
			var p models.Participant
			if err := getJSON(txn, memberKey(chatID, userID), &p); err != nil {
				return err
			}
			chats = append(chats, models.MemberChat{Chat: chat, LastReadAt: p.LastReadAt})
			return nil
		})
	})
	return chats, err
}

// ListParticipants resolves the users participating in a chat in join order.
func (s *Store) ListParticipants(_ context.Context, chatID int) ([]models.User, error) {
	users := []models.User{}
	err := s.db.View(func(txn *badger.Txn) error {
		var members []models.Participant
		err := scanJSON(txn, memberPrefix(chatID), false, func(val []byte) (bool, error) {
			var p models.Participant
			if err := unmarshal(val, &p); err != nil {
				return false, err
			}
			members = append(members, p)
			return true, nil
		})
		if err != nil {
			return err
		}
		sort.SliceStable(members, func(i, j int) bool {
			if !members[i].JoinedAt.Equal(members[j].JoinedAt) {
				return members[i].JoinedAt.Before(members[j].JoinedAt)
			}
			return members[i].ID < members[j].ID
		})
		for _, p := range members {
			u, err := getUser(txn, p.UserID)
			if err != nil {
				return err
			}
			users = append(users, u)
		}
		return nil
	})
	return users, err
}

func getChat(txn *badger.Txn, chatID int) (models.Chat, error) {
	var chat models.Chat
	err := getJSON(txn, chatKey(chatID), &chat)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return models.Chat{}, apperrors.ErrChatNotFound
	}
	return chat, err
}
