package repositories

import (
	"context"

	"messenger-service/internal/models"
)

// UserRepository abstracts user persistence.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.NewUser) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

// ChatRepository abstracts chat persistence.
type ChatRepository interface {
	// CreateChat stores the chat and one participant row per id in a single transaction.
	// It fails with apperrors.ErrUnknownParticipant without writing when any id has no user.
	CreateChat(ctx context.Context, chat models.NewChat) (models.Chat, error)
	GetChat(ctx context.Context, chatID int) (models.Chat, error)
	ListChatsForUser(ctx context.Context, userID int) ([]models.MemberChat, error)
	ListParticipants(ctx context.Context, chatID int) ([]models.User, error)
}

// ParticipantRepository abstracts membership persistence.
type ParticipantRepository interface {
	IsParticipant(ctx context.Context, chatID int, userID int) (bool, error)
	AddParticipant(ctx context.Context, chatID int, userID int) (models.Participant, error)
	// MarkRead moves last_read_at forward to the store's current time.
	// It reports false when no membership exists.
	MarkRead(ctx context.Context, chatID int, userID int) (bool, error)
}

// MessageRepository defines interactions for chat messages.
type MessageRepository interface {
	// CreateMessage inserts the message and advances the chat activity timestamp atomically.
	CreateMessage(ctx context.Context, chatID int, senderID int, content string, messageType models.MessageType) (models.Message, error)
	ListMessages(ctx context.Context, chatID int, limit int, offset int) ([]models.MessageWithSender, error)
	// ChatActivity reads the latest message and the member's unread count from one snapshot.
	ChatActivity(ctx context.Context, chatID int, userID int) (models.ChatActivity, error)
}

// Store groups the repositories of one storage engine.
type Store struct {
	Users        UserRepository
	Chats        ChatRepository
	Participants ParticipantRepository
	Messages     MessageRepository
}
