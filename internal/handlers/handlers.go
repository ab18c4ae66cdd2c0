package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"messenger-service/internal/apperrors"
	"messenger-service/internal/models"
	"messenger-service/internal/services"
)

// UserService registers and lists users.
type UserService interface {
	CreateUser(ctx context.Context, in models.NewUser) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

// ChatService creates chats and admits members.
type ChatService interface {
	CreateChat(ctx context.Context, in models.NewChat) (models.Chat, error)
	JoinChat(ctx context.Context, chatID, userID int) (models.Participant, error)
}

// ChatLister builds the activity ordered chat list of a user.
type ChatLister interface {
	ListChatsForUser(ctx context.Context, userID int) ([]models.ChatSummary, error)
}

// MessageLedger appends and pages chat messages.
type MessageLedger interface {
	Append(ctx context.Context, in services.SendMessage) (models.Message, error)
	List(ctx context.Context, chatID, limit, offset int) ([]models.MessageWithSender, error)
}

// ReadTracker maintains read watermarks.
type ReadTracker interface {
	MarkRead(ctx context.Context, chatID, userID int) error
	UnreadCount(ctx context.Context, chatID, userID int) (int, error)
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotAMember):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrChatNotFound), errors.Is(err, apperrors.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrDuplicate),
		errors.Is(err, apperrors.ErrAlreadyMember),
		errors.Is(err, apperrors.ErrNotAGroupChat):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrUnknownParticipant):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the mapped status. Unexpected errors are attached to the
// gin context for the logger and hidden behind fallback.
func respondError(c *gin.Context, err error, fallback string) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": fallback})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func chatIDParam(c *gin.Context) (int, bool) {
	chatID, err := strconv.Atoi(c.Param("chat_id"))
	if err != nil || chatID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return 0, false
	}
	return chatID, true
}

func intQuery(c *gin.Context, key string, fallback int) (int, bool) {
	raw, ok := c.GetQuery(key)
	if !ok {
		return fallback, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + key})
		return 0, false
	}
	return value, true
}
