package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"messenger-service/internal/apperrors"
	"messenger-service/internal/models"
	"messenger-service/internal/telemetry"
)

// ChatHandler manages chat creation, membership and the chat list.
type ChatHandler struct {
	chats  ChatService
	lister ChatLister
	audit  *telemetry.AuditEmitter
}

// NewChatHandler builds a ChatHandler.
func NewChatHandler(chats ChatService, lister ChatLister, audit *telemetry.AuditEmitter) *ChatHandler {
	return &ChatHandler{chats: chats, lister: lister, audit: audit}
}

// ListChats returns the caller's chats, most recently active first.
func (h *ChatHandler) ListChats(c *gin.Context) {
	userID := c.GetInt("userID")

	chats, err := h.lister.ListChatsForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "failed to load chats")
		return
	}

	c.JSON(http.StatusOK, gin.H{"chats": chats})
}

// CreateChat creates a one-on-one or group chat with the given participants.
func (h *ChatHandler) CreateChat(c *gin.Context) {
	var req struct {
		Name           *string `json:"name"`
		IsGroup        bool    `json:"is_group"`
		AvatarURL      *string `json:"avatar_url"`
		ParticipantIDs []int   `json:"participant_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	chat, err := h.chats.CreateChat(c.Request.Context(), models.NewChat{
		Name:           req.Name,
		IsGroup:        req.IsGroup,
		AvatarURL:      req.AvatarURL,
		ParticipantIDs: req.ParticipantIDs,
	})
	if err != nil {
		respondError(c, err, "could not create chat")
		return
	}

	c.JSON(http.StatusCreated, chat)
}

// JoinChat adds the caller to a group chat.
func (h *ChatHandler) JoinChat(c *gin.Context) {
	chatID, ok := chatIDParam(c)
	if !ok {
		return
	}

	userID := c.GetInt("userID")
	participant, err := h.chats.JoinChat(c.Request.Context(), chatID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotAGroupChat) {
			auditDenied(c, h.audit, "join", chatID, "one-on-one chat")
		}
		respondError(c, err, "could not join chat")
		return
	}

	c.JSON(http.StatusCreated, participant)
}
