package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"messenger-service/internal/apperrors"
	"messenger-service/internal/models"
	"messenger-service/internal/services"
	"messenger-service/internal/telemetry"
)

// MessageHandler serves chat history, posting and read tracking.
type MessageHandler struct {
	ledger MessageLedger
	reads  ReadTracker
	audit  *telemetry.AuditEmitter
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(ledger MessageLedger, reads ReadTracker, audit *telemetry.AuditEmitter) *MessageHandler {
	return &MessageHandler{ledger: ledger, reads: reads, audit: audit}
}

// GetChatMessages returns a page of history, newest first.
func (h *MessageHandler) GetChatMessages(c *gin.Context) {
	chatID, ok := chatIDParam(c)
	if !ok {
		return
	}
	limit, ok := intQuery(c, "limit", services.DefaultPageLimit)
	if !ok {
		return
	}
	offset, ok := intQuery(c, "offset", 0)
	if !ok {
		return
	}

	msgs, err := h.ledger.List(c.Request.Context(), chatID, limit, offset)
	if err != nil {
		respondError(c, err, "failed to load messages")
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// PostChatMessage appends a message from the caller.
func (h *MessageHandler) PostChatMessage(c *gin.Context) {
	chatID, ok := chatIDParam(c)
	if !ok {
		return
	}

	var req struct {
		Content     string `json:"content" binding:"required"`
		MessageType string `json:"message_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.ledger.Append(c.Request.Context(), services.SendMessage{
		ChatID:      chatID,
		SenderID:    c.GetInt("userID"),
		Content:     req.Content,
		MessageType: models.MessageType(req.MessageType),
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrNotAMember) {
			auditDenied(c, h.audit, "send", chatID, "not a participant")
		}
		respondError(c, err, "could not send message")
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// MarkRead moves the caller's read watermark to now.
func (h *MessageHandler) MarkRead(c *gin.Context) {
	chatID, ok := chatIDParam(c)
	if !ok {
		return
	}

	if err := h.reads.MarkRead(c.Request.Context(), chatID, c.GetInt("userID")); err != nil {
		respondError(c, err, "could not mark chat read")
		return
	}

	c.Status(http.StatusNoContent)
}

// UnreadCount reports how many messages arrived after the caller's watermark.
func (h *MessageHandler) UnreadCount(c *gin.Context) {
	chatID, ok := chatIDParam(c)
	if !ok {
		return
	}

	count, err := h.reads.UnreadCount(c.Request.Context(), chatID, c.GetInt("userID"))
	if err != nil {
		respondError(c, err, "failed to count unread messages")
		return
	}

	c.JSON(http.StatusOK, gin.H{"chat_id": chatID, "unread_count": count})
}
