package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"messenger-service/internal/models"
	"messenger-service/internal/observability"
	"messenger-service/internal/repositories"
)

// SendMessage is the input of MessageLedger.Append.
type SendMessage struct {
	ChatID      int
	SenderID    int
	Content     string             `validate:"required"`
	MessageType models.MessageType `validate:"omitempty,oneof=text image file"`
}

type page struct {
	Limit  int `validate:"min=1,max=100"`
	Offset int `validate:"min=0"`
}

// MessageLedger appends messages and serves chat history newest first.
type MessageLedger struct {
	guard    *MembershipGuard
	messages repositories.MessageRepository
	events   *Events
	validate *validator.Validate
	log      *slog.Logger
}

func NewMessageLedger(guard *MembershipGuard, messages repositories.MessageRepository, events *Events, log *slog.Logger) *MessageLedger {
	return &MessageLedger{
		guard:    guard,
		messages: messages,
		events:   events,
		validate: newValidator(),
		log:      log,
	}
}

// Append stores a message from a current member. Nothing is written when the
// sender is not a member or the chat does not exist.
func (l *MessageLedger) Append(ctx context.Context, in SendMessage) (_ models.Message, err error) {
	ctx, span := tracer.Start(ctx, "MessageLedger.Append", trace.WithAttributes(
		attribute.Int("chat.id", in.ChatID),
		attribute.Int("user.id", in.SenderID),
	))
	defer func() { endSpan(span, err) }()

	if in.MessageType == "" {
		in.MessageType = models.MessageTypeText
	}
	if err := l.validate.Struct(in); err != nil {
		return models.Message{}, validationError(err)
	}
	if err := l.guard.RequireMembership(ctx, in.ChatID, in.SenderID, "send"); err != nil {
		return models.Message{}, err
	}

	msg, err := l.messages.CreateMessage(ctx, in.ChatID, in.SenderID, in.Content, in.MessageType)
	if err != nil {
		return models.Message{}, fmt.Errorf("create message: %w", err)
	}

	observability.IncMessageSent(string(msg.MessageType))
	l.log.Debug("message appended", "chat_id", msg.ChatID, "message_id", msg.ID, "sender_id", msg.SenderID)
	l.events.emit(ctx, EventMessageSent, messageSentPayload{
		MessageID:   msg.ID,
		ChatID:      msg.ChatID,
		SenderID:    msg.SenderID,
		MessageType: string(msg.MessageType),
	})
	return msg, nil
}

// List returns one page of a chat's history, newest first. Unknown chats yield an empty page.
func (l *MessageLedger) List(ctx context.Context, chatID, limit, offset int) (_ []models.MessageWithSender, err error) {
	ctx, span := tracer.Start(ctx, "MessageLedger.List", trace.WithAttributes(
		attribute.Int("chat.id", chatID),
		attribute.Int("page.limit", limit),
		attribute.Int("page.offset", offset),
	))
	defer func() { endSpan(span, err) }()

	if err := l.validate.Struct(page{Limit: limit, Offset: offset}); err != nil {
		return nil, validationError(err)
	}

	msgs, err := l.messages.ListMessages(ctx, chatID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	if msgs == nil {
		msgs = []models.MessageWithSender{}
	}
	return msgs, nil
}
