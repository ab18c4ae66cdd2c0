package services

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"messenger-service/internal/repositories"
)

// ReadTracker keeps per-member read watermarks and derives unread counts from them.
type ReadTracker struct {
	participants repositories.ParticipantRepository
	messages     repositories.MessageRepository
	events       *Events
	log          *slog.Logger
}

func NewReadTracker(participants repositories.ParticipantRepository, messages repositories.MessageRepository, events *Events, log *slog.Logger) *ReadTracker {
	return &ReadTracker{participants: participants, messages: messages, events: events, log: log}
}

// MarkRead moves the member's watermark to now. Calls from non-members change nothing and succeed.
func (r *ReadTracker) MarkRead(ctx context.Context, chatID, userID int) (err error) {
	ctx, span := tracer.Start(ctx, "ReadTracker.MarkRead", trace.WithAttributes(
		attribute.Int("chat.id", chatID),
		attribute.Int("user.id", userID),
	))
	defer func() { endSpan(span, err) }()

	updated, err := r.participants.MarkRead(ctx, chatID, userID)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	if !updated {
		r.log.Debug("mark read ignored for non-member", "chat_id", chatID, "user_id", userID)
		return nil
	}
	r.events.emit(ctx, EventChatRead, chatReadPayload{ChatID: chatID, UserID: userID})
	return nil
}

// UnreadCount counts messages created after the member's watermark, or all of them
// when the member never marked the chat read.
func (r *ReadTracker) UnreadCount(ctx context.Context, chatID, userID int) (_ int, err error) {
	ctx, span := tracer.Start(ctx, "ReadTracker.UnreadCount", trace.WithAttributes(
		attribute.Int("chat.id", chatID),
		attribute.Int("user.id", userID),
	))
	defer func() { endSpan(span, err) }()

	activity, err := r.messages.ChatActivity(ctx, chatID, userID)
	if err != nil {
		return 0, fmt.Errorf("chat activity: %w", err)
	}
	return activity.UnreadCount, nil
}
