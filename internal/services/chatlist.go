package services

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"messenger-service/internal/models"
	"messenger-service/internal/repositories"
)

// ChatListAggregator builds a user's chat list ordered by activity.
type ChatListAggregator struct {
	chats    repositories.ChatRepository
	messages repositories.MessageRepository
	log      *slog.Logger
}

func NewChatListAggregator(chats repositories.ChatRepository, messages repositories.MessageRepository, log *slog.Logger) *ChatListAggregator {
	return &ChatListAggregator{chats: chats, messages: messages, log: log}
}

// ListChatsForUser returns every chat the user belongs to with participants, last
// message and unread count. Latest activity comes first; ties go to the higher chat id.
func (a *ChatListAggregator) ListChatsForUser(ctx context.Context, userID int) (_ []models.ChatSummary, err error) {
	ctx, span := tracer.Start(ctx, "ChatListAggregator.ListChatsForUser", trace.WithAttributes(
		attribute.Int("user.id", userID),
	))
	defer func() { endSpan(span, err) }()

	chats, err := a.chats.ListChatsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}

	summaries := make([]models.ChatSummary, 0, len(chats))
	for _, chat := range chats {
		participants, err := a.chats.ListParticipants(ctx, chat.ID)
		if err != nil {
			return nil, fmt.Errorf("list participants of chat %d: %w", chat.ID, err)
		}
		activity, err := a.messages.ChatActivity(ctx, chat.ID, userID)
		if err != nil {
			return nil, fmt.Errorf("activity of chat %d: %w", chat.ID, err)
		}
		if participants == nil {
			participants = []models.User{}
		}
		summaries = append(summaries, models.ChatSummary{
			Chat:         chat.Chat,
			Participants: participants,
			LastMessage:  activity.LastMessage,
			UnreadCount:  activity.UnreadCount,
		})
	}

	sortByActivity(summaries)
	span.SetAttributes(attribute.Int("chats.count", len(summaries)))
	return summaries, nil
}

func sortByActivity(summaries []models.ChatSummary) {
	slices.SortStableFunc(summaries, func(a, b models.ChatSummary) int {
		if c := b.ActivityAt().Compare(a.ActivityAt()); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
}
