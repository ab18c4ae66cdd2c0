package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"messenger-service/internal/apperrors"
	"messenger-service/internal/models"
	"messenger-service/internal/observability"
	"messenger-service/internal/repositories"
)

// ChatService creates chats and admits users into group chats.
type ChatService struct {
	chats        repositories.ChatRepository
	participants repositories.ParticipantRepository
	guard        *MembershipGuard
	events       *Events
	validate     *validator.Validate
	log          *slog.Logger
}

func NewChatService(
	chats repositories.ChatRepository,
	participants repositories.ParticipantRepository,
	guard *MembershipGuard,
	events *Events,
	log *slog.Logger,
) *ChatService {
	return &ChatService{
		chats:        chats,
		participants: participants,
		guard:        guard,
		events:       events,
		validate:     newValidator(),
		log:          log,
	}
}

// CreateChat stores the chat with its initial participants. The caller is not
// added implicitly; repeated ids count once.
func (s *ChatService) CreateChat(ctx context.Context, in models.NewChat) (_ models.Chat, err error) {
	ctx, span := tracer.Start(ctx, "ChatService.CreateChat", trace.WithAttributes(
		attribute.Bool("chat.is_group", in.IsGroup),
		attribute.Int("chat.participants", len(in.ParticipantIDs)),
	))
	defer func() { endSpan(span, err) }()

	if err := s.validate.Struct(in); err != nil {
		return models.Chat{}, validationError(err)
	}
	if !in.IsGroup && in.Name != nil {
		return models.Chat{}, apperrors.Validation("name must be empty for one-on-one chats")
	}
	in.ParticipantIDs = lo.Uniq(in.ParticipantIDs)

	chat, err := s.chats.CreateChat(ctx, in)
	if err != nil {
		return models.Chat{}, fmt.Errorf("create chat: %w", err)
	}

	observability.IncChatCreated(chat.IsGroup)
	s.log.Info("chat created", "chat_id", chat.ID, "is_group", chat.IsGroup, "participants", len(in.ParticipantIDs))
	s.events.emit(ctx, EventChatCreated, chatCreatedPayload{
		ChatID:         chat.ID,
		IsGroup:        chat.IsGroup,
		ParticipantIDs: in.ParticipantIDs,
	})
	return chat, nil
}

// JoinChat adds userID to a group chat. Checks run in order: chat exists,
// chat is a group, user is not yet a member.
func (s *ChatService) JoinChat(ctx context.Context, chatID, userID int) (_ models.Participant, err error) {
	ctx, span := tracer.Start(ctx, "ChatService.JoinChat", trace.WithAttributes(
		attribute.Int("chat.id", chatID),
		attribute.Int("user.id", userID),
	))
	defer func() { endSpan(span, err) }()

	if _, err := s.guard.RequireGroupChat(ctx, chatID); err != nil {
		return models.Participant{}, err
	}
	member, err := s.guard.IsMember(ctx, chatID, userID)
	if err != nil {
		return models.Participant{}, err
	}
	if member {
		return models.Participant{}, apperrors.ErrAlreadyMember
	}

	p, err := s.participants.AddParticipant(ctx, chatID, userID)
	if err != nil {
		return models.Participant{}, fmt.Errorf("add participant: %w", err)
	}

	observability.IncMemberJoined()
	s.log.Info("user joined chat", "chat_id", chatID, "user_id", userID)
	s.events.emit(ctx, EventMemberJoined, memberJoinedPayload{ChatID: chatID, UserID: userID})
	return p, nil
}
