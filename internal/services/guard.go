package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"messenger-service/internal/apperrors"
	"messenger-service/internal/models"
	"messenger-service/internal/observability"
	"messenger-service/internal/repositories"
)

// MembershipGuard decides whether a user may act on a chat.
type MembershipGuard struct {
	chats        repositories.ChatRepository
	participants repositories.ParticipantRepository
	log          *slog.Logger
}

func NewMembershipGuard(chats repositories.ChatRepository, participants repositories.ParticipantRepository, log *slog.Logger) *MembershipGuard {
	return &MembershipGuard{chats: chats, participants: participants, log: log}
}

// IsMember reports whether a membership exists. A missing chat is simply not joined.
func (g *MembershipGuard) IsMember(ctx context.Context, chatID, userID int) (bool, error) {
	member, err := g.participants.IsParticipant(ctx, chatID, userID)
	if err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return member, nil
}

// RequireMembership fails with apperrors.ErrNotAMember for non-members and unknown chats alike.
func (g *MembershipGuard) RequireMembership(ctx context.Context, chatID, userID int, action string) error {
	member, err := g.IsMember(ctx, chatID, userID)
	if err != nil {
		return err
	}
	if !member {
		observability.IncMembershipDenied(action)
		g.log.Info("membership denied", "action", action, "chat_id", chatID, "user_id", userID)
		return apperrors.ErrNotAMember
	}
	return nil
}

// RequireGroupChat loads the chat and fails unless it is a group chat.
func (g *MembershipGuard) RequireGroupChat(ctx context.Context, chatID int) (models.Chat, error) {
	chat, err := g.chats.GetChat(ctx, chatID)
	if errors.Is(err, apperrors.ErrChatNotFound) {
		return models.Chat{}, err
	}
	if err != nil {
		return models.Chat{}, fmt.Errorf("load chat: %w", err)
	}
	if !chat.IsGroup {
		return models.Chat{}, apperrors.ErrNotAGroupChat
	}
	return chat, nil
}
