package services

import (
	"context"
	"log/slog"

	"messenger-service/internal/observability"
)

// Routing keys of the domain events published by the services.
const (
	EventChatCreated  = "chat.created"
	EventMemberJoined = "chat.member_joined"
	EventMessageSent  = "message.sent"
	EventChatRead     = "chat.read"
)

// Publisher delivers domain events to a message bus.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
}

// Events publishes domain events. A nil *Events drops everything.
type Events struct {
	publisher Publisher
	bus       string
	log       *slog.Logger
}

func NewEvents(publisher Publisher, bus string, log *slog.Logger) *Events {
	return &Events{publisher: publisher, bus: bus, log: log}
}

// emit never fails the caller; broken buses are logged and counted.
func (e *Events) emit(ctx context.Context, routingKey string, payload any) {
	if e == nil || e.publisher == nil {
		return
	}
	if err := e.publisher.Publish(ctx, routingKey, observability.NewEventEnvelope(ctx, routingKey, payload)); err != nil {
		observability.IncEventPublishError(e.bus)
		e.log.Warn("event publish failed", "routing_key", routingKey, "bus", e.bus, "error", err)
	}
}

type chatCreatedPayload struct {
	ChatID         int   `json:"chat_id"`
	IsGroup        bool  `json:"is_group"`
	ParticipantIDs []int `json:"participant_ids"`
}

type memberJoinedPayload struct {
	ChatID int `json:"chat_id"`
	UserID int `json:"user_id"`
}

type messageSentPayload struct {
	MessageID   int    `json:"message_id"`
	ChatID      int    `json:"chat_id"`
	SenderID    int    `json:"sender_id"`
	MessageType string `json:"message_type"`
}

type chatReadPayload struct {
	ChatID int `json:"chat_id"`
	UserID int `json:"user_id"`
}
