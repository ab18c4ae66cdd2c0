package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"messenger-service/internal/models"
	"messenger-service/internal/services"
)

type UserServiceMock struct {
	mock.Mock
}

func (m *UserServiceMock) CreateUser(ctx context.Context, in models.NewUser) (models.User, error) {
	args := m.Called(ctx, in)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserServiceMock) ListUsers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	var users []models.User
	if val := args.Get(0); val != nil {
		users = val.([]models.User)
	}
	return users, args.Error(1)
}

type ChatServiceMock struct {
	mock.Mock
}

func (m *ChatServiceMock) CreateChat(ctx context.Context, in models.NewChat) (models.Chat, error) {
	args := m.Called(ctx, in)
	var chat models.Chat
	if val := args.Get(0); val != nil {
		chat = val.(models.Chat)
	}
	return chat, args.Error(1)
}

func (m *ChatServiceMock) JoinChat(ctx context.Context, chatID, userID int) (models.Participant, error) {
	args := m.Called(ctx, chatID, userID)
	var p models.Participant
	if val := args.Get(0); val != nil {
		p = val.(models.Participant)
	}
	return p, args.Error(1)
}

type ChatListerMock struct {
	mock.Mock
}

func (m *ChatListerMock) ListChatsForUser(ctx context.Context, userID int) ([]models.ChatSummary, error) {
	args := m.Called(ctx, userID)
	var chats []models.ChatSummary
	if val := args.Get(0); val != nil {
		chats = val.([]models.ChatSummary)
	}
	return chats, args.Error(1)
}

type MessageLedgerMock struct {
	mock.Mock
}

func (m *MessageLedgerMock) Append(ctx context.Context, in services.SendMessage) (models.Message, error) {
	args := m.Called(ctx, in)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageLedgerMock) List(ctx context.Context, chatID, limit, offset int) ([]models.MessageWithSender, error) {
	args := m.Called(ctx, chatID, limit, offset)
	var msgs []models.MessageWithSender
	if val := args.Get(0); val != nil {
		msgs = val.([]models.MessageWithSender)
	}
	return msgs, args.Error(1)
}

type ReadTrackerMock struct {
	mock.Mock
}

func (m *ReadTrackerMock) MarkRead(ctx context.Context, chatID, userID int) error {
	args := m.Called(ctx, chatID, userID)
	return args.Error(0)
}

func (m *ReadTrackerMock) UnreadCount(ctx context.Context, chatID, userID int) (int, error) {
	args := m.Called(ctx, chatID, userID)
	return args.Int(0), args.Error(1)
}
