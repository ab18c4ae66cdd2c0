package services_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messenger-service/internal/embedded"
	"messenger-service/internal/mocks"
	"messenger-service/internal/models"
	"messenger-service/internal/services"
)

type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type testEnv struct {
	publisher *mocks.PublisherMock
	users     *services.UserService
	chats     *services.ChatService
	guard     *services.MembershipGuard
	ledger    *services.MessageLedger
	reads     *services.ReadTracker
	list      *services.ChatListAggregator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	clock := &stepClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	return newTestEnvWith(t, embedded.WithClock(clock.Now))
}

// newTestEnvWith builds the services on a store using the given options, the wall clock when none are set.
func newTestEnvWith(t *testing.T, opts ...embedded.Option) *testEnv {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	store, err := embedded.New(db, log, opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
		_ = db.Close()
	})

	repos := store.Repositories()
	publisher := new(mocks.PublisherMock)
	publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	events := services.NewEvents(publisher, "test", log)
	guard := services.NewMembershipGuard(repos.Chats, repos.Participants, log)

	return &testEnv{
		publisher: publisher,
		users:     services.NewUserService(repos.Users, log),
		chats:     services.NewChatService(repos.Chats, repos.Participants, guard, events, log),
		guard:     guard,
		ledger:    services.NewMessageLedger(guard, repos.Messages, events, log),
		reads:     services.NewReadTracker(repos.Participants, repos.Messages, events, log),
		list:      services.NewChatListAggregator(repos.Chats, repos.Messages, log),
	}
}

func (e *testEnv) createUsers(t *testing.T, names ...string) []models.User {
	t.Helper()
	users := make([]models.User, 0, len(names))
	for _, name := range names {
		u, err := e.users.CreateUser(context.Background(), models.NewUser{Username: name, Email: name + "@example.com"})
		require.NoError(t, err)
		users = append(users, u)
	}
	return users
}

func (e *testEnv) createGroup(t *testing.T, name string, members ...models.User) models.Chat {
	t.Helper()
	ids := make([]int, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	chat, err := e.chats.CreateChat(context.Background(), models.NewChat{Name: &name, IsGroup: true, ParticipantIDs: ids})
	require.NoError(t, err)
	return chat
}

func (e *testEnv) send(t *testing.T, chatID int, sender models.User, content string) models.Message {
	t.Helper()
	msg, err := e.ledger.Append(context.Background(), services.SendMessage{ChatID: chatID, SenderID: sender.ID, Content: content})
	require.NoError(t, err)
	return msg
}
