package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messenger-service/internal/apperrors"
	"messenger-service/internal/mocks"
	"messenger-service/internal/models"
	"messenger-service/internal/services"
	"messenger-service/internal/telemetry"
)

type fixture struct {
	users     *mocks.UserServiceMock
	chats     *mocks.ChatServiceMock
	lister    *mocks.ChatListerMock
	ledger    *mocks.MessageLedgerMock
	reads     *mocks.ReadTrackerMock
	publisher *mocks.PublisherMock
	router    *gin.Engine
}

func setupRouter() *fixture {
	gin.SetMode(gin.TestMode)
	f := &fixture{
		users:     new(mocks.UserServiceMock),
		chats:     new(mocks.ChatServiceMock),
		lister:    new(mocks.ChatListerMock),
		ledger:    new(mocks.MessageLedgerMock),
		reads:     new(mocks.ReadTrackerMock),
		publisher: new(mocks.PublisherMock),
	}
	audit := telemetry.NewAuditEmitter(f.publisher, "audit.messenger", "messenger-service", "test", logs.GetLoggerFromString("ERROR"))

	r := gin.New()
	RegisterUserRoutes(r, NewUserHandler(f.users))
	authed := r.Group("/")
	authed.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	RegisterChatRoutes(authed, NewChatHandler(f.chats, f.lister, audit), NewMessageHandler(f.ledger, f.reads, audit))
	f.router = r
	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestErrorStatus(t *testing.T) {
	cases := map[error]int{
		apperrors.Validation("bad"):     http.StatusBadRequest,
		apperrors.ErrNotAMember:         http.StatusForbidden,
		apperrors.ErrChatNotFound:       http.StatusNotFound,
		apperrors.ErrUserNotFound:       http.StatusNotFound,
		apperrors.ErrDuplicateUsername:  http.StatusConflict,
		apperrors.ErrDuplicateEmail:     http.StatusConflict,
		apperrors.ErrAlreadyMember:      http.StatusConflict,
		apperrors.ErrNotAGroupChat:      http.StatusConflict,
		apperrors.ErrUnknownParticipant: http.StatusUnprocessableEntity,
		assert.AnError:                  http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, errorStatus(err), err.Error())
	}
}

func TestCreateUserSuccess(t *testing.T) {
	f := setupRouter()
	f.users.On("CreateUser", mock.Anything, models.NewUser{Username: "alice", Email: "alice@example.com"}).
		Return(models.User{ID: 1, Username: "alice", Email: "alice@example.com"}, nil).Once()

	rec := f.do(http.MethodPost, "/users", `{"username":"alice","email":"alice@example.com"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "alice", decode(t, rec)["username"])
	f.users.AssertExpectations(t)
}

func TestCreateUserDuplicate(t *testing.T) {
	f := setupRouter()
	f.users.On("CreateUser", mock.Anything, mock.Anything).Return(nil, apperrors.ErrDuplicateEmail).Once()

	rec := f.do(http.MethodPost, "/users", `{"username":"alice","email":"alice@example.com"}`)

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, apperrors.ErrDuplicateEmail.Error(), decode(t, rec)["error"])
}

func TestCreateUserBadBody(t *testing.T) {
	f := setupRouter()

	rec := f.do(http.MethodPost, "/users", `{"username":"alice"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	f.users.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestListUsersHidesInternalErrors(t *testing.T) {
	f := setupRouter()
	f.users.On("ListUsers", mock.Anything).Return(nil, assert.AnError).Once()

	rec := f.do(http.MethodGet, "/users", "")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "failed to load users", decode(t, rec)["error"])
}

func TestCreateChatUnknownParticipant(t *testing.T) {
	f := setupRouter()
	f.chats.On("CreateChat", mock.Anything, models.NewChat{IsGroup: true, ParticipantIDs: []int{1, 99}}).
		Return(nil, apperrors.ErrUnknownParticipant).Once()

	rec := f.do(http.MethodPost, "/chats", `{"is_group":true,"participant_ids":[1,99]}`)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	f.chats.AssertExpectations(t)
}

func TestCreateChatSuccess(t *testing.T) {
	f := setupRouter()
	name := "team"
	f.chats.On("CreateChat", mock.Anything, models.NewChat{Name: &name, IsGroup: true, ParticipantIDs: []int{1, 2}}).
		Return(models.Chat{ID: 5, Name: &name, IsGroup: true}, nil).Once()

	rec := f.do(http.MethodPost, "/chats", `{"name":"team","is_group":true,"participant_ids":[1,2]}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.EqualValues(t, 5, decode(t, rec)["id"])
}

func TestListChats(t *testing.T) {
	f := setupRouter()
	now := time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)
	f.lister.On("ListChatsForUser", mock.Anything, 1).Return([]models.ChatSummary{
		{Chat: models.Chat{ID: 3, CreatedAt: now}, Participants: []models.User{{ID: 1}}, UnreadCount: 2},
	}, nil).Once()

	rec := f.do(http.MethodGet, "/chats", "")

	require.Equal(t, http.StatusOK, rec.Code)
	chats := decode(t, rec)["chats"].([]any)
	require.Len(t, chats, 1)
	assert.EqualValues(t, 2, chats[0].(map[string]any)["unread_count"])
	assert.Nil(t, chats[0].(map[string]any)["last_message"])
	f.lister.AssertExpectations(t)
}

func TestJoinChatDirectChatIsAudited(t *testing.T) {
	f := setupRouter()
	f.chats.On("JoinChat", mock.Anything, 7, 1).Return(nil, apperrors.ErrNotAGroupChat).Once()
	f.publisher.On("Publish", mock.Anything, "audit.messenger", mock.AnythingOfType("telemetry.AuditEnvelope")).Return(nil).Once()

	rec := f.do(http.MethodPost, "/chats/7/join", "")

	require.Equal(t, http.StatusConflict, rec.Code)
	f.publisher.AssertExpectations(t)
	envelope := f.publisher.Calls[0].Arguments.Get(2).(telemetry.AuditEnvelope)
	require.NotNil(t, envelope.ChatID)
	assert.Equal(t, 7, *envelope.ChatID)
}

func TestJoinChatSuccess(t *testing.T) {
	f := setupRouter()
	f.chats.On("JoinChat", mock.Anything, 7, 1).Return(models.Participant{ID: 1, ChatID: 7, UserID: 1}, nil).Once()

	rec := f.do(http.MethodPost, "/chats/7/join", "")

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.EqualValues(t, 7, decode(t, rec)["chat_id"])
}

func TestJoinChatInvalidID(t *testing.T) {
	f := setupRouter()

	rec := f.do(http.MethodPost, "/chats/abc/join", "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	f.chats.AssertNotCalled(t, "JoinChat", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetChatMessagesPaging(t *testing.T) {
	f := setupRouter()
	f.ledger.On("List", mock.Anything, 4, services.DefaultPageLimit, 0).Return([]models.MessageWithSender{}, nil).Once()
	f.ledger.On("List", mock.Anything, 4, 3, 2).Return([]models.MessageWithSender{{Message: models.Message{ID: 9}}}, nil).Once()

	rec := f.do(http.MethodGet, "/chats/4/messages", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode(t, rec)["messages"])

	rec = f.do(http.MethodGet, "/chats/4/messages?limit=3&offset=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["messages"], 1)

	f.ledger.AssertExpectations(t)
}

func TestGetChatMessagesBadPaging(t *testing.T) {
	f := setupRouter()
	f.ledger.On("List", mock.Anything, 4, 500, 0).Return(nil, apperrors.Validation("limit must satisfy max=100")).Once()

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/chats/4/messages?limit=x", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/chats/4/messages?offset=", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/chats/4/messages?limit=500", "").Code)
	f.ledger.AssertExpectations(t)
}

func TestPostChatMessage(t *testing.T) {
	f := setupRouter()
	in := services.SendMessage{ChatID: 4, SenderID: 1, Content: "hi", MessageType: models.MessageTypeImage}
	f.ledger.On("Append", mock.Anything, in).Return(models.Message{ID: 11, ChatID: 4, SenderID: 1, Content: "hi", MessageType: models.MessageTypeImage}, nil).Once()

	rec := f.do(http.MethodPost, "/chats/4/messages", `{"content":"hi","message_type":"image"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "image", decode(t, rec)["message_type"])
	f.ledger.AssertExpectations(t)
}

func TestPostChatMessageNotMember(t *testing.T) {
	f := setupRouter()
	f.ledger.On("Append", mock.Anything, mock.Anything).Return(nil, apperrors.ErrNotAMember).Once()
	f.publisher.On("Publish", mock.Anything, "audit.messenger", mock.Anything).Return(nil).Once()

	rec := f.do(http.MethodPost, "/chats/4/messages", `{"content":"hi"}`)

	require.Equal(t, http.StatusForbidden, rec.Code)
	f.publisher.AssertExpectations(t)
}

func TestPostChatMessageRequiresContent(t *testing.T) {
	f := setupRouter()

	rec := f.do(http.MethodPost, "/chats/4/messages", `{"content":""}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	f.ledger.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestMarkReadAndUnreadCount(t *testing.T) {
	f := setupRouter()
	f.reads.On("MarkRead", mock.Anything, 4, 1).Return(nil).Once()
	f.reads.On("UnreadCount", mock.Anything, 4, 1).Return(3, nil).Once()

	rec := f.do(http.MethodPost, "/chats/4/read", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(http.MethodGet, "/chats/4/unread", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"chat_id":4,"unread_count":3}`, rec.Body.String())
	f.reads.AssertExpectations(t)
}

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/healthz", Health(func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","timestamp":"2024-06-01T12:00:00Z"}`, rec.Body.String())
}

func TestDebugRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	RegisterDebugRoutes(r, nil, false)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/audit-test", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	r = gin.New()
	RegisterDebugRoutes(r, nil, true)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/audit-test", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDebugAuditEmits(t *testing.T) {
	gin.SetMode(gin.TestMode)
	publisher := new(mocks.PublisherMock)
	emitter := telemetry.NewAuditEmitter(publisher, "audit.messenger", "messenger-service", "test", logs.GetLoggerFromString("ERROR"))
	publisher.On("Publish", mock.Anything, "audit.messenger", mock.AnythingOfType("telemetry.AuditEnvelope")).Return(nil).Once()

	r := gin.New()
	RegisterDebugRoutes(r, emitter, true)

	req := httptest.NewRequest(http.MethodGet, "/debug/audit-test?level=warn&text=ping", nil)
	req.Header.Set("X-Request-ID", "dbg-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","request_id":"dbg-1","level":"WARN"}`, rec.Body.String())
	envelope := publisher.Calls[0].Arguments.Get(2).(telemetry.AuditEnvelope)
	assert.Equal(t, "ping", envelope.Payload.Text)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/audit-test?level=loud", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	publisher.AssertExpectations(t)
}
