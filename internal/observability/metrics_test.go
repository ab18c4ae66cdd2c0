package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMetricsMiddlewareCountsRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(HTTPMetricsMiddleware())
	r.GET("/chats/:chat_id/messages", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/chats/:chat_id/messages", "200"))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chats/5/messages", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/chats/:chat_id/messages", "200"))
	assert.Equal(t, before+1, after)
}

func TestDomainCounters(t *testing.T) {
	before := testutil.ToFloat64(chatsCreatedTotal.WithLabelValues("group"))
	IncChatCreated(true)
	assert.Equal(t, before+1, testutil.ToFloat64(chatsCreatedTotal.WithLabelValues("group")))

	before = testutil.ToFloat64(messagesSentTotal.WithLabelValues("image"))
	IncMessageSent("image")
	assert.Equal(t, before+1, testutil.ToFloat64(messagesSentTotal.WithLabelValues("image")))
}

func TestSplitFullMethod(t *testing.T) {
	service, method := splitFullMethod("/grpc.health.v1.Health/Check")
	assert.Equal(t, "grpc.health.v1.Health", service)
	assert.Equal(t, "Check", method)

	service, method = splitFullMethod("bogus")
	assert.Equal(t, "unknown", service)
	assert.Equal(t, "unknown", method)
}

func TestEventEnvelopeCarriesRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	env := NewEventEnvelope(ctx, "message.sent", map[string]int{"chat_id": 3})

	assert.Equal(t, "domain_event", env.EventType)
	assert.Equal(t, "message.sent", env.EventName)
	assert.Equal(t, "req-1", env.RequestID)
	assert.NotEmpty(t, env.OccurredAt)
	assert.Empty(t, RequestIDFromContext(context.Background()))
}

func TestIPFromRequestPrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.1, 10.0.0.2")
	assert.Equal(t, "10.0.0.1", IPFromRequest(req))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.5:4000"
	assert.Equal(t, "192.168.1.5", IPFromRequest(req))
}
