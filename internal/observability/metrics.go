package observability

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messenger_http_requests_total",
			Help: "Total number of HTTP requests processed by the messenger service.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "messenger_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	grpcServerHandledTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grpc_server_handled_total",
			Help: "Total number of gRPC requests handled by the server.",
		},
		[]string{"grpc_service", "grpc_method", "grpc_code"},
	)
	messagesSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messenger_messages_sent_total",
			Help: "Total number of messages appended, by message type.",
		},
		[]string{"type"},
	)
	chatsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messenger_chats_created_total",
			Help: "Total number of chats created, by kind.",
		},
		[]string{"kind"},
	)
	membersJoinedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "messenger_chat_members_joined_total",
			Help: "Total number of users that joined a group chat.",
		},
	)
	membershipDeniedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messenger_membership_denied_total",
			Help: "Total number of chat actions rejected by the membership guard.",
		},
		[]string{"action"},
	)
	eventPublishErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messenger_event_publish_errors_total",
			Help: "Total number of domain event publish errors.",
		},
		[]string{"bus"},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		grpcServerHandledTotal,
		messagesSentTotal,
		chatsCreatedTotal,
		membersJoinedTotal,
		membershipDeniedTotal,
		eventPublishErrorsTotal,
	)
}

func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func GRPCServerMetricsUnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		resp, err := handler(ctx, req)
		statusInfo := status.Convert(err)
		service, method := splitFullMethod(info.FullMethod)
		grpcServerHandledTotal.WithLabelValues(service, method, statusInfo.Code().String()).Inc()
		return resp, err
	}
}

func splitFullMethod(fullMethod string) (string, string) {
	parts := strings.Split(fullMethod, "/")
	if len(parts) < 3 {
		return "unknown", "unknown"
	}
	return parts[1], parts[2]
}

func IncMessageSent(messageType string) {
	messagesSentTotal.WithLabelValues(messageType).Inc()
}

func IncChatCreated(isGroup bool) {
	kind := "direct"
	if isGroup {
		kind = "group"
	}
	chatsCreatedTotal.WithLabelValues(kind).Inc()
}

func IncMemberJoined() {
	membersJoinedTotal.Inc()
}

func IncMembershipDenied(action string) {
	membershipDeniedTotal.WithLabelValues(action).Inc()
}

func IncEventPublishError(bus string) {
	eventPublishErrorsTotal.WithLabelValues(bus).Inc()
}
