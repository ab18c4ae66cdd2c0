package observability

import (
	"context"
	"time"
)

type requestIDKey struct{}

// EventEnvelope wraps every domain event published on the bus.
type EventEnvelope struct {
	EventType  string      `json:"event_type"`
	EventName  string      `json:"event_name"`
	OccurredAt string      `json:"occurred_at"`
	RequestID  string      `json:"request_id,omitempty"`
	Payload    interface{} `json:"payload"`
}

// NewEventEnvelope stamps a domain event with the current time and the request id carried by ctx.
func NewEventEnvelope(ctx context.Context, name string, payload interface{}) EventEnvelope {
	return EventEnvelope{
		EventType:  "domain_event",
		EventName:  name,
		OccurredAt: time.Now().UTC().Format(time.RFC3339Nano),
		RequestID:  RequestIDFromContext(ctx),
		Payload:    payload,
	}
}

// WithRequestID stores the request id so layers below the transport can tag their output.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}
