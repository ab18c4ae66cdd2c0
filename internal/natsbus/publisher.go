// Package natsbus publishes domain events to a NATS JetStream stream.
package natsbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"messenger-service/internal/observability"
)

const (
	connectTimeout = 5 * time.Second
	streamMaxAge   = 7 * 24 * time.Hour
)

// Publisher writes events to subjects under a common prefix of one stream.
type Publisher struct {
	nc            *nats.Conn
	js            jetstream.JetStream
	subjectPrefix string
	log           *slog.Logger
}

// NewPublisher connects to NATS and makes sure the stream exists.
func NewPublisher(ctx context.Context, url, stream, subjectPrefix string, log *slog.Logger) (*Publisher, error) {
	nc, err := nats.Connect(url, nats.Name("messenger-service"), nats.Timeout(connectTimeout))
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	existing, err := js.Stream(ctx, stream)
	if err != nil {
		log.Info("nats stream not found, creating", "stream", stream)
		_, err = js.CreateStream(ctx, jetstream.StreamConfig{
			Name:        stream,
			Description: "Messenger domain events",
			Subjects:    []string{subjectPrefix + ".>"},
			MaxAge:      streamMaxAge,
			Storage:     jetstream.FileStorage,
		})
		if err != nil {
			nc.Close()
			return nil, fmt.Errorf("create stream %q: %w", stream, err)
		}
	} else {
		log.Info("nats stream found", "stream", existing.CachedInfo().Config.Name)
	}

	return &Publisher{nc: nc, js: js, subjectPrefix: subjectPrefix, log: log}, nil
}

// Publish sends event as JSON on {prefix}.{routingKey}.
func (p *Publisher) Publish(ctx context.Context, routingKey string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := nats.NewMsg(subject(p.subjectPrefix, routingKey))
	msg.Data = data
	if requestID := observability.RequestIDFromContext(ctx); requestID != "" {
		msg.Header.Set("X-Request-ID", requestID)
	}

	ack, err := p.js.PublishMsg(ctx, msg)
	if err != nil {
		return fmt.Errorf("publish to %q: %w", msg.Subject, err)
	}
	p.log.Debug("nats event published", "subject", msg.Subject, "stream", ack.Stream, "seq", ack.Sequence)
	return nil
}

func (p *Publisher) Close() error {
	if p.nc != nil {
		return p.nc.Drain()
	}
	return nil
}

func subject(prefix, routingKey string) string {
	if prefix == "" {
		return routingKey
	}
	return prefix + "." + routingKey
}
