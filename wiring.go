package main

import (
	"context"
	"fmt"
	"log/slog"

	"messenger-service/internal/config"
	"messenger-service/internal/db"
	"messenger-service/internal/embedded"
	"messenger-service/internal/natsbus"
	"messenger-service/internal/rabbitmq"
	"messenger-service/internal/repositories"
)

type eventPublisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
	Close() error
}

// openStore returns the repositories of the configured storage engine and a func releasing it.
func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (repositories.Store, func(), error) {
	switch cfg.StorageDriver {
	case config.StorageBadger:
		bdb, err := db.OpenBadger(cfg.BadgerPath)
		if err != nil {
			return repositories.Store{}, nil, fmt.Errorf("open badger: %w", err)
		}
		store, err := embedded.New(bdb, log)
		if err != nil {
			_ = bdb.Close()
			return repositories.Store{}, nil, fmt.Errorf("init embedded store: %w", err)
		}
		log.Info("storage ready", "driver", cfg.StorageDriver, "path", cfg.BadgerPath)
		return store.Repositories(), func() {
			_ = store.Close()
			_ = bdb.Close()
		}, nil
	default:
		database, err := db.Connect(ctx, cfg.DatabaseDSN, log)
		if err != nil {
			return repositories.Store{}, nil, fmt.Errorf("connect to db: %w", err)
		}
		log.Info("storage ready", "driver", cfg.StorageDriver)
		return repositories.Store{
			Users:        repositories.NewUserRepo(database),
			Chats:        repositories.NewChatRepo(database),
			Participants: repositories.NewParticipantRepo(database),
			Messages:     repositories.NewMessageRepo(database),
		}, func() { _ = database.Close() }, nil
	}
}

// openPublisher picks the event bus. An unreachable broker degrades to a noop publisher
// so the service keeps serving without events.
func openPublisher(ctx context.Context, cfg config.Config, log *slog.Logger) (eventPublisher, string) {
	switch cfg.EventBus {
	case config.BusNATS:
		p, err := natsbus.NewPublisher(ctx, cfg.NATSURL, cfg.NATSStream, cfg.NATSSubjectPrefix, log)
		if err != nil {
			log.Warn("nats disabled, using noop", "reason", err)
			return rabbitmq.NewNoopPublisher(err.Error(), log), "noop"
		}
		return p, config.BusNATS
	case config.BusAMQP:
		p := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, log)
		return p, rabbitmq.PublisherMode(p)
	default:
		return rabbitmq.NewNoopPublisher("event bus disabled", log), "noop"
	}
}
