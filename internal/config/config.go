package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	StoragePostgres = "postgres"
	StorageBadger   = "badger"

	BusAMQP = "amqp"
	BusNATS = "nats"
	BusNone = "none"
)

// Config is read from the environment, optionally seeded from a .env file.
type Config struct {
	Port            string        `env:"PORT,default=8083" validate:"required,numeric"`
	GRPCPort        string        `env:"GRPC_PORT,default=9083" validate:"required,numeric"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s" validate:"gt=0"`

	StorageDriver string `env:"STORAGE_DRIVER,default=postgres" validate:"oneof=postgres badger"`
	DatabaseDSN   string `env:"DATABASE_DSN" validate:"required_if=StorageDriver postgres"`
	BadgerPath    string `env:"BADGER_PATH,default=./data/badger" validate:"required_if=StorageDriver badger"`

	EventBus          string `env:"EVENT_BUS,default=amqp" validate:"oneof=amqp nats none"`
	AMQPURL           string `env:"AMQP_URL"`
	AMQPExchange      string `env:"AMQP_EXCHANGE,default=messenger.events" validate:"required_if=EventBus amqp"`
	NATSURL           string `env:"NATS_URL,default=nats://localhost:4222" validate:"required_if=EventBus nats"`
	NATSStream        string `env:"NATS_STREAM,default=MESSENGER" validate:"required_if=EventBus nats"`
	NATSSubjectPrefix string `env:"NATS_SUBJECT_PREFIX,default=messenger"`
	AuditRoutingKey   string `env:"AUDIT_ROUTING_KEY,default=audit.messenger"`

	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName  string `env:"SERVICE_NAME,default=messenger-service"`
	Environment  string `env:"ENVIRONMENT,default=development"`
	LogLevel     string `env:"LOG_LEVEL,default=INFO" validate:"oneof=DEBUG INFO WARN ERROR"`
	DebugRoutes  bool   `env:"DEBUG_ROUTES,default=false"`
}

// Load reads files (default ".env") when present, then the environment, then validates.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}

	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
