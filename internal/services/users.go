package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"

	"messenger-service/internal/models"
	"messenger-service/internal/repositories"
)

// UserService registers and lists users.
type UserService struct {
	users    repositories.UserRepository
	validate *validator.Validate
	log      *slog.Logger
}

func NewUserService(users repositories.UserRepository, log *slog.Logger) *UserService {
	return &UserService{users: users, validate: newValidator(), log: log}
}

// CreateUser validates and stores a new user. A taken username is reported before a taken email.
func (s *UserService) CreateUser(ctx context.Context, in models.NewUser) (_ models.User, err error) {
	ctx, span := tracer.Start(ctx, "UserService.CreateUser")
	defer func() { endSpan(span, err) }()

	if err := s.validate.Struct(in); err != nil {
		return models.User{}, validationError(err)
	}

	user, err := s.users.CreateUser(ctx, in)
	if err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	span.SetAttributes(attribute.Int("user.id", user.ID))
	s.log.Info("user created", "user_id", user.ID, "username", user.Username)
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context) (_ []models.User, err error) {
	ctx, span := tracer.Start(ctx, "UserService.ListUsers")
	defer func() { endSpan(span, err) }()

	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}
