package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	apperrors "blogdesk/internal/errors"
	"blogdesk/internal/events"
	"blogdesk/internal/model"
	"blogdesk/internal/repository"
)

// UserService exposes user administration.
type UserService interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateRole(ctx context.Context, actorID, id string, role model.Role) (*model.User, error)
}

type userService struct {
	repo   repository.UserRepository
	events events.Publisher
	logger echo.Logger
}

// NewUserService builds a UserService.
func NewUserService(repo repository.UserRepository, publisher events.Publisher, logger echo.Logger) UserService {
	return &userService{repo: repo, events: publisher, logger: logger}
}

func (s *userService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}

// UpdateRole changes a user's role. The change reaches that user's session at their next login.
func (s *userService) UpdateRole(ctx context.Context, actorID, id string, role model.Role) (*model.User, error) {
	if !model.ValidID(id) {
		return nil, apperrors.Validation("Invalid user ID")
	}
	if !role.Valid() {
		return nil, apperrors.Validation("Invalid role. Must be 'admin' or 'user'")
	}

	user, err := s.repo.UpdateRole(ctx, id, role)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("update role: %w", err)
	}

	s.logger.Infoj(log.JSON{"action": "role_updated", "user_id": id, "actor_id": actorID, "role": role})
	s.events.Publish(ctx, events.New(events.UserRoleUpdated, id, actorID, map[string]model.Role{"role": role}))
	return user, nil
}
