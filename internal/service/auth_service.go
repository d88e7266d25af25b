package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"blogdesk/internal/auth"
	apperrors "blogdesk/internal/errors"
	"blogdesk/internal/events"
	"blogdesk/internal/model"
	"blogdesk/internal/repository"
)

// AuthService handles authentication operations.
type AuthService interface {
	Signup(ctx context.Context, name, email, password string) (*model.User, error)
	Login(ctx context.Context, email, password string) (token string, claims *auth.Claims, err error)
}

type authService struct {
	users      repository.UserRepository
	hasher     auth.PasswordHasher
	jwtService *auth.JWTService
	events     events.Publisher
	logger     echo.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(users repository.UserRepository, hasher auth.PasswordHasher, jwtService *auth.JWTService, publisher events.Publisher, logger echo.Logger) AuthService {
	return &authService{
		users:      users,
		hasher:     hasher,
		jwtService: jwtService,
		events:     publisher,
		logger:     logger,
	}
}

// NormalizeEmail lower-cases and trims an email so lookups are case insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates a user with role user and a hashed password.
func (s *authService) Signup(ctx context.Context, name, email, password string) (*model.User, error) {
	email = NormalizeEmail(email)
	name = strings.TrimSpace(name)
	if len(password) > auth.MaxPasswordLength {
		return nil, apperrors.Validation("Password must be at most 72 characters")
	}

	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return nil, apperrors.ErrEmailTaken
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:           model.NewID(),
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
		Role:         model.RoleUser,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		// a concurrent signup won the unique index
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Infoj(log.JSON{"action": "signup", "user_id": user.ID})
	s.events.Publish(ctx, events.New(events.UserSignedUp, user.ID, user.ID, user.Ref()))
	return user, nil
}

// Login verifies credentials and issues a session token.
// Unknown emails and wrong passwords return the same error.
func (s *authService) Login(ctx context.Context, email, password string) (string, *auth.Claims, error) {
	user, err := s.users.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.hasher.Burn(password)
			s.logger.Infoj(log.JSON{"action": "login_rejected"})
			return "", nil, apperrors.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("find user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.logger.Infoj(log.JSON{"action": "login_rejected", "user_id": user.ID})
		return "", nil, apperrors.ErrInvalidCredentials
	}

	token, claims, err := s.jwtService.IssueSession(user)
	if err != nil {
		return "", nil, fmt.Errorf("issue session: %w", err)
	}

	s.logger.Infoj(log.JSON{"action": "login", "user_id": user.ID, "role": user.Role})
	return token, claims, nil
}
