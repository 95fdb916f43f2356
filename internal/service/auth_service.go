package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pressroom/internal/auth"
	errs "pressroom/internal/errors"
	"pressroom/internal/model"
	"pressroom/internal/repository"
	"pressroom/internal/session"
)

// AuthService handles registration, login and logout.
type AuthService interface {
	Register(ctx context.Context, firstName, lastName, email, password string) (*model.User, error)
	Login(ctx context.Context, email, password string) (sessionToken string, user *model.User, err error)
	Logout(ctx context.Context, sessionToken string) error
	UpdateEmail(ctx context.Context, identityID uuid.UUID, email string) error
}

type authService struct {
	users      repository.UserRepository
	sessions   session.Store
	sessionTTL time.Duration
}

// NewAuthService creates a new authentication service.
func NewAuthService(users repository.UserRepository, sessions session.Store, sessionTTL time.Duration) AuthService {
	return &authService{
		users:      users,
		sessions:   sessions,
		sessionTTL: sessionTTL,
	}
}

// Register creates a new identity with a hashed password.
func (s *authService) Register(ctx context.Context, firstName, lastName, email, password string) (*model.User, error) {
	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, errs.ErrEmailTaken
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login verifies credentials and creates a session. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *authService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, errs.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("find user: %w", err)
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return "", nil, errs.ErrInvalidCredentials
	}

	token, err := s.sessions.Create(ctx, user.ID, s.sessionTTL)
	if err != nil {
		return "", nil, fmt.Errorf("create session: %w", err)
	}
	return token, user, nil
}

// Logout destroys the session.
func (s *authService) Logout(ctx context.Context, sessionToken string) error {
	return s.sessions.Destroy(ctx, sessionToken)
}

// UpdateEmail changes the email of an identity.
func (s *authService) UpdateEmail(ctx context.Context, identityID uuid.UUID, email string) error {
	user, err := s.users.FindByID(ctx, identityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.ErrNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}
	if user.Email == email {
		return nil
	}
	user.Email = email
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}
