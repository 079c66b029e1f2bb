// Package identity registers users, checks their credentials and removes
// their accounts.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"finance-manager/internal/accounting"
	"finance-manager/internal/auth"
	"finance-manager/internal/interfaces"
	"finance-manager/internal/logging"
	"finance-manager/internal/models"
	"finance-manager/internal/storage"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrDuplicateUsername is returned by Register when the name is taken.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrInvalidCredentials covers both an unknown user and a wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// Service manages user credentials.
type Service struct {
	users  interfaces.CredentialStore
	logger *logging.Logger
}

// NewService creates an identity Service.
func NewService(users interfaces.CredentialStore, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewSilent()
	}
	return &Service{users: users, logger: logger.Component("identity")}
}

// Register creates a user with a bcrypt digest of password.
func (s *Service) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, &accounting.ValidationError{Field: "username", Reason: "username is required"}
	}
	if password == "" {
		return nil, &accounting.ValidationError{Field: "password", Reason: "password is required"}
	}

	existing, err := s.users.GetUserByUsername(ctx, username)
	if err == nil && existing != nil {
		return nil, ErrDuplicateUsername
	}
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("check username: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, &accounting.ValidationError{Field: "password", Reason: "password is too long"}
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, username, hash)
	if errors.Is(err, storage.ErrDuplicate) {
		// Lost a race with another registration of the same name.
		return nil, ErrDuplicateUsername
	}
	if err != nil {
		s.logger.Error().Err(err).Str("username", username).Msg("Failed to create user")
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("User registered")
	return user, nil
}

// Authenticate returns the user whose credentials match.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("look up user: %w", err)
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		s.logger.Warn().Str("username", user.Username).Msg("Failed login attempt")
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// DeleteAccount removes the user and everything recorded for them.
func (s *Service) DeleteAccount(ctx context.Context, userID int64) error {
	if err := s.users.DeleteUser(ctx, userID); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to delete user")
		}
		return fmt.Errorf("delete account: %w", err)
	}
	s.logger.Info().Int64("user_id", userID).Msg("User deleted")
	return nil
}
