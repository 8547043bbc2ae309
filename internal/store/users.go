package store

import (
	"context"
	"errors"
	"strings"

	"github.com/streamviewapp/streamview-server/internal/domain"
)

// CreateUser creates a new user account.
// Username and email are indexed case-insensitively and must be unique.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	return s.Users.Create(ctx, user.ID, user)
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.Users.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// GetUserByUsername retrieves a user by username (case-insensitive).
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.Users.GetByIndex(ctx, "username", username)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// GetUserByEmail retrieves a user by email address (case-insensitive).
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.Users.GetByIndex(ctx, "email", email)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// FindUserByLogin resolves a login identifier that may be a username or
// an email address. Identifiers containing '@' try email first, then
// username, so accounts with '@' in the username still resolve.
func (s *Store) FindUserByLogin(ctx context.Context, login string) (*domain.User, error) {
	if strings.Contains(login, "@") {
		user, err := s.GetUserByEmail(ctx, login)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return s.GetUserByUsername(ctx, login)
}

// UpdateUser updates an existing user.
func (s *Store) UpdateUser(ctx context.Context, user *domain.User) error {
	err := s.Users.Update(ctx, user.ID, user)
	if errors.Is(err, ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

// ListUsers returns all user accounts.
func (s *Store) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.Users.ListAll(ctx)
}
