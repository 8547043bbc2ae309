package store

import (
	"context"
	"errors"

	"github.com/streamviewapp/streamview-server/internal/domain"
)

// CreatePreferences stores a preference record for a user.
// Each user has at most one record, enforced by the user index.
func (s *Store) CreatePreferences(ctx context.Context, prefs *domain.UserPreference) error {
	return s.Preferences.Create(ctx, prefs.ID, prefs)
}

// GetPreferencesForUser retrieves the preference record for a user.
func (s *Store) GetPreferencesForUser(ctx context.Context, userID string) (*domain.UserPreference, error) {
	prefs, err := s.Preferences.GetByIndex(ctx, "user", userID)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrPreferenceNotFound
	}
	return prefs, err
}

// UpdatePreferences updates an existing preference record.
func (s *Store) UpdatePreferences(ctx context.Context, prefs *domain.UserPreference) error {
	err := s.Preferences.Update(ctx, prefs.ID, prefs)
	if errors.Is(err, ErrNotFound) {
		return ErrPreferenceNotFound
	}
	return err
}
