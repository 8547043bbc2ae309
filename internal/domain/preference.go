package domain

import "time"

// UserPreference holds per-user playback and notification settings.
// Created with defaults at registration, keyed by the owning user.
type UserPreference struct {
	ID                  string    `json:"id"`
	UserID              string    `json:"user_id"`
	FavoriteGenres      []string  `json:"favorite_genres,omitempty"`
	FavoriteChannels    []string  `json:"favorite_channels,omitempty"`
	Language            string    `json:"language,omitempty"`
	EnableNotifications bool      `json:"enable_notifications"`
	AutoPlayNext        bool      `json:"auto_play_next"`
	PreferredQuality    string    `json:"preferred_quality,omitempty"`
	SubtitlesEnabled    bool      `json:"subtitles_enabled"`
	SubtitleLanguage    string    `json:"subtitle_language,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// DefaultPreferences returns the preference record created for new accounts.
func DefaultPreferences(id, userID string) *UserPreference {
	now := time.Now().UTC()
	return &UserPreference{
		ID:                  id,
		UserID:              userID,
		EnableNotifications: true,
		AutoPlayNext:        false,
		SubtitlesEnabled:    false,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// Touch updates the modification timestamp.
func (p *UserPreference) Touch() {
	p.UpdatedAt = time.Now().UTC()
}
