package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/streamviewapp/streamview-server/internal/domain"
	"github.com/streamviewapp/streamview-server/internal/service"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me",
		Summary:     "Get current user",
		Description: "Returns the authenticated user's profile",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateCurrentUser",
		Method:      http.MethodPatch,
		Path:        "/api/v1/users/me",
		Summary:     "Update profile",
		Description: "Applies a partial update to the authenticated user's profile",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "changePassword",
		Method:      http.MethodPost,
		Path:        "/api/v1/users/me/password",
		Summary:     "Change password",
		Description: "Verifies the current password and replaces it",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleChangePassword)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPreferences",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me/preferences",
		Summary:     "Get preferences",
		Description: "Returns the authenticated user's preferences",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetPreferences)

	huma.Register(s.api, huma.Operation{
		OperationID: "updatePreferences",
		Method:      http.MethodPatch,
		Path:        "/api/v1/users/me/preferences",
		Summary:     "Update preferences",
		Description: "Applies a partial update to the authenticated user's preferences",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdatePreferences)
}

// === DTOs ===

type AuthenticatedInput struct {
	Authorization string `header:"Authorization"`
}

type UserOutput struct {
	Body UserResponse
}

type UpdateProfileRequest struct {
	Username *string `json:"username,omitempty" doc:"Username"`
	Email    *string `json:"email,omitempty" doc:"Email address"`
	FullName *string `json:"full_name,omitempty" doc:"Display name"`
}

type UpdateProfileInput struct {
	Authorization string `header:"Authorization"`
	Body          UpdateProfileRequest
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required" doc:"Current password"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=1024" doc:"New password"`
}

type ChangePasswordInput struct {
	Authorization string `header:"Authorization"`
	Body          ChangePasswordRequest
}

type PreferencesResponse struct {
	FavoriteGenres      []string `json:"favorite_genres" doc:"Preferred genres"`
	FavoriteChannels    []string `json:"favorite_channels" doc:"Pinned channel IDs"`
	Language            string   `json:"language,omitempty" doc:"Interface language"`
	EnableNotifications bool     `json:"enable_notifications" doc:"Whether notifications are enabled"`
	AutoPlayNext        bool     `json:"auto_play_next" doc:"Autoplay the next episode"`
	PreferredQuality    string   `json:"preferred_quality,omitempty" doc:"Preferred stream quality"`
	SubtitlesEnabled    bool     `json:"subtitles_enabled" doc:"Whether subtitles are shown"`
	SubtitleLanguage    string   `json:"subtitle_language,omitempty" doc:"Subtitle language"`
}

type PreferencesOutput struct {
	Body PreferencesResponse
}

type UpdatePreferencesRequest struct {
	FavoriteGenres      *[]string `json:"favorite_genres,omitempty" doc:"Preferred genres"`
	FavoriteChannels    *[]string `json:"favorite_channels,omitempty" doc:"Pinned channel IDs"`
	Language            *string   `json:"language,omitempty" doc:"Interface language"`
	EnableNotifications *bool     `json:"enable_notifications,omitempty" doc:"Whether notifications are enabled"`
	AutoPlayNext        *bool     `json:"auto_play_next,omitempty" doc:"Autoplay the next episode"`
	PreferredQuality    *string   `json:"preferred_quality,omitempty" doc:"Preferred stream quality (auto, low, medium, high)"`
	SubtitlesEnabled    *bool     `json:"subtitles_enabled,omitempty" doc:"Whether subtitles are shown"`
	SubtitleLanguage    *string   `json:"subtitle_language,omitempty" doc:"Subtitle language"`
}

type UpdatePreferencesInput struct {
	Authorization string `header:"Authorization"`
	Body          UpdatePreferencesRequest
}

// === Handlers ===

func (s *Server) handleGetCurrentUser(ctx context.Context, input *AuthenticatedInput) (*UserOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	user, err := s.services.Auth.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: mapUserResponse(user)}, nil
}

func (s *Server) handleUpdateCurrentUser(ctx context.Context, input *UpdateProfileInput) (*UserOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	user, err := s.services.Auth.UpdateProfile(ctx, userID, service.UpdateProfileRequest{
		Username: input.Body.Username,
		Email:    input.Body.Email,
		FullName: input.Body.FullName,
	})
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: mapUserResponse(user)}, nil
}

func (s *Server) handleChangePassword(ctx context.Context, input *ChangePasswordInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Auth.ChangePassword(ctx, userID, service.ChangePasswordRequest{
		CurrentPassword: input.Body.CurrentPassword,
		NewPassword:     input.Body.NewPassword,
	}); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Password changed"}}, nil
}

func (s *Server) handleGetPreferences(ctx context.Context, input *AuthenticatedInput) (*PreferencesOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	prefs, err := s.services.Auth.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &PreferencesOutput{Body: mapPreferencesResponse(prefs)}, nil
}

func (s *Server) handleUpdatePreferences(ctx context.Context, input *UpdatePreferencesInput) (*PreferencesOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	prefs, err := s.services.Auth.UpdatePreferences(ctx, userID, service.UpdatePreferencesRequest{
		FavoriteGenres:      input.Body.FavoriteGenres,
		FavoriteChannels:    input.Body.FavoriteChannels,
		Language:            input.Body.Language,
		EnableNotifications: input.Body.EnableNotifications,
		AutoPlayNext:        input.Body.AutoPlayNext,
		PreferredQuality:    input.Body.PreferredQuality,
		SubtitlesEnabled:    input.Body.SubtitlesEnabled,
		SubtitleLanguage:    input.Body.SubtitleLanguage,
	})
	if err != nil {
		return nil, err
	}

	return &PreferencesOutput{Body: mapPreferencesResponse(prefs)}, nil
}

// === Mappers ===

func mapPreferencesResponse(p *domain.UserPreference) PreferencesResponse {
	return PreferencesResponse{
		FavoriteGenres:      p.FavoriteGenres,
		FavoriteChannels:    p.FavoriteChannels,
		Language:            p.Language,
		EnableNotifications: p.EnableNotifications,
		AutoPlayNext:        p.AutoPlayNext,
		PreferredQuality:    p.PreferredQuality,
		SubtitlesEnabled:    p.SubtitlesEnabled,
		SubtitleLanguage:    p.SubtitleLanguage,
	}
}
