package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/streamviewapp/streamview-server/internal/auth"
	"github.com/streamviewapp/streamview-server/internal/domain"
	domainerrors "github.com/streamviewapp/streamview-server/internal/errors"
	"github.com/streamviewapp/streamview-server/internal/id"
	"github.com/streamviewapp/streamview-server/internal/store"
)

// validate is a shared validator instance for request validation.
var validate = func() *validator.Validate {
	v := validator.New()
	// Use JSON tag names for field names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("json")
		if name == "" {
			return fld.Name
		}
		// Remove any options (like omitempty, -)
		for i := range len(name) {
			if name[i] == ',' {
				return name[:i]
			}
		}
		return name
	})
	return v
}()

// AuthService handles account registration, login, and profile management.
type AuthService struct {
	store        *store.Store
	tokenService *auth.TokenService
	logger       *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(store *store.Store, tokenService *auth.TokenService, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:        store,
		tokenService: tokenService,
		logger:       logger,
	}
}

// RegisterRequest contains user registration data.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=1024"`
	FullName string `json:"full_name" validate:"max=256"`
}

// LoginRequest contains login credentials. Login accepts either the
// username or the email address.
type LoginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse contains the access token and the authenticated user.
type AuthResponse struct {
	User        *domain.User `json:"user"`
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
}

// Register creates a new viewer account with default preferences.
// Username and email must both be unused.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	// Check uniqueness up front for a friendlier error than the index conflict
	if _, err := s.store.GetUserByUsername(ctx, req.Username); err == nil {
		return nil, domainerrors.AlreadyExists("username already in use")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if _, err := s.store.GetUserByEmail(ctx, req.Email); err == nil {
		return nil, domainerrors.AlreadyExists("email already in use")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.Generate("user")
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	user := &domain.User{
		ID:           userID,
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
		FullName:     req.FullName,
		Role:         domain.RoleUser,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("username or email already in use")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	// Default preferences accompany every new account
	prefID, err := id.Generate("pref")
	if err != nil {
		return nil, fmt.Errorf("generate preference ID: %w", err)
	}
	if err := s.store.CreatePreferences(ctx, domain.DefaultPreferences(prefID, user.ID)); err != nil {
		s.logger.Warn("failed to create default preferences", "user_id", user.ID, "error", err)
	}

	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username)

	return s.issueToken(user)
}

// Login authenticates a user by username or email and password.
// Inactive accounts cannot log in.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	user, err := s.store.FindUserByLogin(ctx, req.Login)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.InvalidCredentials("invalid login or password")
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !user.IsActive {
		return nil, domainerrors.Forbidden("account is disabled")
	}

	valid, err := auth.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return nil, domainerrors.InvalidCredentials("invalid login or password")
	}

	now := time.Now().UTC()
	user.LastLoginAt = &now
	if err := s.store.UpdateUser(ctx, user); err != nil {
		s.logger.Warn("failed to record last login", "user_id", user.ID, "error", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID, "username", user.Username)

	return s.issueToken(user)
}

// issueToken builds the auth response for a successfully authenticated user.
func (s *AuthService) issueToken(user *domain.User) (*AuthResponse, error) {
	token, err := s.tokenService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	return &AuthResponse{
		User:        user.Sanitized(),
		AccessToken: token,
		ExpiresAt:   time.Now().UTC().Add(s.tokenService.AccessTokenDuration()),
	}, nil
}

// VerifyToken validates an access token and loads the corresponding user.
// Used by the HTTP auth middleware.
func (s *AuthService) VerifyToken(ctx context.Context, tokenString string) (*domain.User, *auth.AccessClaims, error) {
	claims, err := s.tokenService.VerifyAccessToken(tokenString)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, nil, domainerrors.TokenExpired("access token expired")
		}
		return nil, nil, domainerrors.Unauthorized("invalid access token")
	}

	user, err := s.store.GetUser(ctx, claims.UserID())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, domainerrors.Unauthorized("user no longer exists")
		}
		return nil, nil, fmt.Errorf("get user: %w", err)
	}

	if !user.IsActive {
		return nil, nil, domainerrors.Forbidden("account is disabled")
	}

	return user, claims, nil
}

// ChangePasswordRequest carries a password change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=1024"`
}

// ChangePassword verifies the current password and replaces it.
func (s *AuthService) ChangePassword(ctx context.Context, userID string, req ChangePasswordRequest) error {
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	valid, err := auth.VerifyPassword(req.CurrentPassword, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return domainerrors.InvalidCredentials("current password is incorrect")
	}

	newHash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user.PasswordHash = newHash
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	s.logger.Info("password changed", "user_id", userID)
	return nil
}

// GetProfile returns the user's profile without the password hash.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

// UpdateProfileRequest contains the profile fields a user may change.
type UpdateProfileRequest struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=64"`
	Email    *string `json:"email" validate:"omitempty,email"`
	FullName *string `json:"full_name" validate:"omitempty,max=256"`
}

// UpdateProfile applies a partial profile update.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*domain.User, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.FullName != nil {
		user.FullName = *req.FullName
	}

	if err := s.store.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("username or email already in use")
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	return user.Sanitized(), nil
}

// GetPreferences returns the user's preferences, creating the default
// record on first access for accounts that predate preferences.
func (s *AuthService) GetPreferences(ctx context.Context, userID string) (*domain.UserPreference, error) {
	prefs, err := s.store.GetPreferencesForUser(ctx, userID)
	if err == nil {
		return prefs, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("get preferences: %w", err)
	}

	prefID, err := id.Generate("pref")
	if err != nil {
		return nil, fmt.Errorf("generate preference ID: %w", err)
	}
	prefs = domain.DefaultPreferences(prefID, userID)
	if err := s.store.CreatePreferences(ctx, prefs); err != nil {
		return nil, fmt.Errorf("create preferences: %w", err)
	}
	return prefs, nil
}

// UpdatePreferencesRequest contains the preference fields a user may change.
type UpdatePreferencesRequest struct {
	FavoriteGenres      *[]string `json:"favorite_genres"`
	FavoriteChannels    *[]string `json:"favorite_channels"`
	Language            *string   `json:"language" validate:"omitempty,max=32"`
	EnableNotifications *bool     `json:"enable_notifications"`
	AutoPlayNext        *bool     `json:"auto_play_next"`
	PreferredQuality    *string   `json:"preferred_quality" validate:"omitempty,oneof=auto low medium high"`
	SubtitlesEnabled    *bool     `json:"subtitles_enabled"`
	SubtitleLanguage    *string   `json:"subtitle_language" validate:"omitempty,max=32"`
}

// UpdatePreferences applies a partial preference update.
func (s *AuthService) UpdatePreferences(ctx context.Context, userID string, req UpdatePreferencesRequest) (*domain.UserPreference, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	prefs, err := s.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FavoriteGenres != nil {
		prefs.FavoriteGenres = *req.FavoriteGenres
	}
	if req.FavoriteChannels != nil {
		prefs.FavoriteChannels = *req.FavoriteChannels
	}
	if req.Language != nil {
		prefs.Language = *req.Language
	}
	if req.EnableNotifications != nil {
		prefs.EnableNotifications = *req.EnableNotifications
	}
	if req.AutoPlayNext != nil {
		prefs.AutoPlayNext = *req.AutoPlayNext
	}
	if req.PreferredQuality != nil {
		prefs.PreferredQuality = *req.PreferredQuality
	}
	if req.SubtitlesEnabled != nil {
		prefs.SubtitlesEnabled = *req.SubtitlesEnabled
	}
	if req.SubtitleLanguage != nil {
		prefs.SubtitleLanguage = *req.SubtitleLanguage
	}
	prefs.Touch()

	if err := s.store.UpdatePreferences(ctx, prefs); err != nil {
		return nil, fmt.Errorf("update preferences: %w", err)
	}
	return prefs, nil
}

// formatValidationError converts validator errors to user-friendly domain errors.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		// Return first validation error as a domain error
		for _, e := range validationErrs {
			field := e.Field()
			switch e.Tag() {
			case "required":
				return domainerrors.Validationf("%s is required", field)
			case "email":
				return domainerrors.Validationf("%s must be a valid email address", field)
			case "min":
				return domainerrors.Validationf("%s must be at least %s characters", field, e.Param())
			case "max":
				return domainerrors.Validationf("%s exceeds maximum length of %s characters", field, e.Param())
			case "oneof":
				return domainerrors.Validationf("%s must be one of: %s", field, e.Param())
			default:
				return domainerrors.Validationf("%s is invalid", field)
			}
		}
	}
	return err
}
