package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/streamviewapp/streamview-server/internal/auth"
	"github.com/streamviewapp/streamview-server/internal/domain"
	domainerrors "github.com/streamviewapp/streamview-server/internal/errors"
	"github.com/streamviewapp/streamview-server/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestAuth(t *testing.T) (*AuthService, *store.Store, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "auth-service-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")
	testStore, err := store.New(dbPath, nil)
	require.NoError(t, err)

	secret := make([]byte, 32)
	for i := range secret {
		secret[i] = byte(i)
	}
	tokenService, err := auth.NewTokenService(secret, time.Hour)
	require.NoError(t, err)

	logger := slog.New(slog.DiscardHandler)
	svc := NewAuthService(testStore, tokenService, logger)

	cleanup := func() {
		testStore.Close()
		os.RemoveAll(tmpDir)
	}

	return svc, testStore, cleanup
}

func TestRegister_CreatesUserWithDefaults(t *testing.T) {
	svc, testStore, cleanup := setupTestAuth(t)
	defer cleanup()

	ctx := context.Background()
	resp, err := svc.Register(ctx, RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "supersecret1",
		FullName: "Alice Example",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "alice", resp.User.Username)
	assert.Equal(t, domain.RoleUser, resp.User.Role)
	assert.True(t, resp.User.IsActive)
	assert.Empty(t, resp.User.PasswordHash)

	// Default preferences are created alongside the account
	prefs, err := testStore.GetPreferencesForUser(ctx, resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, prefs.UserID)
}

func TestRegister_RejectsDuplicates(t *testing.T) {
	svc, _, cleanup := setupTestAuth(t)
	defer cleanup()

	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterRequest{
		Username: "bob",
		Email:    "bob@example.com",
		Password: "supersecret1",
	})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterRequest{
		Username: "bob",
		Email:    "other@example.com",
		Password: "supersecret1",
	})
	require.Error(t, err)
	var domainErr *domainerrors.Error
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domainerrors.CodeAlreadyExists, domainErr.Code)

	_, err = svc.Register(ctx, RegisterRequest{
		Username: "bob2",
		Email:    "bob@example.com",
		Password: "supersecret1",
	})
	require.Error(t, err)
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domainerrors.CodeAlreadyExists, domainErr.Code)
}

func TestRegister_ValidatesInput(t *testing.T) {
	svc, _, cleanup := setupTestAuth(t)
	defer cleanup()

	_, err := svc.Register(context.Background(), RegisterRequest{
		Username: "ok",
		Email:    "not-an-email",
		Password: "short",
	})
	require.Error(t, err)
	var domainErr *domainerrors.Error
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)
}

func TestLogin_ByUsernameAndEmail(t *testing.T) {
	svc, _, cleanup := setupTestAuth(t)
	defer cleanup()

	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterRequest{
		Username: "carol",
		Email:    "carol@example.com",
		Password: "supersecret1",
	})
	require.NoError(t, err)

	byName, err := svc.Login(ctx, LoginRequest{Login: "carol", Password: "supersecret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, byName.AccessToken)

	byEmail, err := svc.Login(ctx, LoginRequest{Login: "carol@example.com", Password: "supersecret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, byEmail.AccessToken)
	assert.NotNil(t, byEmail.User.LastLoginAt)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _, cleanup := setupTestAuth(t)
	defer cleanup()

	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterRequest{
		Username: "dave",
		Email:    "dave@example.com",
		Password: "supersecret1",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Login: "dave", Password: "wrongpassword"})
	require.Error(t, err)
	var domainErr *domainerrors.Error
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domainerrors.CodeInvalidCredentials, domainErr.Code)
}

func TestLogin_UnknownUserSameError(t *testing.T) {
	svc, _, cleanup := setupTestAuth(t)
	defer cleanup()

	_, err := svc.Login(context.Background(), LoginRequest{Login: "nobody", Password: "whatever123"})
	require.Error(t, err)
	var domainErr *domainerrors.Error
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domainerrors.CodeInvalidCredentials, domainErr.Code)
}

func TestLogin_DisabledAccount(t *testing.T) {
	svc, testStore, cleanup := setupTestAuth(t)
	defer cleanup()

	ctx := context.Background()
	resp, err := svc.Register(ctx, RegisterRequest{
		Username: "erin",
		Email:    "erin@example.com",
		Password: "supersecret1",
	})
	require.NoError(t, err)

	user, err := testStore.GetUser(ctx, resp.User.ID)
	require.NoError(t, err)
	user.IsActive = false
	require.NoError(t, testStore.UpdateUser(ctx, user))

	_, err = svc.Login(ctx, LoginRequest{Login: "erin", Password: "supersecret1"})
	require.Error(t, err)
	var domainErr *domainerrors.Error
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domainerrors.CodeForbidden, domainErr.Code)
}

func TestVerifyToken_RoundTrip(t *testing.T) {
	svc, _, cleanup := setupTestAuth(t)
	defer cleanup()

	ctx := context.Background()
	resp, err := svc.Register(ctx, RegisterRequest{
		Username: "frank",
		Email:    "frank@example.com",
		Password: "supersecret1",
	})
	require.NoError(t, err)

	user, claims, err := svc.VerifyToken(ctx, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, user.ID)
	assert.Equal(t, "frank", claims.Username)
}

func TestVerifyToken_Garbage(t *testing.T) {
	svc, _, cleanup := setupTestAuth(t)
	defer cleanup()

	_, _, err := svc.VerifyToken(context.Background(), "not.a.token")
	require.Error(t, err)
	var domainErr *domainerrors.Error
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domainerrors.CodeUnauthorized, domainErr.Code)
}

func TestChangePassword(t *testing.T) {
	svc, _, cleanup := setupTestAuth(t)
	defer cleanup()

	ctx := context.Background()
	resp, err := svc.Register(ctx, RegisterRequest{
		Username: "grace",
		Email:    "grace@example.com",
		Password: "supersecret1",
	})
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, resp.User.ID, ChangePasswordRequest{
		CurrentPassword: "wrongpassword",
		NewPassword:     "evenmoresecret",
	})
	require.Error(t, err)

	err = svc.ChangePassword(ctx, resp.User.ID, ChangePasswordRequest{
		CurrentPassword: "supersecret1",
		NewPassword:     "evenmoresecret",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Login: "grace", Password: "evenmoresecret"})
	assert.NoError(t, err)
}

func TestGetPreferences_AutoCreates(t *testing.T) {
	svc, testStore, cleanup := setupTestAuth(t)
	defer cleanup()

	ctx := context.Background()
	user := &domain.User{
		ID:        "user-legacy",
		Username:  "legacy",
		Email:     "legacy@example.com",
		Role:      domain.RoleUser,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, testStore.CreateUser(ctx, user))

	prefs, err := svc.GetPreferences(ctx, "user-legacy")
	require.NoError(t, err)
	assert.Equal(t, "user-legacy", prefs.UserID)

	again, err := svc.GetPreferences(ctx, "user-legacy")
	require.NoError(t, err)
	assert.Equal(t, prefs.ID, again.ID)
}

func TestUpdatePreferences_Partial(t *testing.T) {
	svc, _, cleanup := setupTestAuth(t)
	defer cleanup()

	ctx := context.Background()
	resp, err := svc.Register(ctx, RegisterRequest{
		Username: "heidi",
		Email:    "heidi@example.com",
		Password: "supersecret1",
	})
	require.NoError(t, err)

	genres := []string{"Drama", "Sci-Fi"}
	quality := "high"
	prefs, err := svc.UpdatePreferences(ctx, resp.User.ID, UpdatePreferencesRequest{
		FavoriteGenres:   &genres,
		PreferredQuality: &quality,
	})
	require.NoError(t, err)
	assert.Equal(t, genres, prefs.FavoriteGenres)
	assert.Equal(t, "high", prefs.PreferredQuality)

	badQuality := "ultra"
	_, err = svc.UpdatePreferences(ctx, resp.User.ID, UpdatePreferencesRequest{
		PreferredQuality: &badQuality,
	})
	require.Error(t, err)
}
