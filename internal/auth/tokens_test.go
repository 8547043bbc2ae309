package auth

import (
	"testing"
	"time"

	"github.com/streamviewapp/streamview-server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSecret(fill byte) []byte {
	secret := make([]byte, 32)
	for i := range secret {
		secret[i] = fill
	}
	return secret
}

func testUser() *domain.User {
	return &domain.User{
		ID:       "usr-token-test",
		Username: "tokenuser",
		Email:    "token@example.com",
		Role:     domain.RoleUser,
	}
}

func TestNewTokenService_RejectsShortSecret(t *testing.T) {
	_, err := NewTokenService([]byte("too-short"), time.Hour)
	assert.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	svc, err := NewTokenService(testSecret(1), time.Hour)
	require.NoError(t, err)

	token, err := svc.GenerateAccessToken(testUser())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "usr-token-test", claims.UserID())
	assert.Equal(t, "tokenuser", claims.Username)
	assert.Equal(t, "token@example.com", claims.Email)
	assert.Equal(t, string(domain.RoleUser), claims.Role)
}

func TestVerifyAccessToken_Expired(t *testing.T) {
	svc, err := NewTokenService(testSecret(1), -time.Minute)
	require.NoError(t, err)

	token, err := svc.GenerateAccessToken(testUser())
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyAccessToken_WrongSecret(t *testing.T) {
	signer, err := NewTokenService(testSecret(1), time.Hour)
	require.NoError(t, err)
	verifier, err := NewTokenService(testSecret(2), time.Hour)
	require.NoError(t, err)

	token, err := signer.GenerateAccessToken(testUser())
	require.NoError(t, err)

	_, err = verifier.VerifyAccessToken(token)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyAccessToken_Garbage(t *testing.T) {
	svc, err := NewTokenService(testSecret(1), time.Hour)
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken("not.a.token")
	assert.Error(t, err)
}
