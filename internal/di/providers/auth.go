package providers

import (
	"github.com/samber/do/v2"

	"github.com/streamviewapp/streamview-server/internal/auth"
	"github.com/streamviewapp/streamview-server/internal/config"
	"github.com/streamviewapp/streamview-server/internal/logger"
)

// AuthSecret wraps the token signing secret bytes.
type AuthSecret []byte

// ProvideAuthSecret loads or generates the token signing secret.
// A secret supplied through configuration wins over the persisted one.
func ProvideAuthSecret(i do.Injector) (AuthSecret, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	secret := cfg.Auth.JWTSecret
	if len(secret) == 0 {
		loaded, err := auth.LoadOrGenerateSecret(cfg.Data.BasePath)
		if err != nil {
			return nil, err
		}
		secret = loaded
		cfg.Auth.JWTSecret = loaded
	}

	log.Info("Authentication secret loaded",
		"access_token_duration", cfg.Auth.AccessTokenDuration,
	)

	return AuthSecret(secret), nil
}

// ProvideTokenService provides the JWT token service.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	secret := do.MustInvoke[AuthSecret](i)

	return auth.NewTokenService([]byte(secret), cfg.Auth.AccessTokenDuration)
}
