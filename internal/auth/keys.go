// Package auth provides authentication and authorization functionality.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// HMAC-SHA256 signing uses a 256-bit (32-byte) secret.
	secretLength = 32
	// Expected hex-encoded length (32 bytes = 64 hex characters).
	secretHexLength = 64
)

// LoadOrGenerateSecret loads or generates the JWT signing secret.
// The secret is stored in <dataPath>/auth.key as a hex-encoded string.
// If the file doesn't exist, a new secret is generated and saved.
// Returns the decoded 32-byte secret ready for use.
func LoadOrGenerateSecret(dataPath string) ([]byte, error) {
	keyPath := filepath.Join(dataPath, "auth.key")

	// Try to load existing secret.
	//#nosec G304 -- Key path is derived from the validated data path
	if keyBytes, err := os.ReadFile(keyPath); err == nil {
		keyHex := strings.TrimSpace(string(keyBytes))

		if len(keyHex) != secretHexLength {
			return nil, fmt.Errorf("invalid auth key length: expected %d hex chars, got %d", secretHexLength, len(keyHex))
		}

		secret, err := hex.DecodeString(keyHex)
		if err != nil {
			return nil, fmt.Errorf("invalid auth key format: not valid hex: %w", err)
		}

		return secret, nil
	}

	// Generate a new 256-bit secret.
	secret := make([]byte, secretLength)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("failed to generate auth key: %w", err)
	}

	keyHex := hex.EncodeToString(secret)

	if err := os.MkdirAll(dataPath, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	if err := os.WriteFile(keyPath, []byte(keyHex), 0o600); err != nil {
		return nil, fmt.Errorf("failed to save auth key: %w", err)
	}

	return secret, nil
}
