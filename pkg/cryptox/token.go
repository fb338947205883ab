package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// Token sizes in bytes of entropy before encoding.
const (
	// TokenSize128 suits short-lived, single-use values.
	TokenSize128 = 16
	// TokenSize256 suits refresh tokens and API keys.
	TokenSize256 = 32
)

// GenerateToken returns a base64url-encoded random token with size bytes of
// entropy.
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("cryptox: token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("cryptox: token generation: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// FingerprintToken returns the SHA-256 fingerprint of token, base64url
// encoded. Only fingerprints are stored at rest; possession of the database
// never yields a usable token.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
