package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// Token size constants (in bytes before encoding).
const (
	// TokenSize128 provides 128 bits of entropy (22 chars base64url).
	TokenSize128 = 16
	// TokenSize256 provides 256 bits of entropy (43 chars base64url).
	TokenSize256 = 32
)

// GenerateToken returns size random bytes encoded as unpadded base64url.
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("cryptox: token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("cryptox: generate token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// FingerprintToken returns the base64url SHA-256 of token (43 chars). It
// is used to derive stable key ids and to log tokens without exposing them.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
