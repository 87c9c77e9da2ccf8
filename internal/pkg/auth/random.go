package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// InviteTokenBytes is the entropy of an invite token
const InviteTokenBytes = 32

// GenerateOpaqueToken returns n random bytes encoded as unpadded base64url.
func GenerateOpaqueToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// TokenPrefix shortens a secret token for log output.
func TokenPrefix(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:8] + "…"
}
