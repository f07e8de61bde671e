package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"regexp"
	"time"
)

// Invite tokens carry 32 bytes (256 bits) of entropy, base64url encoded.
// Only the SHA-256 digest is ever persisted; the raw token travels once,
// inside the invitation email.

var tokenFormat = regexp.MustCompile(`^[A-Za-z0-9_-]{40,50}$`)

func GenerateInviteToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func TokenExpiry(hours int) time.Time {
	return time.Now().UTC().Add(time.Duration(hours) * time.Hour)
}

// IsValidTokenFormat is a cheap structural check run before any storage
// lookup. 32 random bytes encode to 43 base64url characters; the range
// leaves some slack.
func IsValidTokenFormat(token string) bool {
	return tokenFormat.MatchString(token)
}
