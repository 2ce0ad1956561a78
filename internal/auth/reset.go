package auth

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// ResetTokenLifetime is how long a password-reset token stays usable.
const ResetTokenLifetime = time.Hour

// GenerateResetToken returns a 256-bit random token, hex encoded. Tokens are
// single-use: the handler clears the stored token on a successful reset.
func GenerateResetToken() (string, error) {
	buf := make([]byte, 32)

	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	return hex.EncodeToString(buf), nil
}

// ResetTokenExpired reports whether a token issued with the given expiry is
// no longer acceptable at now.
func ResetTokenExpired(expires *time.Time, now time.Time) bool {
	return expires == nil || now.After(*expires)
}
