// Package signature authenticates inbound webhook bodies against the
// provider's shared secret.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Verify checks that claimed is the hex-encoded HMAC-SHA256 of body under
// secret. It must be called with the exact raw request bytes; verifying a
// re-serialized body is unsound.
//
// An empty secret skips verification and returns true. This is a deliberate
// operational escape hatch for deployments without a configured webhook
// secret, not a bug; such deployments accept unauthenticated events.
func Verify(secret string, body []byte, claimed string) bool {
	if secret == "" {
		return true
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	// constant-time compare; a short-circuiting == would leak timing
	return hmac.Equal([]byte(expected), []byte(claimed))
}
