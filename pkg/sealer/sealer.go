// Package sealer produces and checks hex HMAC-SHA256 seals, the format the
// payment gateway uses for checkout confirmations and webhook bodies.
package sealer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const separator = "|"

// Seal signs the parts joined by "|".
func Seal(secret string, parts ...string) string {
	return SealBytes(secret, []byte(strings.Join(parts, separator)))
}

// Verify compares in constant time. An empty secret never verifies.
func Verify(secret, signature string, parts ...string) bool {
	return VerifyBytes(secret, []byte(strings.Join(parts, separator)), signature)
}

func SealBytes(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyBytes compares byte for byte; the seal is lowercase hex, so a case change is a mismatch.
func VerifyBytes(secret string, payload []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	expected := SealBytes(secret, payload)
	return hmac.Equal([]byte(expected), []byte(signature))
}
