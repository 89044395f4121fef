package hasher

import (
	"crypto/sha256"
	"encoding/hex"
)

// fingerprintLen is how many hex chars of the hash Fingerprint keeps.
const fingerprintLen = 12

// Hash возвращает SHA-256 хэш входной строки в виде hex.
func Hash(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

// Fingerprint returns a short, log-safe identifier of a secret such as a bearer token.
func Fingerprint(secret string) string {
	if secret == "" {
		return ""
	}
	return Hash(secret)[:fingerprintLen]
}
