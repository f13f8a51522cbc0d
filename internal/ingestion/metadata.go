package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint returns a SHA-256 hex digest over the cleaned form of each part.
// Parts are length-prefixed so ("ab", "c") and ("a", "bc") differ.
func Fingerprint(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		cleaned := CleanText(p)
		_, _ = h.Write([]byte{byte(len(cleaned) >> 24), byte(len(cleaned) >> 16), byte(len(cleaned) >> 8), byte(len(cleaned))})
		_, _ = h.Write([]byte(cleaned))
	}
	return hex.EncodeToString(h.Sum(nil))
}
