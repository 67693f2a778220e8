package storage

import (
	"crypto/sha256"
	"encoding/hex"
)

// hashKey maps key to a filesystem-safe, fixed-length name.
func hashKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:8])
}
