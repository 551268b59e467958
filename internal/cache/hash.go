package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Key builds a namespaced cache key, prefix:sha256(data).
func Key(prefix string, data []byte) string {
	return prefix + ":" + Hash(data)
}
