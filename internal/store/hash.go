package store

import (
	"crypto/sha256"
	"fmt"
)

// ContentHash computes the cache key for a file's contents. Only the bytes
// matter; path and mtime changes do not invalidate a record.
func ContentHash(data []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(data))
}
