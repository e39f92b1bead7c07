package util

import (
	"crypto/sha256"
	"fmt"
)

// HashBytes computes SHA256 hash of the given bytes
func HashBytes(data []byte) string {
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash)
}
