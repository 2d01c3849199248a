package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateKey generates a random key with the given prefix.
// Format: prefix_randomhex
// Example: rt_a1b2c3d4e5f6...
func GenerateKey(prefix string, size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_%s", prefix, hex.EncodeToString(b)), nil
}

// GenerateRefreshID generates the identifier recorded for a refresh token: rt_xxx
func GenerateRefreshID() (string, error) {
	return GenerateKey("rt", 16)
}
