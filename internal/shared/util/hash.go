package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// ContentDigest returns the hex sha256 of b, used to correlate uploads in logs.
func ContentDigest(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
