package utils

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// HashParts returns the hex-encoded SHA3-256 digest of the provided parts. Each part is length-prefixed so that
// different splits of the same bytes hash differently.
func HashParts(parts ...string) string {
	hasher := sha3.New256()
	for _, part := range parts {
		var length [8]byte
		n := uint64(len(part))
		for i := range length {
			length[i] = byte(n >> (8 * i))
		}
		hasher.Write(length[:])
		hasher.Write([]byte(part))
	}
	return hex.EncodeToString(hasher.Sum(nil))
}
