// Package checksum fingerprints note content so the index can skip
// unchanged files.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Short returns a truncated digest suitable for log output.
func Short(data []byte) string {
	return Sum(data)[:12]
}
