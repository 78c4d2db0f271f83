package prop

import (
	"crypto/rand"
	"encoding/hex"
)

// NewRandomID returns a random 16-character hex identifier.
func NewRandomID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
