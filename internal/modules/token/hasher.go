package token

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hasher produces the one-way digest refresh secrets are stored and looked
// up by. The pepper is a server-side secret mixed into every digest, so a
// leaked table alone is not enough to match presented tokens.
type Hasher struct {
	pepper string
}

func NewHasher(pepper string) Hasher {
	return Hasher{pepper: pepper}
}

// Hash returns hex(SHA-256(raw || pepper)), 64 characters. Deterministic
// and pure; the raw secret itself is never persisted or logged.
func (h Hasher) Hash(raw string) string {
	sum := sha256.Sum256([]byte(raw + h.pepper))
	return hex.EncodeToString(sum[:])
}
