package record

import (
	"crypto/rand"
	"encoding/base64"
)

// idBytes yields a 20 character identifier with ~120 bits of entropy.
const idBytes = 15

// NewID returns a fresh URL-safe record identifier.
//
// The identifier is built from cryptographically strong randomness only; it
// carries no time or counter component and gives no ordering guarantee.
// Collision resistance is the sole property.
func NewID() string {
	buf := make([]byte, idBytes)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms.
		panic("record: reading random bytes: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
