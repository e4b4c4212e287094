package id

import (
	"crypto/rand"
	"encoding/hex"
)

// NewID32 returns a random identifier of exactly 32 lowercase hex
// characters. Account, loan, offer, payment and transaction IDs all use
// this format, and the API validates it with the hex32 tag.
func NewID32() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b) // never fails on supported platforms
	return hex.EncodeToString(b)
}
