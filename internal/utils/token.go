package utils // helpers for opaque credentials

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"math/big"

	"github.com/google/uuid"
)

// KeyLength is the canonical length of activation keys and auth tokens
// (a UUID string).
const KeyLength = 36

// NewKey returns a fresh 36-character opaque key. Used for both
// activation keys and auth tokens; the raw value goes to the caller,
// only auth tokens are additionally hashed for storage.
func NewKey() string {
	return uuid.NewString()
}

// HashToken returns the SHA-256 hash of a raw auth token as a hex
// string. Only the hash is persisted, so a leaked table cannot be
// replayed as live credentials, and the fixed-length hash lookup does
// not vary with attacker-controlled input.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// FiveDigitKey returns a random number in [10000, 99999], the
// confirmation key format of the email-change protocol.
func FiveDigitKey() (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(90000))
	if err != nil {
		return 0, err
	}
	return int(n.Int64()) + 10000, nil
}
