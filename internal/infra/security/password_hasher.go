package security

import (
	"fmt"
	"strings"

	"github.com/Rista10/event-planner-application/internal/core/port"
)

// Algorithm names accepted by NewPasswordHasher.
const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

// MultiHasher hashes with a primary algorithm and verifies any supported encoding,
// so stored hashes keep working after the configured algorithm changes.
type MultiHasher struct {
	primary port.PasswordHasher
	bcrypt  *BcryptHasher
	argon2  *Argon2Hasher
}

// NewPasswordHasher builds a MultiHasher whose primary algorithm is algorithm.
func NewPasswordHasher(algorithm string, bcryptCost int, argonCfg Argon2Config) (*MultiHasher, error) {
	bh, err := NewBcryptHasher(bcryptCost)
	if err != nil {
		return nil, err
	}
	ah, err := NewArgon2Hasher(argonCfg)
	if err != nil {
		return nil, err
	}

	h := &MultiHasher{bcrypt: bh, argon2: ah}
	switch strings.ToLower(strings.TrimSpace(algorithm)) {
	case "", AlgorithmBcrypt:
		h.primary = bh
	case AlgorithmArgon2id:
		h.primary = ah
	default:
		return nil, fmt.Errorf("unsupported password algorithm %q", algorithm)
	}
	return h, nil
}

// Hash encodes password with the primary algorithm.
func (h *MultiHasher) Hash(password string) (string, error) {
	return h.primary.Hash(password)
}

// Verify dispatches on the encoded prefix.
func (h *MultiHasher) Verify(password, encoded string) (bool, error) {
	if strings.HasPrefix(encoded, argon2Variant+"$") {
		return h.argon2.Verify(password, encoded)
	}
	return h.bcrypt.Verify(password, encoded)
}

var (
	_ port.PasswordHasher = (*BcryptHasher)(nil)
	_ port.PasswordHasher = (*Argon2Hasher)(nil)
	_ port.PasswordHasher = (*MultiHasher)(nil)
)
