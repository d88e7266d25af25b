package auth

import (
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the minimum work factor accepted for password hashes.
const DefaultBcryptCost = 10

// MaxPasswordLength is the longest password bcrypt can hash.
const MaxPasswordLength = 72

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
	Burn(plaintext string)
}

// BcryptHasher is a PasswordHasher backed by bcrypt.
type BcryptHasher struct {
	cost int

	dummyOnce sync.Once
	dummy     []byte
}

// Ensure BcryptHasher implements PasswordHasher
var _ PasswordHasher = (*BcryptHasher)(nil)

// NewBcryptHasher creates a hasher with the given cost, raised to DefaultBcryptCost if lower.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < DefaultBcryptCost {
		cost = DefaultBcryptCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash returns a salted bcrypt hash of plaintext.
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether plaintext matches hash. Malformed hashes never match,
// nor do passwords longer than MaxPasswordLength, which bcrypt would truncate.
func (h *BcryptHasher) Verify(plaintext, hash string) bool {
	if len(plaintext) > MaxPasswordLength {
		h.Burn(plaintext)
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// Burn spends the same work as a real verification. It is used when no
// account exists so that response timing matches a wrong password.
func (h *BcryptHasher) Burn(plaintext string) {
	h.dummyOnce.Do(func() {
		h.dummy, _ = bcrypt.GenerateFromPassword([]byte("blogdesk-dummy-password"), h.cost)
	})
	if len(plaintext) > MaxPasswordLength {
		plaintext = plaintext[:MaxPasswordLength]
	}
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(plaintext))
}
