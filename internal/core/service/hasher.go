package service

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const defaultBcryptCost = 12

// PasswordHasher wraps bcrypt with a configurable work factor.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher builds a hasher. Costs outside bcrypt's supported range
// fall back to the default.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = defaultBcryptCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash derives a salted one-way hash of the plaintext. A failure here is an
// internal error, never a caller mistake.
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether plaintext matches the stored hash. A wrong
// password is false, never an error.
func (h *PasswordHasher) Verify(plaintext, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext)) == nil
}
