// Package auth provides the thin authentication boundary in front of the
// coordination core: bcrypt password hashing, JWT session tokens, and the
// HTTP middleware that resolves the calling principal.
package auth

import (
	"groupdump/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// HashPassword validates and hashes a plaintext password.
func HashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", domain.Validation("password must be at least %d characters", minPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", domain.Internal(err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches the stored hash.
func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
