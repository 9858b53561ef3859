package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordVerifier checks candidate admin passwords against a bcrypt hash
type PasswordVerifier struct {
	hash []byte
}

// NewPasswordVerifier builds a verifier from a bcrypt hash, or from a
// plaintext password when hash is empty
func NewPasswordVerifier(plain, hash string) (*PasswordVerifier, error) {
	if hash != "" {
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, fmt.Errorf("invalid admin password hash: %w", err)
		}
		return &PasswordVerifier{hash: []byte(hash)}, nil
	}
	if plain == "" {
		return nil, fmt.Errorf("admin password is empty")
	}

	h, err := HashPassword(plain)
	if err != nil {
		return nil, err
	}
	return &PasswordVerifier{hash: []byte(h)}, nil
}

// Verify reports whether password matches
func (v *PasswordVerifier) Verify(password string) bool {
	return bcrypt.CompareHashAndPassword(v.hash, []byte(password)) == nil
}

// HashPassword returns the bcrypt hash of password at the default cost
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(h), nil
}
