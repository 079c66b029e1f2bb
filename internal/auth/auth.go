// Package auth wraps the one-way password digest used for stored credentials.
package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// Cost is the bcrypt work factor for new digests.
var Cost = bcrypt.DefaultCost

// HashPassword returns a bcrypt digest of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), Cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored digest.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
