package utils

import (
	"golang.org/x/crypto/bcrypt"
)

// HashCode hashes a one-time code with the given bcrypt cost.
func HashCode(code string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	bytes, err := bcrypt.GenerateFromPassword([]byte(code), cost)
	return string(bytes), err
}

// CheckCodeHash reports whether code matches a hash produced by HashCode.
func CheckCodeHash(code, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}
