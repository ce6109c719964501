package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// ==================== OTP ====================

// GenerateOTP returns a numeric code of the given length drawn from crypto/rand.
func GenerateOTP(length int) (string, error) {
	if length <= 0 {
		length = 6
	}

	var sb strings.Builder
	sb.Grow(length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("generate otp digit: %w", err)
		}
		sb.WriteByte(byte('0' + n.Int64()))
	}

	return sb.String(), nil
}

// ==================== ROLL NUMBER ====================

// GenerateRollNumber formats PREFIX-NNNN from the numeric account id.
func GenerateRollNumber(prefix string, userID int64) string {
	return fmt.Sprintf("%s-%04d", prefix, userID)
}

// NormalizeEmail trims and lower-cases an address so it can be used as a unique key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
