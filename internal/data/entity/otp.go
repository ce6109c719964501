package entity

import (
	"time"
)

// OTP is a one-time code issued to an email. Only the bcrypt hash of the code is stored.
type OTP struct {
	BaseSimple
	UserID         *int64    `db:"user_id"`
	Email          string    `db:"email"`
	CodeHash       string    `db:"code_hash"`
	ExpiresAt      time.Time `db:"expires_at"`
	FailedAttempts int       `db:"failed_attempts"`
}

// IsExpired reports whether the code expired before now.
func (o *OTP) IsExpired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}
