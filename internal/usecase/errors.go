package usecase

import "errors"

var (
	ErrValidation           = errors.New("validation failed")
	ErrOTPRateLimited       = errors.New("please wait before requesting another OTP")
	ErrOTPInvalid           = errors.New("invalid OTP")
	ErrOTPExpired           = errors.New("OTP has expired")
	ErrOTPNotFound          = errors.New("no OTP requested for this email")
	ErrInvalidToken         = errors.New("invalid or expired token")
	ErrAccountNotFound      = errors.New("account not found")
	ErrUnauthorized         = errors.New("authentication required")
	ErrForbidden            = errors.New("admin access only")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrConflict             = errors.New("resource conflict")
	ErrDeliveryFailed       = errors.New("failed to send email")
	ErrExamSlotsUnavailable = errors.New("exam slots unavailable")
)
