package request

import "strings"

type SendOTPRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
	OTP   string `json:"otp" validate:"required,numeric,max=12"`
}

// Normalize trims surrounding whitespace before validation.
func (r *VerifyOTPRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
	r.OTP = strings.TrimSpace(r.OTP)
}

func (r *SendOTPRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
}
