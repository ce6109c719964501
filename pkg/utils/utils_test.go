package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestGenerateOTP(t *testing.T) {
	for _, length := range []int{4, 6, 8} {
		code, err := GenerateOTP(length)
		require.NoError(t, err)
		assert.Len(t, code, length)
		assert.Regexp(t, `^[0-9]+$`, code)
	}

	code, err := GenerateOTP(0)
	require.NoError(t, err)
	assert.Len(t, code, 6)
}

func TestGenerateRollNumber(t *testing.T) {
	assert.Equal(t, "NSAT2026-0001", GenerateRollNumber("NSAT2026", 1))
	assert.Equal(t, "NSAT2026-0042", GenerateRollNumber("NSAT2026", 42))
	assert.Equal(t, "NSAT2026-12345", GenerateRollNumber("NSAT2026", 12345))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@x.com", NormalizeEmail("  A@X.Com \n"))
}

func TestHashCode(t *testing.T) {
	hash, err := HashCode("123456", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "123456", hash)
	assert.True(t, CheckCodeHash("123456", hash))
	assert.False(t, CheckCodeHash("123457", hash))
	assert.False(t, CheckCodeHash("123456", "not-a-hash"))
}

type sample struct {
	Name   string `json:"name" validate:"required,max=20,personname"`
	Medium string `json:"medium" validate:"required,medium"`
	Course string `json:"course" validate:"required,course"`
}

func TestValidateStruct(t *testing.T) {
	valid := sample{Name: "Zoë O'Neil-Smith", Medium: "Hindi", Course: "Foundation (Class 6-10)"}
	assert.Empty(t, ValidateStruct(valid))

	assert.Empty(t, ValidateStruct(sample{Name: "राम कुमार", Medium: "English", Course: "Medical (NEET)"}))

	errs := ValidateStruct(sample{Name: "Robert'); DROP TABLE--", Medium: "French", Course: "Law"})
	require.Len(t, errs, 3)
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "medium")
	assert.Contains(t, errs, "course")
	assert.Contains(t, errs["medium"], "Hindi, English")

	errs = ValidateStruct(sample{})
	assert.Equal(t, "This field is required", errs["name"])
}

func TestFormatValidationErrors(t *testing.T) {
	assert.Equal(t, "name: This field is required", FormatValidationErrors(map[string]string{"name": "This field is required"}))
}

func validConfig() *Config {
	return &Config{
		JWT:       JWTConfig{Secret: "0123456789abcdef0123456789abcdef", ExpiryHours: 24},
		OTP:       OTPConfig{ExpiryMinutes: 5, RateLimitSeconds: 60, Length: 6, MaxAttempts: 5},
		RateLimit: RateLimitConfig{Backend: "memory"},
	}
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{name: "short secret", modify: func(c *Config) { c.JWT.Secret = "short" }},
		{name: "zero expiry", modify: func(c *Config) { c.JWT.ExpiryHours = 0 }},
		{name: "zero otp length", modify: func(c *Config) { c.OTP.Length = 0 }},
		{name: "negative cooldown", modify: func(c *Config) { c.OTP.RateLimitSeconds = -1 }},
		{name: "unknown limiter", modify: func(c *Config) { c.RateLimit.Backend = "etcd" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.modify(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestConfigDurations(t *testing.T) {
	c := validConfig()
	assert.Equal(t, "24h0m0s", c.JWT.Expiry().String())
	assert.Equal(t, "5m0s", c.OTP.Expiry().String())
	assert.Equal(t, "1m0s", c.OTP.Cooldown().String())
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"http://a", "http://b"}, splitList(" http://a, ,http://b "))
	assert.Nil(t, splitList(""))
}
