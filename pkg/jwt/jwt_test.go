package jwt

import (
	"strings"
	"testing"
	"time"

	"exam-registration/pkg/clock"

	libJWT "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestManager(t *testing.T) (*Manager, *clock.Frozen) {
	t.Helper()

	clk := clock.NewFrozen(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	m, err := NewManager(testSecret, 24*time.Hour, clk)
	require.NoError(t, err)

	return m, clk
}

func TestNewManager_ShortSecret(t *testing.T) {
	_, err := NewManager("short", time.Hour, clock.New())
	assert.ErrorIs(t, err, ErrSigningKeyTooShort)
}

func TestSignVerify_RoundTrip(t *testing.T) {
	m, clk := newTestManager(t)

	tok, err := m.Sign("student@example.com", 42)
	require.NoError(t, err)
	assert.True(t, clk.Now().Add(24*time.Hour).Equal(tok.ExpiresAt))

	claims, err := m.Verify(tok.Value)
	require.NoError(t, err)
	assert.Equal(t, "student@example.com", claims.Email())
	assert.Equal(t, int64(42), claims.UserID)
	assert.NotEmpty(t, claims.ID)
	assert.True(t, clk.Now().Equal(claims.IssuedAt.Time))
}

func TestSign_UniqueTokenIDs(t *testing.T) {
	m, _ := newTestManager(t)

	a, err := m.Sign("student@example.com", 1)
	require.NoError(t, err)
	b, err := m.Sign("student@example.com", 1)
	require.NoError(t, err)

	assert.NotEqual(t, a.Value, b.Value)
}

func TestVerify_Rejects(t *testing.T) {
	m, _ := newTestManager(t)

	good, err := m.Sign("student@example.com", 7)
	require.NoError(t, err)

	other, err := NewManager(strings.Repeat("x", 32), time.Hour, clock.New())
	require.NoError(t, err)
	foreign, err := other.Sign("intruder@example.com", 8)
	require.NoError(t, err)

	goodParts := strings.Split(good.Value, ".")
	foreignParts := strings.Split(foreign.Value, ".")
	tampered := strings.Join([]string{goodParts[0], foreignParts[1], goodParts[2]}, ".")

	claims := Claims{
		RegisteredClaims: libJWT.RegisteredClaims{
			Subject:   "student@example.com",
			ExpiresAt: libJWT.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID: 7,
	}
	unsigned, err := libJWT.NewWithClaims(libJWT.SigningMethodNone, claims).
		SignedString(libJWT.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	hs512, err := libJWT.NewWithClaims(libJWT.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	noExpiry, err := libJWT.NewWithClaims(libJWT.SigningMethodHS256, Claims{
		RegisteredClaims: libJWT.RegisteredClaims{Subject: "student@example.com"},
		UserID:           7,
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	cases := map[string]string{
		"empty":          "",
		"garbage":        "not-a-token",
		"two segments":   "a.b",
		"foreign secret": foreign.Value,
		"tampered":       tampered,
		"alg none":       unsigned,
		"wrong alg":      hs512,
		"no expiry":      noExpiry,
	}

	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				_, err := m.Verify(tok)
				assert.ErrorIs(t, err, ErrInvalidToken)
			})
		})
	}
}

func TestVerify_Expired(t *testing.T) {
	m, clk := newTestManager(t)

	tok, err := m.Sign("student@example.com", 3)
	require.NoError(t, err)

	clk.Advance(24*time.Hour + time.Second)

	_, err = m.Verify(tok.Value)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
