package jwt

import (
	"errors"
	"time"

	libJWT "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrSigningKeyTooShort is returned when the HS256 secret is shorter than 32 bytes.
	ErrSigningKeyTooShort = errors.New("HS256 signing key must be at least 32 bytes")

	// ErrInvalidToken covers every token that is malformed, tampered, wrongly signed or expired.
	ErrInvalidToken = errors.New("invalid token")
)

const minSecretLen = 32

type clocker interface {
	Now() time.Time
}

// Claims carries the session identity. Subject holds the account email.
type Claims struct {
	libJWT.RegisteredClaims
	UserID int64 `json:"user_id"`
}

// Email returns the subject claim.
func (c Claims) Email() string {
	return c.Subject
}

// Token is a signed session token with its expiry.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// Manager signs and verifies HS256 session tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
	clock  clocker
}

func NewManager(secret string, ttl time.Duration, clock clocker) (*Manager, error) {
	if len(secret) < minSecretLen {
		return nil, ErrSigningKeyTooShort
	}

	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		clock:  clock,
	}, nil
}

// Sign mints a token for the account.
func (m *Manager) Sign(email string, userID int64) (*Token, error) {
	now := m.clock.Now()
	expiresAt := now.Add(m.ttl)

	value, err := libJWT.
		NewWithClaims(libJWT.SigningMethodHS256, Claims{
			RegisteredClaims: libJWT.RegisteredClaims{
				ID:        uuid.NewString(),
				Subject:   email,
				IssuedAt:  libJWT.NewNumericDate(now),
				ExpiresAt: libJWT.NewNumericDate(expiresAt),
			},
			UserID: userID,
		}).
		SignedString(m.secret)
	if err != nil {
		return nil, err
	}

	return &Token{Value: value, ExpiresAt: expiresAt.Truncate(time.Second)}, nil
}

// Verify parses tokenStr and checks signature, algorithm and expiry.
// Every failure is reported as ErrInvalidToken.
func (m *Manager) Verify(tokenStr string) (*Claims, error) {
	var claims Claims

	token, err := libJWT.ParseWithClaims(tokenStr, &claims,
		func(t *libJWT.Token) (any, error) {
			if t.Method != libJWT.SigningMethodHS256 {
				return nil, ErrInvalidToken
			}
			return m.secret, nil
		},
		libJWT.WithValidMethods([]string{libJWT.SigningMethodHS256.Alg()}),
		libJWT.WithExpirationRequired(),
		libJWT.WithTimeFunc(m.clock.Now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Subject == "" || claims.UserID <= 0 {
		return nil, ErrInvalidToken
	}

	return &claims, nil
}
