// Package nonce issues and verifies the anti-forgery tokens that meta box
// forms carry. Tokens are HS256 JWTs bound to an action and a record, with a
// short expiry.
package nonce

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTTL bounds how long a rendered form stays submittable.
const DefaultTTL = 12 * time.Hour

const issuer = "go-metabox"

// ErrInvalid is returned for missing, expired, tampered or mismatched tokens.
var ErrInvalid = errors.New("nonce: invalid token")

// Claims is the token payload.
type Claims struct {
	Action string `json:"act"`

	jwt.RegisteredClaims
}

// Option customises a Manager.
type Option func(*Manager)

// WithTTL overrides the token lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// Manager signs and checks tokens with a shared secret.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// New builds a Manager. The secret must not be empty.
func New(secret []byte, opts ...Option) (*Manager, error) {
	if len(secret) == 0 {
		return nil, errors.New("nonce: secret is required")
	}
	m := &Manager{
		secret: append([]byte(nil), secret...),
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m, nil
}

// Issue signs a token for action on subject (usually the record id).
func (m *Manager) Issue(action, subject string) (string, error) {
	now := m.now().UTC()
	claims := Claims{
		Action: action,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("nonce: sign: %w", err)
	}
	return token, nil
}

// Verify checks the signature, expiry, action and subject. Every failure
// wraps ErrInvalid.
func (m *Manager) Verify(token, action, subject string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("%w: empty", ErrInvalid)
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return ErrInvalid
	}
	if claims.Action != action || claims.Subject != subject {
		return fmt.Errorf("%w: scope mismatch", ErrInvalid)
	}
	return nil
}
