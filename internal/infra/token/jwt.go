// Package token issues and verifies signed HS256 tokens bound to an intent
// and a subject. The same manager type backs access tokens and the
// anti-forgery tokens required on mutating API calls.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Intents used by the API.
const (
	IntentAccess = "access"
	IntentAPI    = "api"
)

// MinSecretLength is the shortest accepted signing secret.
const MinSecretLength = 32

var (
	// ErrInvalidToken covers bad signatures, malformed tokens and expiry.
	ErrInvalidToken = errors.New("invalid token")
	// ErrIntentMismatch indicates a token issued for another purpose.
	ErrIntentMismatch = errors.New("token intent mismatch")
)

// Claims are the JWT claims carried by every token.
type Claims struct {
	Intent string `json:"intent"`
	jwt.RegisteredClaims
}

// JWTManager signs tokens with a shared secret.
type JWTManager struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewJWTManager returns a manager signing with secret. Tokens expire after ttl.
func NewJWTManager(secret string, ttl time.Duration, issuer string) (*JWTManager, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("token secret must be at least %d characters", MinSecretLength)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %v", ttl)
	}
	return &JWTManager{secret: []byte(secret), ttl: ttl, issuer: issuer, now: time.Now}, nil
}

// TTL returns how long issued tokens stay valid.
func (m *JWTManager) TTL() time.Duration { return m.ttl }

// Issue signs a token for intent and subject.
func (m *JWTManager) Issue(intent, subject string) (string, error) {
	now := m.now()
	claims := Claims{
		Intent: intent,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    m.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Subject verifies tok for intent and returns its subject.
func (m *JWTManager) Subject(intent, tok string) (string, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tok, claims,
		func(*jwt.Token) (interface{}, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(m.issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	if claims.Intent != intent {
		return "", ErrIntentMismatch
	}
	return claims.Subject, nil
}

// Valid reports whether tok was issued by this manager for intent and
// subject and has not expired.
func (m *JWTManager) Valid(intent, subject, tok string) bool {
	got, err := m.Subject(intent, tok)
	return err == nil && got == subject
}
