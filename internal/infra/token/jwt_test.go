package token

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newManager(t *testing.T) *JWTManager {
	t.Helper()
	m, err := NewJWTManager(testSecret, time.Hour, "my-ankode")
	require.NoError(t, err)
	return m
}

func TestNewJWTManager_Rejects(t *testing.T) {
	_, err := NewJWTManager("short", time.Hour, "x")
	assert.Error(t, err)

	_, err = NewJWTManager(testSecret, 0, "x")
	assert.Error(t, err)
}

func TestJWTManager_RoundTrip(t *testing.T) {
	m := newManager(t)

	tok, err := m.Issue(IntentAPI, "42")
	require.NoError(t, err)

	assert.True(t, m.Valid(IntentAPI, "42", tok))

	sub, err := m.Subject(IntentAPI, tok)
	require.NoError(t, err)
	assert.Equal(t, "42", sub)
}

func TestJWTManager_Valid_Rejects(t *testing.T) {
	m := newManager(t)
	tok, err := m.Issue(IntentAPI, "42")
	require.NoError(t, err)

	other, err := NewJWTManager(strings.Repeat("z", 32), time.Hour, "my-ankode")
	require.NoError(t, err)

	tests := []struct {
		name    string
		intent  string
		subject string
		token   string
		m       *JWTManager
	}{
		{"other subject", IntentAPI, "43", tok, m},
		{"anonymous subject", IntentAPI, "anonymous", tok, m},
		{"other intent", IntentAccess, "42", tok, m},
		{"other secret", IntentAPI, "42", tok, other},
		{"garbage", IntentAPI, "42", "not-a-token", m},
		{"empty", IntentAPI, "42", "", m},
		{"tampered", IntentAPI, "42", tok[:len(tok)-2] + "xx", m},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, tt.m.Valid(tt.intent, tt.subject, tt.token))
		})
	}
}

func TestJWTManager_Expired(t *testing.T) {
	m := newManager(t)
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issued }
	tok, err := m.Issue(IntentAPI, "anonymous")
	require.NoError(t, err)

	m.now = func() time.Time { return issued.Add(59 * time.Minute) }
	assert.True(t, m.Valid(IntentAPI, "anonymous", tok))

	m.now = func() time.Time { return issued.Add(61 * time.Minute) }
	assert.False(t, m.Valid(IntentAPI, "anonymous", tok))
}

func TestJWTManager_RejectsOtherAlgorithms(t *testing.T) {
	m := newManager(t)
	claims := Claims{
		Intent: IntentAPI,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "42",
			Issuer:    "my-ankode",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	assert.False(t, m.Valid(IntentAPI, "42", tok))

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	assert.False(t, m.Valid(IntentAPI, "42", none))
}

func TestJWTManager_IntentMismatchError(t *testing.T) {
	m := newManager(t)
	tok, err := m.Issue(IntentAccess, "7")
	require.NoError(t, err)

	_, err = m.Subject(IntentAPI, tok)
	assert.ErrorIs(t, err, ErrIntentMismatch)
}

func TestJWTManager_TokensAreUnique(t *testing.T) {
	m := newManager(t)
	a, _ := m.Issue(IntentAPI, "1")
	b, _ := m.Issue(IntentAPI, "1")
	assert.NotEqual(t, a, b)
}
