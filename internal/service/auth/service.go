// Package auth registers accounts and exchanges credentials for access tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"my-ankode/internal/domain/entity"
	"my-ankode/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// AccessIntent is the intent claim carried by bearer tokens.
const AccessIntent = "access"

// ErrInvalidCredentials hides whether the email or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Credentials represents authentication credentials.
type Credentials struct {
	Email    string
	Password string
}

// CredentialRequirements defines password policy requirements.
type CredentialRequirements struct {
	MinPasswordLength int
	WeakPasswords     []string
}

// DefaultRequirements is used when no security config overrides it.
func DefaultRequirements() CredentialRequirements {
	return CredentialRequirements{
		MinPasswordLength: 12,
		WeakPasswords:     []string{"password", "123456", "qwerty", "admin", "letmein"},
	}
}

// TokenManager issues and verifies signed tokens bound to an intent.
type TokenManager interface {
	Issue(intent, subject string) (string, error)
	Subject(intent, token string) (string, error)
}

// AuthService handles account registration and token exchange.
type AuthService struct {
	users        repository.UserRepository
	tokens       TokenManager
	requirements CredentialRequirements
	cost         int
	// dummyHash keeps Login timing similar for unknown emails.
	dummyHash []byte
}

// NewAuthService creates a new authentication service.
func NewAuthService(users repository.UserRepository, tokens TokenManager, req CredentialRequirements) *AuthService {
	return newAuthService(users, tokens, req, bcrypt.DefaultCost)
}

func newAuthService(users repository.UserRepository, tokens TokenManager, req CredentialRequirements, cost int) *AuthService {
	dummy, _ := bcrypt.GenerateFromPassword([]byte("my-ankode-dummy-password"), cost)
	return &AuthService{
		users:        users,
		tokens:       tokens,
		requirements: req,
		cost:         cost,
		dummyHash:    dummy,
	}
}

// Requirements returns the password policy.
func (s *AuthService) Requirements() CredentialRequirements {
	return s.requirements
}

// ValidatePassword applies the password policy.
func (s *AuthService) ValidatePassword(password string) error {
	if len(password) < s.requirements.MinPasswordLength {
		return &entity.ValidationError{
			Field:   "password",
			Message: fmt.Sprintf("must be at least %d characters", s.requirements.MinPasswordLength),
		}
	}
	if len(password) > 72 {
		return &entity.ValidationError{Field: "password", Message: "must be at most 72 bytes"}
	}
	lower := strings.ToLower(password)
	for _, weak := range s.requirements.WeakPasswords {
		if weak != "" && strings.HasPrefix(lower, strings.ToLower(weak)) {
			return &entity.ValidationError{Field: "password", Message: "is too weak"}
		}
	}
	return nil
}

// Register creates an account. It returns entity.ErrConflict when the
// email is already registered.
func (s *AuthService) Register(ctx context.Context, creds Credentials) (*entity.User, error) {
	email := entity.NormalizeEmail(creds.Email)
	if err := entity.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := s.ValidatePassword(creds.Password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &entity.User{Email: email, PasswordHash: string(hash)}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return user, nil
}

// Login checks the credentials and returns a signed access token.
func (s *AuthService) Login(ctx context.Context, creds Credentials) (string, error) {
	email := entity.NormalizeEmail(creds.Email)
	if email == "" || creds.Password == "" {
		return "", ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	if user == nil {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(creds.Password))
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(AccessIntent, user.Subject())
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// Authenticate resolves a bearer token to its user. A token whose user
// no longer exists is rejected.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*entity.User, error) {
	subject, err := s.tokens.Subject(AccessIntent, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	id, err := strconv.ParseInt(subject, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidCredentials)
	}

	user, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: unknown user", ErrInvalidCredentials)
	}
	return user, nil
}
