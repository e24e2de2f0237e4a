package entity

import (
	"net/mail"
	"strconv"
	"strings"
	"time"
)

// User is an authenticated account. Every owned resource refers to a user ID.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Subject returns the user ID in the string form used by token subjects
// and by stores that key owners as strings.
func (u *User) Subject() string {
	return strconv.FormatInt(u.ID, 10)
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks that the address parses as a bare RFC 5322 address.
func ValidateEmail(email string) error {
	if email == "" {
		return &ValidationError{Field: "email", Message: "is required"}
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return &ValidationError{Field: "email", Message: "is invalid"}
	}
	return nil
}
