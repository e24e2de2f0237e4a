package entity

import (
	"strings"
	"time"
	"unicode/utf8"
)

// maxSourceNameLength bounds the display label of a source.
const maxSourceNameLength = 100

// Source is a veille feed subscription.
// A nil OwnerID marks a public source, ingested without user scope.
type Source struct {
	ID             int64
	Name           string
	FeedURL        string
	OwnerID        *int64
	Active         bool
	LastIngestedAt *time.Time
	CreatedAt      time.Time
}

// Validate checks the fields required before a source is stored.
func (s *Source) Validate() error {
	if err := validateLabel("name", s.Name); err != nil {
		return err
	}
	return ValidateURL(s.FeedURL)
}

// ValidateSourceLabel checks the display label attached to ingested articles.
func ValidateSourceLabel(label string) error {
	return validateLabel("source", label)
}

func validateLabel(field, label string) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return &ValidationError{Field: field, Message: "is required"}
	}
	if utf8.RuneCountInString(label) > maxSourceNameLength {
		return &ValidationError{Field: field, Message: "is too long"}
	}
	return nil
}
