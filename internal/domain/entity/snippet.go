package entity

import (
	"strings"
	"time"
)

// maxSnippetCodeBytes caps a stored snippet body.
const maxSnippetCodeBytes = 64 << 10

// Snippet is a code snippet kept in the document store.
// Its identifiers are strings: ID is a UUID and OwnerID is the decimal
// form of the owning user's ID.
type Snippet struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Title       string    `json:"title"`
	Language    string    `json:"language"`
	Code        string    `json:"code"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Validate checks the snippet fields a user can set.
func (s *Snippet) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return &ValidationError{Field: "title", Message: "is required"}
	}
	if s.Code == "" {
		return &ValidationError{Field: "code", Message: "is required"}
	}
	if len(s.Code) > maxSnippetCodeBytes {
		return &ValidationError{Field: "code", Message: "is too long"}
	}
	return nil
}
