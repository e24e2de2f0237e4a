package entity

import (
	"strings"
	"time"
)

// MaxCompetenceLevel is the top of the self-assessment scale.
const MaxCompetenceLevel = 5

// Competence is an entry of a user's skills tracker.
type Competence struct {
	ID        int64
	OwnerID   int64
	Name      string
	Level     int
	Notes     string
	CreatedAt time.Time
}

// Validate checks the competence fields a user can set.
func (c *Competence) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return &ValidationError{Field: "name", Message: "is required"}
	}
	if c.Level < 0 || c.Level > MaxCompetenceLevel {
		return &ValidationError{Field: "level", Message: "must be between 0 and 5"}
	}
	return nil
}
