// Package article provides the read side of ingested articles: listings
// scoped to a viewer and the per-user read and favorite flags.
package article

import "my-ankode/internal/domain/entity"

// ErrInvalidArticleID indicates that the provided article ID is invalid.
// Article IDs must be positive integers.
var ErrInvalidArticleID = &entity.ValidationError{Field: "id", Message: "must be positive"}
