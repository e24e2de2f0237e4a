package ingest

import (
	"errors"
	"fmt"

	"my-ankode/internal/domain/entity"
)

// FetchError reports a feed that could not be downloaded. StatusCode is
// zero for transport failures.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch feed %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch feed %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports a body that is not a well-formed RSS, Atom or JSON feed.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse feed %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// errInternal is reported when a collaborator panics mid-run.
var errInternal = errors.New("internal error")

// errorType labels err for logs and metrics.
func errorType(err error) string {
	var fetchErr *FetchError
	var parseErr *ParseError
	switch {
	case errors.As(err, &fetchErr):
		return "fetch"
	case errors.As(err, &parseErr):
		return "parse"
	case errors.Is(err, entity.ErrInvalidInput):
		return "validation"
	case errors.Is(err, errInternal):
		return "internal"
	default:
		return "storage"
	}
}
