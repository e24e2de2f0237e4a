package entity

import "time"

// Article is a feed item stored by the ingestion service.
// URL is the natural key: at most one article exists per URL.
type Article struct {
	ID          int64
	Title       string
	URL         string
	Description string
	Source      string
	Tags        []string
	PublishedAt *time.Time
	CreatedAt   time.Time
	// OwnerID records the user whose ingestion stored the article, nil for
	// public ingestion. It does not restrict readers.
	OwnerID *int64
}

// IsPublic reports whether the article was ingested without a user scope.
func (a *Article) IsPublic() bool {
	return a.OwnerID == nil
}

// ArticleView is an article as seen by one viewer, with that viewer's
// read and favorite flags.
type ArticleView struct {
	Article
	Read     bool
	Favorite bool
}

// ArticleFilter narrows article listings.
type ArticleFilter struct {
	Source string
	Limit  int
	Offset int
}

// Normalize clamps paging values into their accepted range.
func (f ArticleFilter) Normalize() ArticleFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultPageLimit
	}
	if f.Limit > MaxPageLimit {
		f.Limit = MaxPageLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)
