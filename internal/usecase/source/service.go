package source

import (
	"context"
	"fmt"
	"strings"

	"my-ankode/internal/domain/entity"
	"my-ankode/internal/repository"
)

// FeedLink is a feed advertised by an HTML page.
type FeedLink struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Type  string `json:"type"`
}

// Discoverer finds the feeds an HTML page links to.
type Discoverer interface {
	Discover(ctx context.Context, pageURL string) ([]FeedLink, error)
}

// CreateInput represents the input parameters for creating a new source.
// A nil OwnerID creates a public source.
type CreateInput struct {
	Name    string
	FeedURL string
	OwnerID *int64
}

// Service provides source management use cases.
type Service struct {
	Repo       repository.SourceRepository
	Discoverer Discoverer
	// ValidateURL checks user-supplied URLs before they are stored or fetched.
	ValidateURL func(string) error
}

// NewService returns a Service that only accepts URLs resolving to public hosts.
func NewService(repo repository.SourceRepository, discoverer Discoverer) *Service {
	return &Service{Repo: repo, Discoverer: discoverer, ValidateURL: entity.ValidatePublicURL}
}

func (s *Service) validateURL(raw string) error {
	if s.ValidateURL == nil {
		return entity.ValidateURL(raw)
	}
	return s.ValidateURL(raw)
}

// ListForOwner returns the sources of ownerID, or the public sources when ownerID is nil.
func (s *Service) ListForOwner(ctx context.Context, ownerID *int64) ([]*entity.Source, error) {
	sources, err := s.Repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	return sources, nil
}

// ListActive returns every active source regardless of owner.
func (s *Service) ListActive(ctx context.Context) ([]*entity.Source, error) {
	sources, err := s.Repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active sources: %w", err)
	}
	return sources, nil
}

// Create stores a new active source.
// It returns entity.ErrConflict when the owner already follows the feed.
func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.Source, error) {
	src := &entity.Source{
		Name:    strings.TrimSpace(in.Name),
		FeedURL: strings.TrimSpace(in.FeedURL),
		OwnerID: in.OwnerID,
		Active:  true,
	}
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if err := s.validateURL(src.FeedURL); err != nil {
		return nil, err
	}

	if err := s.Repo.Create(ctx, src); err != nil {
		return nil, fmt.Errorf("create source: %w", err)
	}
	return src, nil
}

// Delete removes a source owned by ownerID.
func (s *Service) Delete(ctx context.Context, id, ownerID int64) error {
	if id <= 0 {
		return &entity.ValidationError{Field: "id", Message: "must be positive"}
	}
	if err := s.Repo.DeleteOwned(ctx, id, ownerID); err != nil {
		return fmt.Errorf("delete source: %w", err)
	}
	return nil
}

// Discover lists the feeds advertised by pageURL.
// It returns ErrNoFeedFound when the page links to none.
func (s *Service) Discover(ctx context.Context, pageURL string) ([]FeedLink, error) {
	pageURL = strings.TrimSpace(pageURL)
	if err := s.validateURL(pageURL); err != nil {
		return nil, err
	}
	links, err := s.Discoverer.Discover(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("discover feeds: %w", err)
	}
	if len(links) == 0 {
		return nil, ErrNoFeedFound
	}
	return links, nil
}
