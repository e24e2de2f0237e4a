package article

import (
	"context"
	"fmt"

	"my-ankode/internal/domain/entity"
	"my-ankode/internal/repository"
)

// Service provides article use cases. Every caller sees every article; the
// viewer only selects whose read and favorite flags are attached.
type Service struct {
	Repo repository.ArticleRepository
}

// List returns articles with the read and favorite flags of viewerID.
func (s *Service) List(ctx context.Context, viewerID *int64, filter entity.ArticleFilter) ([]*entity.ArticleView, error) {
	views, err := s.Repo.ListForViewer(ctx, viewerID, filter.Normalize())
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return views, nil
}

// Get returns one article, or entity.ErrNotFound.
func (s *Service) Get(ctx context.Context, id int64, viewerID *int64) (*entity.ArticleView, error) {
	if id <= 0 {
		return nil, ErrInvalidArticleID
	}
	view, err := s.Repo.GetForViewer(ctx, id, viewerID)
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	if view == nil {
		return nil, entity.ErrNotFound
	}
	return view, nil
}

// Favorites lists the articles userID marked as favorite.
func (s *Service) Favorites(ctx context.Context, userID int64, filter entity.ArticleFilter) ([]*entity.ArticleView, error) {
	views, err := s.Repo.ListFavorites(ctx, userID, filter.Normalize())
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return views, nil
}

// MarkRead sets or clears the read flag of userID on an existing article.
func (s *Service) MarkRead(ctx context.Context, id, userID int64, read bool) error {
	if err := s.ensureExists(ctx, id, userID); err != nil {
		return err
	}
	if err := s.Repo.SetRead(ctx, id, userID, read); err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	return nil
}

// MarkFavorite sets or clears the favorite flag of userID on an existing article.
func (s *Service) MarkFavorite(ctx context.Context, id, userID int64, favorite bool) error {
	if err := s.ensureExists(ctx, id, userID); err != nil {
		return err
	}
	if err := s.Repo.SetFavorite(ctx, id, userID, favorite); err != nil {
		return fmt.Errorf("mark favorite: %w", err)
	}
	return nil
}

func (s *Service) ensureExists(ctx context.Context, id, userID int64) error {
	_, err := s.Get(ctx, id, &userID)
	return err
}
