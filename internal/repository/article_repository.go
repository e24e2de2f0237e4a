package repository

import (
	"context"

	"my-ankode/internal/domain/entity"
)

// ArticleRepository stores ingested articles and the per-user read and
// favorite state attached to them.
type ArticleRepository interface {
	Get(ctx context.Context, id int64) (*entity.Article, error)
	// FindByURL returns nil, nil when no article has the given URL.
	FindByURL(ctx context.Context, url string) (*entity.Article, error)
	// InsertBatch stores all articles in one transaction. Articles whose URL
	// already exists are skipped; the return value counts rows actually inserted.
	InsertBatch(ctx context.Context, articles []*entity.Article) (int, error)
	ListForViewer(ctx context.Context, viewerID *int64, filter entity.ArticleFilter) ([]*entity.ArticleView, error)
	GetForViewer(ctx context.Context, id int64, viewerID *int64) (*entity.ArticleView, error)
	ListFavorites(ctx context.Context, userID int64, filter entity.ArticleFilter) ([]*entity.ArticleView, error)
	SetRead(ctx context.Context, articleID, userID int64, read bool) error
	SetFavorite(ctx context.Context, articleID, userID int64, favorite bool) error
}
