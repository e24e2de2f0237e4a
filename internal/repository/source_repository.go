package repository

import (
	"context"
	"time"

	"my-ankode/internal/domain/entity"
)

type SourceRepository interface {
	Get(ctx context.Context, id int64) (*entity.Source, error)
	ListActive(ctx context.Context) ([]*entity.Source, error)
	ListByOwner(ctx context.Context, ownerID *int64) ([]*entity.Source, error)
	Create(ctx context.Context, source *entity.Source) error
	// DeleteOwned removes a source only when it belongs to ownerID.
	// It returns entity.ErrNotFound when nothing matched.
	DeleteOwned(ctx context.Context, id, ownerID int64) error
	TouchIngestedAt(ctx context.Context, id int64, t time.Time) error
}
