package repository

import (
	"context"

	"my-ankode/internal/domain/entity"
)

// SnippetRepository is backed by the document store. Get returns
// entity.ErrNotFound for unknown IDs.
type SnippetRepository interface {
	Get(ctx context.Context, id string) (*entity.Snippet, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*entity.Snippet, error)
	Create(ctx context.Context, snippet *entity.Snippet) error
	Update(ctx context.Context, snippet *entity.Snippet) error
	Delete(ctx context.Context, id string) error
}
