package repository

import (
	"context"

	"my-ankode/internal/domain/entity"
)

// CompetenceRepository returns nil, nil from Get when the competence does not exist.
type CompetenceRepository interface {
	Get(ctx context.Context, id int64) (*entity.Competence, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*entity.Competence, error)
	Create(ctx context.Context, competence *entity.Competence) error
	Update(ctx context.Context, competence *entity.Competence) error
	Delete(ctx context.Context, id int64) error
}
