package repository

import (
	"context"

	"my-ankode/internal/domain/entity"
)

// ProjectRepository returns nil, nil from Get when the project does not exist.
type ProjectRepository interface {
	Get(ctx context.Context, id int64) (*entity.Project, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*entity.Project, error)
	Create(ctx context.Context, project *entity.Project) error
	Update(ctx context.Context, project *entity.Project) error
	Delete(ctx context.Context, id int64) error
}

// TaskRepository returns nil, nil from Get when the task does not exist.
type TaskRepository interface {
	Get(ctx context.Context, id int64) (*entity.Task, error)
	ListByProject(ctx context.Context, projectID int64) ([]*entity.Task, error)
	Create(ctx context.Context, task *entity.Task) error
	Update(ctx context.Context, task *entity.Task) error
	Delete(ctx context.Context, id int64) error
}
