package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"my-ankode/internal/domain/entity"
	"my-ankode/internal/repository"
)

type TaskRepo struct{ db *sql.DB }

func NewTaskRepo(db *sql.DB) repository.TaskRepository {
	return &TaskRepo{db: db}
}

func scanTask(row rowScanner) (*entity.Task, error) {
	var (
		t      entity.Task
		status string
	)
	if err := row.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &status, &t.Position, &t.CreatedAt); err != nil {
		return nil, err
	}
	t.Status = entity.TaskStatus(status)
	return &t, nil
}

func (repo *TaskRepo) Get(ctx context.Context, id int64) (*entity.Task, error) {
	const query = `
SELECT id, project_id, title, description, status, position, created_at
FROM tasks
WHERE id = $1`
	t, err := scanTask(repo.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return t, nil
}

func (repo *TaskRepo) ListByProject(ctx context.Context, projectID int64) ([]*entity.Task, error) {
	const query = `
SELECT id, project_id, title, description, status, position, created_at
FROM tasks
WHERE project_id = $1
ORDER BY position ASC, id ASC`
	rows, err := repo.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("ListByProject: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []*entity.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByProject: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (repo *TaskRepo) Create(ctx context.Context, t *entity.Task) error {
	const query = `
INSERT INTO tasks (project_id, title, description, status, position)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, created_at`
	err := repo.db.QueryRowContext(ctx, query,
		t.ProjectID, t.Title, t.Description, string(t.Status), t.Position,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *TaskRepo) Update(ctx context.Context, t *entity.Task) error {
	const query = `
UPDATE tasks SET
       title       = $1,
       description = $2,
       status      = $3,
       position    = $4
WHERE id = $5`
	res, err := repo.db.ExecContext(ctx, query, t.Title, t.Description, string(t.Status), t.Position, t.ID)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Update: %w", entity.ErrNotFound)
	}
	return nil
}

func (repo *TaskRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM tasks WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: %w", entity.ErrNotFound)
	}
	return nil
}
