package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"my-ankode/internal/domain/entity"
	"my-ankode/internal/repository"
)

type ProjectRepo struct{ db *sql.DB }

func NewProjectRepo(db *sql.DB) repository.ProjectRepository {
	return &ProjectRepo{db: db}
}

func (repo *ProjectRepo) Get(ctx context.Context, id int64) (*entity.Project, error) {
	const query = `
SELECT id, owner_id, name, description, created_at
FROM projects
WHERE id = $1`
	var p entity.Project
	err := repo.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return &p, nil
}

func (repo *ProjectRepo) ListByOwner(ctx context.Context, ownerID int64) ([]*entity.Project, error) {
	const query = `
SELECT id, owner_id, name, description, created_at
FROM projects
WHERE owner_id = $1
ORDER BY created_at DESC, id DESC`
	rows, err := repo.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("ListByOwner: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var projects []*entity.Project
	for rows.Next() {
		var p entity.Project
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("ListByOwner: %w", err)
		}
		projects = append(projects, &p)
	}
	return projects, rows.Err()
}

func (repo *ProjectRepo) Create(ctx context.Context, p *entity.Project) error {
	const query = `
INSERT INTO projects (owner_id, name, description)
VALUES ($1, $2, $3)
RETURNING id, created_at`
	if err := repo.db.QueryRowContext(ctx, query, p.OwnerID, p.Name, p.Description).Scan(&p.ID, &p.CreatedAt); err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *ProjectRepo) Update(ctx context.Context, p *entity.Project) error {
	const query = `
UPDATE projects SET
       name        = $1,
       description = $2
WHERE id = $3`
	res, err := repo.db.ExecContext(ctx, query, p.Name, p.Description, p.ID)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Update: %w", entity.ErrNotFound)
	}
	return nil
}

func (repo *ProjectRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM projects WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: %w", entity.ErrNotFound)
	}
	return nil
}
