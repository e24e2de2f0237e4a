package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"my-ankode/internal/domain/entity"
	"my-ankode/internal/repository"
)

type CompetenceRepo struct{ db *sql.DB }

func NewCompetenceRepo(db *sql.DB) repository.CompetenceRepository {
	return &CompetenceRepo{db: db}
}

func (repo *CompetenceRepo) Get(ctx context.Context, id int64) (*entity.Competence, error) {
	const query = `
SELECT id, owner_id, name, level, notes, created_at
FROM competences
WHERE id = $1`
	var c entity.Competence
	err := repo.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.OwnerID, &c.Name, &c.Level, &c.Notes, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return &c, nil
}

func (repo *CompetenceRepo) ListByOwner(ctx context.Context, ownerID int64) ([]*entity.Competence, error) {
	const query = `
SELECT id, owner_id, name, level, notes, created_at
FROM competences
WHERE owner_id = $1
ORDER BY name ASC, id ASC`
	rows, err := repo.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("ListByOwner: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*entity.Competence
	for rows.Next() {
		var c entity.Competence
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Level, &c.Notes, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("ListByOwner: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (repo *CompetenceRepo) Create(ctx context.Context, c *entity.Competence) error {
	const query = `
INSERT INTO competences (owner_id, name, level, notes)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at`
	if err := repo.db.QueryRowContext(ctx, query, c.OwnerID, c.Name, c.Level, c.Notes).Scan(&c.ID, &c.CreatedAt); err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *CompetenceRepo) Update(ctx context.Context, c *entity.Competence) error {
	const query = `
UPDATE competences SET
       name  = $1,
       level = $2,
       notes = $3
WHERE id = $4`
	res, err := repo.db.ExecContext(ctx, query, c.Name, c.Level, c.Notes, c.ID)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Update: %w", entity.ErrNotFound)
	}
	return nil
}

func (repo *CompetenceRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM competences WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: %w", entity.ErrNotFound)
	}
	return nil
}
