package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"my-ankode/internal/domain/entity"
	"my-ankode/internal/repository"
)

type SourceRepo struct{ db *sql.DB }

func NewSourceRepo(db *sql.DB) repository.SourceRepository {
	return &SourceRepo{db: db}
}

const sourceColumns = `id, name, feed_url, owner_id, active, last_ingested_at, created_at`

func scanSource(row rowScanner) (*entity.Source, error) {
	var (
		src   entity.Source
		owner sql.NullInt64
	)
	if err := row.Scan(
		&src.ID, &src.Name, &src.FeedURL, &owner,
		&src.Active, &src.LastIngestedAt, &src.CreatedAt,
	); err != nil {
		return nil, err
	}
	src.OwnerID = scanNullableID(&owner.Int64, owner.Valid)
	return &src, nil
}

func (repo *SourceRepo) Get(ctx context.Context, id int64) (*entity.Source, error) {
	const query = `
SELECT ` + sourceColumns + `
FROM sources
WHERE id = $1
LIMIT 1`
	src, err := scanSource(repo.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return src, nil
}

func (repo *SourceRepo) ListActive(ctx context.Context) ([]*entity.Source, error) {
	const query = `
SELECT ` + sourceColumns + `
FROM sources
WHERE active = TRUE
ORDER BY id ASC`
	return repo.list(ctx, "ListActive", query)
}

// ListByOwner lists the public sources when ownerID is nil.
func (repo *SourceRepo) ListByOwner(ctx context.Context, ownerID *int64) ([]*entity.Source, error) {
	const query = `
SELECT ` + sourceColumns + `
FROM sources
WHERE owner_id IS NOT DISTINCT FROM $1::bigint
ORDER BY id ASC`
	return repo.list(ctx, "ListByOwner", query, nullableID(ownerID))
}

func (repo *SourceRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.Source, error) {
	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	sources := make([]*entity.Source, 0, 16)
	for rows.Next() {
		src, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		sources = append(sources, src)
	}
	return sources, rows.Err()
}

func (repo *SourceRepo) Create(ctx context.Context, src *entity.Source) error {
	const query = `
INSERT INTO sources (name, feed_url, owner_id, active)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at`
	err := repo.db.QueryRowContext(ctx, query,
		src.Name, src.FeedURL, nullableID(src.OwnerID), src.Active,
	).Scan(&src.ID, &src.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("Create: %w", entity.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *SourceRepo) DeleteOwned(ctx context.Context, id, ownerID int64) error {
	const query = `DELETE FROM sources WHERE id = $1 AND owner_id = $2`
	res, err := repo.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("DeleteOwned: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("DeleteOwned: %w", entity.ErrNotFound)
	}
	return nil
}

func (repo *SourceRepo) TouchIngestedAt(ctx context.Context, id int64, t time.Time) error {
	const query = `UPDATE sources SET last_ingested_at = $1 WHERE id = $2`
	if _, err := repo.db.ExecContext(ctx, query, t, id); err != nil {
		return fmt.Errorf("TouchIngestedAt: %w", err)
	}
	return nil
}
