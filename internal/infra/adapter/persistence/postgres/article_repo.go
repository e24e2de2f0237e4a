package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"my-ankode/internal/domain/entity"
	"my-ankode/internal/repository"

	"github.com/jackc/pgx/v5/pgtype"
)

type ArticleRepo struct{ db *sql.DB }

func NewArticleRepo(db *sql.DB) repository.ArticleRepository {
	return &ArticleRepo{db: db}
}

const articleColumns = `a.id, a.title, a.url, a.description, a.source, a.tags, a.published_at, a.created_at, a.owner_id`

type rowScanner interface {
	Scan(dest ...any) error
}

// scanArticle reads articleColumns followed by extra destinations.
// pgtype.Map caches scan plans and is not safe for concurrent use, so each
// row gets its own.
func (repo *ArticleRepo) scanArticle(row rowScanner, extra ...any) (*entity.Article, error) {
	var (
		a     entity.Article
		owner sql.NullInt64
	)
	dest := []any{
		&a.ID, &a.Title, &a.URL, &a.Description, &a.Source,
		pgtype.NewMap().SQLScanner(&a.Tags), &a.PublishedAt, &a.CreatedAt, &owner,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	a.OwnerID = scanNullableID(&owner.Int64, owner.Valid)
	if len(a.Tags) == 0 {
		a.Tags = nil
	}
	return &a, nil
}

func (repo *ArticleRepo) scanView(row rowScanner) (*entity.ArticleView, error) {
	var read, favorite bool
	a, err := repo.scanArticle(row, &read, &favorite)
	if err != nil {
		return nil, err
	}
	return &entity.ArticleView{Article: *a, Read: read, Favorite: favorite}, nil
}

func (repo *ArticleRepo) Get(ctx context.Context, id int64) (*entity.Article, error) {
	const query = `
SELECT ` + articleColumns + `
FROM articles a
WHERE a.id = $1
LIMIT 1`
	a, err := repo.scanArticle(repo.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return a, nil
}

func (repo *ArticleRepo) FindByURL(ctx context.Context, url string) (*entity.Article, error) {
	const query = `
SELECT ` + articleColumns + `
FROM articles a
WHERE a.url = $1
LIMIT 1`
	a, err := repo.scanArticle(repo.db.QueryRowContext(ctx, query, url))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("FindByURL: %w", err)
	}
	return a, nil
}

// InsertBatch relies on the unique url index: a row that loses the race
// against a concurrent ingestion is skipped, not updated.
func (repo *ArticleRepo) InsertBatch(ctx context.Context, articles []*entity.Article) (int, error) {
	if len(articles) == 0 {
		return 0, nil
	}
	const query = `
INSERT INTO articles
       (title, url, description, source, tags, published_at, created_at, owner_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (url) DO NOTHING`

	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("InsertBatch: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	inserted := 0
	for _, a := range articles {
		tags := a.Tags
		if tags == nil {
			tags = []string{}
		}
		res, err := tx.ExecContext(ctx, query,
			a.Title, a.URL, a.Description, a.Source,
			tags, a.PublishedAt, a.CreatedAt, nullableID(a.OwnerID),
		)
		if err != nil {
			return 0, fmt.Errorf("InsertBatch: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("InsertBatch: rows affected: %w", err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("InsertBatch: commit: %w", err)
	}
	return inserted, nil
}

// viewerFlags selects the read and favorite state of viewer $1.
// A NULL viewer matches no rows, so both flags are false.
const viewerFlags = `,
       EXISTS (SELECT 1 FROM article_reads r WHERE r.article_id = a.id AND r.user_id = $1) AS read,
       EXISTS (SELECT 1 FROM article_favorites f WHERE f.article_id = a.id AND f.user_id = $1) AS favorite`

// ListForViewer lists every article. owner_id records which ingestion
// stored the row and never restricts who can read it.
func (repo *ArticleRepo) ListForViewer(ctx context.Context, viewerID *int64, filter entity.ArticleFilter) ([]*entity.ArticleView, error) {
	const query = `
SELECT ` + articleColumns + viewerFlags + `
FROM articles a
WHERE ($2::text = '' OR a.source = $2::text)
ORDER BY a.published_at DESC NULLS LAST, a.id DESC
LIMIT $3 OFFSET $4`
	filter = filter.Normalize()
	return repo.listViews(ctx, "ListForViewer", query,
		nullableID(viewerID), filter.Source, filter.Limit, filter.Offset)
}

func (repo *ArticleRepo) GetForViewer(ctx context.Context, id int64, viewerID *int64) (*entity.ArticleView, error) {
	const query = `
SELECT ` + articleColumns + viewerFlags + `
FROM articles a
WHERE a.id = $2
LIMIT 1`
	v, err := repo.scanView(repo.db.QueryRowContext(ctx, query, nullableID(viewerID), id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetForViewer: %w", err)
	}
	return v, nil
}

func (repo *ArticleRepo) ListFavorites(ctx context.Context, userID int64, filter entity.ArticleFilter) ([]*entity.ArticleView, error) {
	const query = `
SELECT ` + articleColumns + viewerFlags + `
FROM articles a
JOIN article_favorites fav ON fav.article_id = a.id AND fav.user_id = $1
WHERE ($2::text = '' OR a.source = $2::text)
ORDER BY fav.created_at DESC, a.id DESC
LIMIT $3 OFFSET $4`
	filter = filter.Normalize()
	return repo.listViews(ctx, "ListFavorites", query,
		userID, filter.Source, filter.Limit, filter.Offset)
}

func (repo *ArticleRepo) listViews(ctx context.Context, op, query string, args ...any) ([]*entity.ArticleView, error) {
	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	views := make([]*entity.ArticleView, 0, entity.DefaultPageLimit)
	for rows.Next() {
		v, err := repo.scanView(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return views, nil
}

func (repo *ArticleRepo) SetRead(ctx context.Context, articleID, userID int64, read bool) error {
	const (
		mark = `
INSERT INTO article_reads (article_id, user_id) VALUES ($1, $2)
ON CONFLICT DO NOTHING`
		unmark = `DELETE FROM article_reads WHERE article_id = $1 AND user_id = $2`
	)
	query := unmark
	if read {
		query = mark
	}
	if _, err := repo.db.ExecContext(ctx, query, articleID, userID); err != nil {
		return fmt.Errorf("SetRead: %w", err)
	}
	return nil
}

func (repo *ArticleRepo) SetFavorite(ctx context.Context, articleID, userID int64, favorite bool) error {
	const (
		mark = `
INSERT INTO article_favorites (article_id, user_id) VALUES ($1, $2)
ON CONFLICT DO NOTHING`
		unmark = `DELETE FROM article_favorites WHERE article_id = $1 AND user_id = $2`
	)
	query := unmark
	if favorite {
		query = mark
	}
	if _, err := repo.db.ExecContext(ctx, query, articleID, userID); err != nil {
		return fmt.Errorf("SetFavorite: %w", err)
	}
	return nil
}
