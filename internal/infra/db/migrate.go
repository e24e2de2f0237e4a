package db

import (
	"database/sql"
	_ "embed"
	"fmt"
)

//go:embed seeds/sources.sql
var seedSourcesSQL string

// schema is applied in order. Every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
    id            BIGSERIAL PRIMARY KEY,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE TABLE IF NOT EXISTS sources (
    id               BIGSERIAL PRIMARY KEY,
    name             TEXT NOT NULL,
    feed_url         TEXT NOT NULL,
    owner_id         BIGINT REFERENCES users(id) ON DELETE CASCADE,
    active           BOOLEAN NOT NULL DEFAULT TRUE,
    last_ingested_at TIMESTAMPTZ,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_sources_feed_owner ON sources(feed_url, COALESCE(owner_id, 0))`,
	`CREATE TABLE IF NOT EXISTS articles (
    id           BIGSERIAL PRIMARY KEY,
    title        TEXT NOT NULL,
    url          TEXT NOT NULL UNIQUE,
    description  TEXT NOT NULL DEFAULT '',
    source       TEXT NOT NULL,
    tags         TEXT[] NOT NULL DEFAULT '{}',
    published_at TIMESTAMPTZ,
    owner_id     BIGINT REFERENCES users(id) ON DELETE SET NULL,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE TABLE IF NOT EXISTS article_reads (
    article_id BIGINT NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
    user_id    BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (article_id, user_id)
)`,
	`CREATE TABLE IF NOT EXISTS article_favorites (
    article_id BIGINT NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
    user_id    BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (article_id, user_id)
)`,
	`CREATE TABLE IF NOT EXISTS projects (
    id          BIGSERIAL PRIMARY KEY,
    owner_id    BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    name        TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE TABLE IF NOT EXISTS tasks (
    id          BIGSERIAL PRIMARY KEY,
    project_id  BIGINT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
    title       TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    status      TEXT NOT NULL DEFAULT 'todo' CHECK (status IN ('todo', 'in_progress', 'done')),
    position    INTEGER NOT NULL DEFAULT 0,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE TABLE IF NOT EXISTS competences (
    id         BIGSERIAL PRIMARY KEY,
    owner_id   BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    name       TEXT NOT NULL,
    level      SMALLINT NOT NULL DEFAULT 0 CHECK (level BETWEEN 0 AND 5),
    notes      TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE INDEX IF NOT EXISTS idx_articles_published_at ON articles(published_at DESC NULLS LAST)`,
	`CREATE INDEX IF NOT EXISTS idx_articles_owner_id ON articles(owner_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sources_active ON sources(active) WHERE active = TRUE`,
	`CREATE INDEX IF NOT EXISTS idx_projects_owner_id ON projects(owner_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_project_id ON tasks(project_id, position)`,
	`CREATE INDEX IF NOT EXISTS idx_competences_owner_id ON competences(owner_id)`,
}

// MigrateUp creates the schema. It writes no rows.
func MigrateUp(db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}

// SeedSources inserts a starter set of public sources. It only runs on
// operator request and skips sources that already exist.
func SeedSources(db *sql.DB) error {
	if _, err := db.Exec(seedSourcesSQL); err != nil {
		return fmt.Errorf("seed sources: %w", err)
	}
	return nil
}

// MigrateDown drops every table created by MigrateUp.
// It deletes all data in them.
func MigrateDown(db *sql.DB) error {
	tables := []string{
		"competences", "tasks", "projects",
		"article_favorites", "article_reads", "articles",
		"sources", "users",
	}
	for _, table := range tables {
		if _, err := db.Exec(`DROP TABLE IF EXISTS ` + table + ` CASCADE`); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	return nil
}
