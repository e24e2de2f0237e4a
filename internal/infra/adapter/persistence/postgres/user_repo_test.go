package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"my-ankode/internal/domain/entity"
	"my-ankode/internal/infra/adapter/persistence/postgres"
)

func TestUserRepo_GetByEmail(t *testing.T) {
	db, mock := newMock(t)
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`WHERE email = \$1`).
		WithArgs("ada@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "created_at"}).
			AddRow(int64(1), "ada@example.com", "$2a$hash", created))
	mock.ExpectQuery(`WHERE email = \$1`).
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "created_at"}))

	repo := postgres.NewUserRepo(db)
	u, err := repo.GetByEmail(context.Background(), "ada@example.com")
	if err != nil || u == nil || u.ID != 1 || u.PasswordHash != "$2a$hash" {
		t.Fatalf("u=%+v err=%v", u, err)
	}
	u, err = repo.GetByEmail(context.Background(), "nobody@example.com")
	if err != nil || u != nil {
		t.Fatalf("u=%+v err=%v, want nil nil", u, err)
	}
}

func TestUserRepo_Create(t *testing.T) {
	db, mock := newMock(t)
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("ada@example.com", "h").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(9), created))
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("ada@example.com", "h").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	repo := postgres.NewUserRepo(db)
	u := &entity.User{Email: "ada@example.com", PasswordHash: "h"}
	if err := repo.Create(context.Background(), u); err != nil || u.ID != 9 {
		t.Fatalf("u=%+v err=%v", u, err)
	}
	err := repo.Create(context.Background(), &entity.User{Email: "ada@example.com", PasswordHash: "h"})
	if !errors.Is(err, entity.ErrConflict) {
		t.Fatalf("err=%v, want ErrConflict", err)
	}
}
