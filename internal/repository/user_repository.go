package repository

import (
	"context"

	"my-ankode/internal/domain/entity"
)

type UserRepository interface {
	Get(ctx context.Context, id int64) (*entity.User, error)
	// GetByEmail returns nil, nil when the email is unknown.
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// Create returns entity.ErrConflict when the email is taken.
	Create(ctx context.Context, user *entity.User) error
}
