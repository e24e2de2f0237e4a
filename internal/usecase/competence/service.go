// Package competence manages a user's skills tracker.
package competence

import (
	"context"
	"fmt"
	"strings"

	"my-ankode/internal/domain/entity"
	"my-ankode/internal/repository"
	"my-ankode/internal/service/authz"
)

// Input carries the user-editable competence fields.
type Input struct {
	Name  string
	Level int
	Notes string
}

type Service struct {
	Repo   repository.CompetenceRepository
	Policy *authz.Policy
}

func NewService(repo repository.CompetenceRepository, policy *authz.Policy) *Service {
	return &Service{Repo: repo, Policy: policy}
}

func (s *Service) List(ctx context.Context, user *entity.User) ([]*entity.Competence, error) {
	if user == nil {
		return nil, entity.ErrUnauthenticated
	}
	out, err := s.Repo.ListByOwner(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list competences: %w", err)
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, user *entity.User, in Input) (*entity.Competence, error) {
	if user == nil {
		return nil, entity.ErrUnauthenticated
	}
	c := &entity.Competence{OwnerID: user.ID}
	apply(c, in)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create competence: %w", err)
	}
	return c, nil
}

func (s *Service) load(ctx context.Context, user *entity.User, id int64, action authz.Action) (*entity.Competence, error) {
	if user == nil {
		return nil, entity.ErrUnauthenticated
	}
	c, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get competence: %w", err)
	}
	if c == nil {
		return nil, entity.ErrNotFound
	}
	if err := s.Policy.Require(action, authz.CompetenceResource{Competence: c}, user); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, user *entity.User, id int64) (*entity.Competence, error) {
	return s.load(ctx, user, id, authz.View)
}

func (s *Service) Update(ctx context.Context, user *entity.User, id int64, in Input) (*entity.Competence, error) {
	c, err := s.load(ctx, user, id, authz.Edit)
	if err != nil {
		return nil, err
	}
	apply(c, in)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.Repo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("update competence: %w", err)
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, user *entity.User, id int64) error {
	if _, err := s.load(ctx, user, id, authz.Delete); err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete competence: %w", err)
	}
	return nil
}

func apply(c *entity.Competence, in Input) {
	c.Name = strings.TrimSpace(in.Name)
	c.Level = in.Level
	c.Notes = strings.TrimSpace(in.Notes)
}
