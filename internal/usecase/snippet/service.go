// Package snippet manages code snippets kept in the document store.
package snippet

import (
	"context"
	"fmt"
	"strings"
	"time"

	"my-ankode/internal/domain/entity"
	"my-ankode/internal/repository"
	"my-ankode/internal/service/authz"

	"github.com/google/uuid"
)

// Input carries the user-editable snippet fields.
type Input struct {
	Title       string
	Language    string
	Code        string
	Description string
}

type Service struct {
	repo   repository.SnippetRepository
	policy *authz.Policy
	newID  func() string
	now    func() time.Time
}

func NewService(repo repository.SnippetRepository, policy *authz.Policy) *Service {
	return &Service{
		repo:   repo,
		policy: policy,
		newID:  func() string { return uuid.NewString() },
		now:    time.Now,
	}
}

func (s *Service) List(ctx context.Context, user *entity.User) ([]*entity.Snippet, error) {
	if user == nil {
		return nil, entity.ErrUnauthenticated
	}
	out, err := s.repo.ListByOwner(ctx, user.Subject())
	if err != nil {
		return nil, fmt.Errorf("list snippets: %w", err)
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, user *entity.User, in Input) (*entity.Snippet, error) {
	if user == nil {
		return nil, entity.ErrUnauthenticated
	}
	now := s.now().UTC()
	sn := &entity.Snippet{
		ID:        s.newID(),
		OwnerID:   user.Subject(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	apply(sn, in)
	if err := sn.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, sn); err != nil {
		return nil, fmt.Errorf("create snippet: %w", err)
	}
	return sn, nil
}

func (s *Service) load(ctx context.Context, user *entity.User, id string, action authz.Action) (*entity.Snippet, error) {
	if user == nil {
		return nil, entity.ErrUnauthenticated
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, entity.ErrNotFound
	}
	sn, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get snippet: %w", err)
	}
	if err := s.policy.Require(action, authz.SnippetResource{Snippet: sn}, user); err != nil {
		return nil, err
	}
	return sn, nil
}

func (s *Service) Get(ctx context.Context, user *entity.User, id string) (*entity.Snippet, error) {
	return s.load(ctx, user, id, authz.View)
}

func (s *Service) Update(ctx context.Context, user *entity.User, id string, in Input) (*entity.Snippet, error) {
	sn, err := s.load(ctx, user, id, authz.Edit)
	if err != nil {
		return nil, err
	}
	apply(sn, in)
	if err := sn.Validate(); err != nil {
		return nil, err
	}
	sn.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, sn); err != nil {
		return nil, fmt.Errorf("update snippet: %w", err)
	}
	return sn, nil
}

func (s *Service) Delete(ctx context.Context, user *entity.User, id string) error {
	if _, err := s.load(ctx, user, id, authz.Delete); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete snippet: %w", err)
	}
	return nil
}

func apply(sn *entity.Snippet, in Input) {
	sn.Title = strings.TrimSpace(in.Title)
	sn.Language = strings.ToLower(strings.TrimSpace(in.Language))
	sn.Code = in.Code
	sn.Description = strings.TrimSpace(in.Description)
}
