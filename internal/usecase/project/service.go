// Package project manages Kanban projects and their tasks. Every
// operation on an existing row looks it up first, so a missing row is
// entity.ErrNotFound before any ownership check runs.
package project

import (
	"context"
	"fmt"
	"strings"

	"my-ankode/internal/domain/entity"
	"my-ankode/internal/repository"
	"my-ankode/internal/service/authz"
)

// Input carries the user-editable project fields.
type Input struct {
	Name        string
	Description string
}

// TaskInput carries the user-editable task fields.
type TaskInput struct {
	Title       string
	Description string
	Status      entity.TaskStatus
	Position    int
}

type Service struct {
	Projects repository.ProjectRepository
	Tasks    repository.TaskRepository
	Policy   *authz.Policy
}

func NewService(projects repository.ProjectRepository, tasks repository.TaskRepository, policy *authz.Policy) *Service {
	return &Service{Projects: projects, Tasks: tasks, Policy: policy}
}

func requireUser(user *entity.User) error {
	if user == nil {
		return entity.ErrUnauthenticated
	}
	return nil
}

func (s *Service) List(ctx context.Context, user *entity.User) ([]*entity.Project, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	projects, err := s.Projects.ListByOwner(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

func (s *Service) Create(ctx context.Context, user *entity.User, in Input) (*entity.Project, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	p := &entity.Project{
		OwnerID:     user.ID,
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.Projects.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return p, nil
}

// load fetches a project and checks that user may perform action on it.
func (s *Service) load(ctx context.Context, user *entity.User, id int64, action authz.Action) (*entity.Project, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	p, err := s.Projects.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	if p == nil {
		return nil, entity.ErrNotFound
	}
	if err := s.Policy.Require(action, authz.ProjectResource{Project: p}, user); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, user *entity.User, id int64) (*entity.Project, error) {
	return s.load(ctx, user, id, authz.View)
}

func (s *Service) Update(ctx context.Context, user *entity.User, id int64, in Input) (*entity.Project, error) {
	p, err := s.load(ctx, user, id, authz.Edit)
	if err != nil {
		return nil, err
	}
	p.Name = strings.TrimSpace(in.Name)
	p.Description = strings.TrimSpace(in.Description)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.Projects.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, user *entity.User, id int64) error {
	if _, err := s.load(ctx, user, id, authz.Delete); err != nil {
		return err
	}
	if err := s.Projects.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}
