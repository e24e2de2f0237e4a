package project

import (
	"context"
	"fmt"
	"strings"

	"my-ankode/internal/domain/entity"
	"my-ankode/internal/service/authz"
)

// ListTasks returns the tasks of a project the user may view.
func (s *Service) ListTasks(ctx context.Context, user *entity.User, projectID int64) ([]*entity.Task, error) {
	if _, err := s.load(ctx, user, projectID, authz.View); err != nil {
		return nil, err
	}
	tasks, err := s.Tasks.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// CreateTask adds a task to a project the user may edit.
func (s *Service) CreateTask(ctx context.Context, user *entity.User, projectID int64, in TaskInput) (*entity.Task, error) {
	if _, err := s.load(ctx, user, projectID, authz.Edit); err != nil {
		return nil, err
	}
	t := &entity.Task{ProjectID: projectID}
	applyTaskInput(t, in)
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := s.Tasks.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return t, nil
}

// loadTask fetches a task with its parent project and authorizes action
// through the parent.
func (s *Service) loadTask(ctx context.Context, user *entity.User, id int64, action authz.Action) (*entity.Task, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	t, err := s.Tasks.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	if t == nil {
		return nil, entity.ErrNotFound
	}
	parent, err := s.Projects.Get(ctx, t.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("get task project: %w", err)
	}
	if err := s.Policy.Require(action, authz.TaskResource{Task: t, Project: parent}, user); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) GetTask(ctx context.Context, user *entity.User, id int64) (*entity.Task, error) {
	return s.loadTask(ctx, user, id, authz.View)
}

func (s *Service) UpdateTask(ctx context.Context, user *entity.User, id int64, in TaskInput) (*entity.Task, error) {
	t, err := s.loadTask(ctx, user, id, authz.Edit)
	if err != nil {
		return nil, err
	}
	applyTaskInput(t, in)
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := s.Tasks.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return t, nil
}

func (s *Service) DeleteTask(ctx context.Context, user *entity.User, id int64) error {
	if _, err := s.loadTask(ctx, user, id, authz.Delete); err != nil {
		return err
	}
	if err := s.Tasks.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

func applyTaskInput(t *entity.Task, in TaskInput) {
	t.Title = strings.TrimSpace(in.Title)
	t.Description = strings.TrimSpace(in.Description)
	t.Status = in.Status
	t.Position = in.Position
}
