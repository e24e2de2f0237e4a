package entity

import (
	"strings"
	"time"
)

// Project is a Kanban board owned by one user.
type Project struct {
	ID          int64
	OwnerID     int64
	Name        string
	Description string
	CreatedAt   time.Time
}

// Validate checks the project fields a user can set.
func (p *Project) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return &ValidationError{Field: "name", Message: "is required"}
	}
	if len(p.Name) > 200 {
		return &ValidationError{Field: "name", Message: "is too long"}
	}
	return nil
}

// TaskStatus is the Kanban column of a task.
type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
)

// Valid reports whether s is a known column.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskDone:
		return true
	}
	return false
}

// Task is a card on a project board. It has no owner of its own:
// the owner of its parent project owns it.
type Task struct {
	ID          int64
	ProjectID   int64
	Title       string
	Description string
	Status      TaskStatus
	Position    int
	CreatedAt   time.Time
}

// Validate checks the task fields a user can set.
// An empty status defaults to todo.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return &ValidationError{Field: "title", Message: "is required"}
	}
	if t.Status == "" {
		t.Status = TaskTodo
	}
	if !t.Status.Valid() {
		return &ValidationError{Field: "status", Message: "must be one of todo, in_progress, done"}
	}
	if t.Position < 0 {
		return &ValidationError{Field: "position", Message: "cannot be negative"}
	}
	return nil
}
