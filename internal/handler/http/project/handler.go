// Package project serves the Kanban projects and their tasks. Ownership is
// enforced by the use case; handlers only translate HTTP.
package project

import (
	"context"
	"net/http"
	"time"

	"my-ankode/internal/domain/entity"
	"my-ankode/internal/handler/http/auth"
	"my-ankode/internal/handler/http/pathutil"
	"my-ankode/internal/handler/http/respond"
	projUC "my-ankode/internal/usecase/project"

	"github.com/samber/lo"
)

// Service is the project and task use case.
type Service interface {
	List(ctx context.Context, user *entity.User) ([]*entity.Project, error)
	Create(ctx context.Context, user *entity.User, in projUC.Input) (*entity.Project, error)
	Get(ctx context.Context, user *entity.User, id int64) (*entity.Project, error)
	Update(ctx context.Context, user *entity.User, id int64, in projUC.Input) (*entity.Project, error)
	Delete(ctx context.Context, user *entity.User, id int64) error

	ListTasks(ctx context.Context, user *entity.User, projectID int64) ([]*entity.Task, error)
	CreateTask(ctx context.Context, user *entity.User, projectID int64, in projUC.TaskInput) (*entity.Task, error)
	GetTask(ctx context.Context, user *entity.User, id int64) (*entity.Task, error)
	UpdateTask(ctx context.Context, user *entity.User, id int64, in projUC.TaskInput) (*entity.Task, error)
	DeleteTask(ctx context.Context, user *entity.User, id int64) error
}

type ProjectDTO struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type TaskDTO struct {
	ID          int64             `json:"id"`
	ProjectID   int64             `json:"project_id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      entity.TaskStatus `json:"status"`
	Position    int               `json:"position"`
	CreatedAt   time.Time         `json:"created_at"`
}

type projectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type taskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Position    int    `json:"position"`
}

func (r taskRequest) input() projUC.TaskInput {
	return projUC.TaskInput{
		Title:       r.Title,
		Description: r.Description,
		Status:      entity.TaskStatus(r.Status),
		Position:    r.Position,
	}
}

func toProjectDTO(p *entity.Project) ProjectDTO {
	return ProjectDTO{ID: p.ID, Name: p.Name, Description: p.Description, CreatedAt: p.CreatedAt}
}

func toTaskDTO(t *entity.Task) TaskDTO {
	return TaskDTO{
		ID:          t.ID,
		ProjectID:   t.ProjectID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Position:    t.Position,
		CreatedAt:   t.CreatedAt,
	}
}

// Handler serves /api/projects and /api/tasks.
type Handler struct {
	Svc Service
}

func (h Handler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.Svc.List(r.Context(), auth.UserFromContext(r.Context()))
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, lo.Map(projects, func(p *entity.Project, _ int) ProjectDTO { return toProjectDTO(p) }))
}

func (h Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.DomainError(w, err)
		return
	}
	p, err := h.Svc.Create(r.Context(), auth.UserFromContext(r.Context()), projUC.Input(req))
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, toProjectDTO(p))
}

func (h Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := h.Svc.Get(r.Context(), auth.UserFromContext(r.Context()), id)
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, toProjectDTO(p))
}

func (h Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req projectRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.DomainError(w, err)
		return
	}
	p, err := h.Svc.Update(r.Context(), auth.UserFromContext(r.Context()), id, projUC.Input(req))
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, toProjectDTO(p))
}

func (h Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Svc.Delete(r.Context(), auth.UserFromContext(r.Context()), id); err != nil {
		respond.DomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	tasks, err := h.Svc.ListTasks(r.Context(), auth.UserFromContext(r.Context()), id)
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, lo.Map(tasks, func(t *entity.Task, _ int) TaskDTO { return toTaskDTO(t) }))
}

func (h Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req taskRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.DomainError(w, err)
		return
	}
	t, err := h.Svc.CreateTask(r.Context(), auth.UserFromContext(r.Context()), id, req.input())
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, toTaskDTO(t))
}

func (h Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	t, err := h.Svc.GetTask(r.Context(), auth.UserFromContext(r.Context()), id)
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, toTaskDTO(t))
}

func (h Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req taskRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.DomainError(w, err)
		return
	}
	t, err := h.Svc.UpdateTask(r.Context(), auth.UserFromContext(r.Context()), id, req.input())
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, toTaskDTO(t))
}

func (h Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Svc.DeleteTask(r.Context(), auth.UserFromContext(r.Context()), id); err != nil {
		respond.DomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return 0, false
	}
	return id, true
}

// Register mounts the project and task routes behind auth.RequireUser.
func Register(mux *http.ServeMux, svc Service) {
	h := Handler{Svc: svc}
	routes := map[string]http.HandlerFunc{
		"GET /api/projects":             h.List,
		"POST /api/projects":            h.Create,
		"GET /api/projects/{id}":        h.Get,
		"PUT /api/projects/{id}":        h.Update,
		"DELETE /api/projects/{id}":     h.Delete,
		"GET /api/projects/{id}/tasks":  h.ListTasks,
		"POST /api/projects/{id}/tasks": h.CreateTask,
		"GET /api/tasks/{id}":           h.GetTask,
		"PUT /api/tasks/{id}":           h.UpdateTask,
		"DELETE /api/tasks/{id}":        h.DeleteTask,
	}
	for pattern, fn := range routes {
		mux.Handle(pattern, auth.RequireUser(fn))
	}
}
