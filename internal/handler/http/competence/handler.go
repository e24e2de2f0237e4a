// Package competence serves the skills tracker.
package competence

import (
	"context"
	"net/http"
	"time"

	"my-ankode/internal/domain/entity"
	"my-ankode/internal/handler/http/auth"
	"my-ankode/internal/handler/http/pathutil"
	"my-ankode/internal/handler/http/respond"
	compUC "my-ankode/internal/usecase/competence"

	"github.com/samber/lo"
)

// Service is the competence use case.
type Service interface {
	List(ctx context.Context, user *entity.User) ([]*entity.Competence, error)
	Create(ctx context.Context, user *entity.User, in compUC.Input) (*entity.Competence, error)
	Get(ctx context.Context, user *entity.User, id int64) (*entity.Competence, error)
	Update(ctx context.Context, user *entity.User, id int64, in compUC.Input) (*entity.Competence, error)
	Delete(ctx context.Context, user *entity.User, id int64) error
}

type DTO struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Level     int       `json:"level"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

type request struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
	Notes string `json:"notes"`
}

func toDTO(c *entity.Competence) DTO {
	return DTO{ID: c.ID, Name: c.Name, Level: c.Level, Notes: c.Notes, CreatedAt: c.CreatedAt}
}

type Handler struct {
	Svc Service
}

func (h Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Svc.List(r.Context(), auth.UserFromContext(r.Context()))
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, lo.Map(items, func(c *entity.Competence, _ int) DTO { return toDTO(c) }))
}

func (h Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req request
	if err := respond.Decode(r, &req); err != nil {
		respond.DomainError(w, err)
		return
	}
	c, err := h.Svc.Create(r.Context(), auth.UserFromContext(r.Context()), compUC.Input(req))
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, toDTO(c))
}

func (h Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	c, err := h.Svc.Get(r.Context(), auth.UserFromContext(r.Context()), id)
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(c))
}

func (h Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	var req request
	if err := respond.Decode(r, &req); err != nil {
		respond.DomainError(w, err)
		return
	}
	c, err := h.Svc.Update(r.Context(), auth.UserFromContext(r.Context()), id, compUC.Input(req))
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(c))
}

func (h Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.Svc.Delete(r.Context(), auth.UserFromContext(r.Context()), id); err != nil {
		respond.DomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Register mounts the competence routes behind auth.RequireUser.
func Register(mux *http.ServeMux, svc Service) {
	h := Handler{Svc: svc}
	mux.Handle("GET /api/competences", auth.RequireUser(http.HandlerFunc(h.List)))
	mux.Handle("POST /api/competences", auth.RequireUser(http.HandlerFunc(h.Create)))
	mux.Handle("GET /api/competences/{id}", auth.RequireUser(http.HandlerFunc(h.Get)))
	mux.Handle("PUT /api/competences/{id}", auth.RequireUser(http.HandlerFunc(h.Update)))
	mux.Handle("DELETE /api/competences/{id}", auth.RequireUser(http.HandlerFunc(h.Delete)))
}
