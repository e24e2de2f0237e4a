// Package snippet serves the code snippet library kept in Redis.
package snippet

import (
	"context"
	"net/http"
	"time"

	"my-ankode/internal/domain/entity"
	"my-ankode/internal/handler/http/auth"
	"my-ankode/internal/handler/http/respond"
	snipUC "my-ankode/internal/usecase/snippet"

	"github.com/samber/lo"
)

// Service is the snippet use case.
type Service interface {
	List(ctx context.Context, user *entity.User) ([]*entity.Snippet, error)
	Create(ctx context.Context, user *entity.User, in snipUC.Input) (*entity.Snippet, error)
	Get(ctx context.Context, user *entity.User, id string) (*entity.Snippet, error)
	Update(ctx context.Context, user *entity.User, id string, in snipUC.Input) (*entity.Snippet, error)
	Delete(ctx context.Context, user *entity.User, id string) error
}

type DTO struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Language    string    `json:"language"`
	Code        string    `json:"code"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type request struct {
	Title       string `json:"title"`
	Language    string `json:"language"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

func toDTO(s *entity.Snippet) DTO {
	return DTO{
		ID:          s.ID,
		Title:       s.Title,
		Language:    s.Language,
		Code:        s.Code,
		Description: s.Description,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
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
	respond.JSON(w, http.StatusOK, lo.Map(items, func(s *entity.Snippet, _ int) DTO { return toDTO(s) }))
}

func (h Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req request
	if err := respond.Decode(r, &req); err != nil {
		respond.DomainError(w, err)
		return
	}
	s, err := h.Svc.Create(r.Context(), auth.UserFromContext(r.Context()), snipUC.Input(req))
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, toDTO(s))
}

func (h Handler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.Svc.Get(r.Context(), auth.UserFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(s))
}

func (h Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req request
	if err := respond.Decode(r, &req); err != nil {
		respond.DomainError(w, err)
		return
	}
	s, err := h.Svc.Update(r.Context(), auth.UserFromContext(r.Context()), r.PathValue("id"), snipUC.Input(req))
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(s))
}

func (h Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Delete(r.Context(), auth.UserFromContext(r.Context()), r.PathValue("id")); err != nil {
		respond.DomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Register mounts the snippet routes behind auth.RequireUser.
func Register(mux *http.ServeMux, svc Service) {
	h := Handler{Svc: svc}
	mux.Handle("GET /api/snippets", auth.RequireUser(http.HandlerFunc(h.List)))
	mux.Handle("POST /api/snippets", auth.RequireUser(http.HandlerFunc(h.Create)))
	mux.Handle("GET /api/snippets/{id}", auth.RequireUser(http.HandlerFunc(h.Get)))
	mux.Handle("PUT /api/snippets/{id}", auth.RequireUser(http.HandlerFunc(h.Update)))
	mux.Handle("DELETE /api/snippets/{id}", auth.RequireUser(http.HandlerFunc(h.Delete)))
}
