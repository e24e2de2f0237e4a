package article

import (
	"context"
	"net/http"
	"strconv"

	"my-ankode/internal/domain/entity"
	"my-ankode/internal/handler/http/auth"
	"my-ankode/internal/handler/http/pathutil"
	"my-ankode/internal/handler/http/respond"
)

// Service is the article use case.
type Service interface {
	List(ctx context.Context, viewerID *int64, filter entity.ArticleFilter) ([]*entity.ArticleView, error)
	Get(ctx context.Context, id int64, viewerID *int64) (*entity.ArticleView, error)
	Favorites(ctx context.Context, userID int64, filter entity.ArticleFilter) ([]*entity.ArticleView, error)
	MarkRead(ctx context.Context, id, userID int64, read bool) error
	MarkFavorite(ctx context.Context, id, userID int64, favorite bool) error
}

// Handler serves /api/articles.
type Handler struct {
	Svc Service
}

// List serves GET /api/articles?limit=&offset=&source=.
func (h Handler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	views, err := h.Svc.List(r.Context(), viewerID(r), filter)
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTOs(views))
}

// Get serves GET /api/articles/{id}.
func (h Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	view, err := h.Svc.Get(r.Context(), id, viewerID(r))
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(view))
}

// Favorites serves GET /api/articles/favorites.
func (h Handler) Favorites(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	user := auth.UserFromContext(r.Context())
	views, err := h.Svc.Favorites(r.Context(), user.ID, filter)
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTOs(views))
}

// Read serves POST and DELETE /api/articles/{id}/read.
func (h Handler) Read(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.Svc.MarkRead)
}

// Favorite serves POST and DELETE /api/articles/{id}/favorite.
func (h Handler) Favorite(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.Svc.MarkFavorite)
}

// toggle sets the flag on POST and clears it on DELETE.
func (h Handler) toggle(w http.ResponseWriter, r *http.Request, mark func(context.Context, int64, int64, bool) error) {
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	user := auth.UserFromContext(r.Context())
	if err := mark(r.Context(), id, user.ID, r.Method == http.MethodPost); err != nil {
		respond.DomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func viewerID(r *http.Request) *int64 {
	if user := auth.UserFromContext(r.Context()); user != nil {
		id := user.ID
		return &id
	}
	return nil
}

func parseFilter(r *http.Request) (entity.ArticleFilter, error) {
	q := r.URL.Query()
	filter := entity.ArticleFilter{Source: q.Get("source")}

	var err error
	if filter.Limit, err = intParam(q.Get("limit"), "limit"); err != nil {
		return filter, err
	}
	if filter.Offset, err = intParam(q.Get("offset"), "offset"); err != nil {
		return filter, err
	}
	return filter, nil
}

func intParam(raw, field string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, &entity.ValidationError{Field: field, Message: "must be a non-negative integer"}
	}
	return n, nil
}
