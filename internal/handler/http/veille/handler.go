// Package veille serves the technology-watch endpoints: on-demand ingestion
// of a feed for the caller, feed discovery and the caller's subscriptions.
package veille

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"my-ankode/internal/domain/entity"
	"my-ankode/internal/handler/http/auth"
	"my-ankode/internal/handler/http/pathutil"
	"my-ankode/internal/handler/http/respond"
	"my-ankode/internal/observability/logging"
	"my-ankode/internal/usecase/ingest"
	srcUC "my-ankode/internal/usecase/source"

	"github.com/samber/lo"
)

// Ingester runs one user-scoped ingestion.
type Ingester interface {
	IngestForUser(ctx context.Context, feedURL, source string, userID int64) ingest.Result
}

// Sources is the subscription use case.
type Sources interface {
	ListForOwner(ctx context.Context, ownerID *int64) ([]*entity.Source, error)
	Create(ctx context.Context, in srcUC.CreateInput) (*entity.Source, error)
	Delete(ctx context.Context, id, ownerID int64) error
	Discover(ctx context.Context, pageURL string) ([]srcUC.FeedLink, error)
}

// SourceDTO is the JSON form of a subscription.
type SourceDTO struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	URL            string     `json:"url"`
	Active         bool       `json:"active"`
	LastIngestedAt *time.Time `json:"last_ingested_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

func toSourceDTO(s *entity.Source) SourceDTO {
	return SourceDTO{
		ID:             s.ID,
		Name:           s.Name,
		URL:            s.FeedURL,
		Active:         s.Active,
		LastIngestedAt: s.LastIngestedAt,
		CreatedAt:      s.CreatedAt,
	}
}

type feedRequest struct {
	URL    string `json:"url"`
	Source string `json:"source"`
}

type sourceRequest struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Handler serves /api/veille.
type Handler struct {
	Ingest  Ingester
	Sources Sources
}

// IngestFeed serves POST /api/veille/ingest. The ingestion result is the
// body in every case; a failed run answers 422.
func (h Handler) IngestFeed(w http.ResponseWriter, r *http.Request) {
	var req feedRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.DomainError(w, err)
		return
	}
	user := auth.UserFromContext(r.Context())

	res := h.Ingest.IngestForUser(r.Context(), req.URL, req.Source, user.ID)
	code := http.StatusOK
	if !res.Success {
		code = http.StatusUnprocessableEntity
	}
	respond.JSON(w, code, res)
}

// Discover serves GET /api/veille/discover?url=.
func (h Handler) Discover(w http.ResponseWriter, r *http.Request) {
	pageURL := strings.TrimSpace(r.URL.Query().Get("url"))
	if pageURL == "" {
		respond.DomainError(w, &entity.ValidationError{Field: "url", Message: "is required"})
		return
	}

	links, err := h.Sources.Discover(r.Context(), pageURL)
	var verr *entity.ValidationError
	switch {
	case err == nil:
		respond.JSON(w, http.StatusOK, links)
	case errors.Is(err, srcUC.ErrNoFeedFound):
		respond.Message(w, http.StatusNotFound, srcUC.ErrNoFeedFound.Error())
	case errors.As(err, &verr):
		respond.DomainError(w, err)
	default:
		logging.FromContext(r.Context()).Warn("feed discovery failed",
			slog.String("url", pageURL),
			slog.Any("error", err))
		respond.Message(w, http.StatusBadGateway, "could not fetch page")
	}
}

// ListSources serves GET /api/veille/sources.
func (h Handler) ListSources(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	sources, err := h.Sources.ListForOwner(r.Context(), &user.ID)
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, lo.Map(sources, func(s *entity.Source, _ int) SourceDTO { return toSourceDTO(s) }))
}

// CreateSource serves POST /api/veille/sources.
func (h Handler) CreateSource(w http.ResponseWriter, r *http.Request) {
	var req sourceRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.DomainError(w, err)
		return
	}
	user := auth.UserFromContext(r.Context())

	src, err := h.Sources.Create(r.Context(), srcUC.CreateInput{Name: req.Name, FeedURL: req.URL, OwnerID: &user.ID})
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, toSourceDTO(src))
}

// DeleteSource serves DELETE /api/veille/sources/{id}. Another user's
// source is reported as missing.
func (h Handler) DeleteSource(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	user := auth.UserFromContext(r.Context())
	if err := h.Sources.Delete(r.Context(), id, user.ID); err != nil {
		respond.DomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Register mounts the veille routes. All of them need a signed-in user.
func Register(mux *http.ServeMux, h Handler) {
	mux.Handle("POST /api/veille/ingest", auth.RequireUser(http.HandlerFunc(h.IngestFeed)))
	mux.Handle("GET /api/veille/discover", auth.RequireUser(http.HandlerFunc(h.Discover)))
	mux.Handle("GET /api/veille/sources", auth.RequireUser(http.HandlerFunc(h.ListSources)))
	mux.Handle("POST /api/veille/sources", auth.RequireUser(http.HandlerFunc(h.CreateSource)))
	mux.Handle("DELETE /api/veille/sources/{id}", auth.RequireUser(http.HandlerFunc(h.DeleteSource)))
}
