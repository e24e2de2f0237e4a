package article

import (
	"net/http"

	"my-ankode/internal/handler/http/auth"
)

// Register mounts the article routes. Listing and detail are open to
// anonymous callers, who only see public articles.
func Register(mux *http.ServeMux, svc Service) {
	h := Handler{Svc: svc}

	mux.HandleFunc("GET /api/articles", h.List)
	mux.Handle("GET /api/articles/favorites", auth.RequireUser(http.HandlerFunc(h.Favorites)))
	mux.HandleFunc("GET /api/articles/{id}", h.Get)

	read := auth.RequireUser(http.HandlerFunc(h.Read))
	mux.Handle("POST /api/articles/{id}/read", read)
	mux.Handle("DELETE /api/articles/{id}/read", read)

	favorite := auth.RequireUser(http.HandlerFunc(h.Favorite))
	mux.Handle("POST /api/articles/{id}/favorite", favorite)
	mux.Handle("DELETE /api/articles/{id}/favorite", favorite)
}
