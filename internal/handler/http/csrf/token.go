package csrf

import (
	"net/http"

	"my-ankode/internal/handler/http/respond"
)

type tokenResponse struct {
	Token string `json:"csrf_token"`
}

// TokenHandler serves GET /api/csrf-token. The token is bound to the caller
// as resolved by the auth middleware, so it must run first.
func TokenHandler(tm TokenManager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok, err := tm.Issue(DefaultIntent, Subject(r))
		if err != nil {
			respond.SafeError(w, http.StatusInternalServerError, err)
			return
		}
		w.Header().Set("Cache-Control", "no-store")
		respond.JSON(w, http.StatusOK, tokenResponse{Token: tok})
	})
}
