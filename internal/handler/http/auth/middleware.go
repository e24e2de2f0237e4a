// Package auth carries the signed-in user through the request context and
// serves the register and token endpoints.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"my-ankode/internal/domain/entity"
	"my-ankode/internal/handler/http/respond"
	"my-ankode/internal/observability/logging"
	authservice "my-ankode/internal/service/auth"
)

type ctxKey string

const ctxUser ctxKey = "user"

// maxBearerLength bounds the Authorization header we are willing to parse.
const maxBearerLength = 8192

// Authenticator resolves a bearer token to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*entity.User, error)
}

// WithUser returns a context carrying user.
func WithUser(ctx context.Context, user *entity.User) context.Context {
	return context.WithValue(ctx, ctxUser, user)
}

// UserFromContext returns the signed-in user, or nil for anonymous callers.
func UserFromContext(ctx context.Context) *entity.User {
	user, _ := ctx.Value(ctxUser).(*entity.User)
	return user
}

// Middleware resolves an optional bearer token. Requests without a token,
// or with one that does not verify, continue anonymously; routes that need
// a user are wrapped in RequireUser. Only a store failure aborts the request.
func Middleware(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			user, err := a.Authenticate(r.Context(), token)
			switch {
			case err == nil:
				RecordBearer("valid")
				next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
			case errors.Is(err, authservice.ErrInvalidCredentials):
				RecordBearer("invalid")
				logging.FromContext(r.Context()).Debug("bearer token rejected",
					slog.String("path", r.URL.Path),
					slog.Any("error", err))
				next.ServeHTTP(w, r)
			default:
				RecordBearer("error")
				respond.SafeError(w, http.StatusInternalServerError, err)
			}
		})
	}
}

// RequireUser answers 401 when no user was resolved.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFromContext(r.Context()) == nil {
			respond.DomainError(w, entity.ErrUnauthenticated)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) > maxBearerLength || len(header) <= len(prefix) {
		return "", false
	}
	if !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
