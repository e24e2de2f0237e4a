package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"my-ankode/internal/domain/entity"
	authservice "my-ankode/internal/service/auth"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/* ───── stubs ───── */

type stubAuthenticator struct {
	users map[string]*entity.User
	err   error
	calls int
}

func (s *stubAuthenticator) Authenticate(_ context.Context, token string) (*entity.User, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if u, ok := s.users[token]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("%w: unknown token", authservice.ErrInvalidCredentials)
}

type stubService struct {
	registerErr error
	loginErr    error
	token       string
	got         authservice.Credentials
}

func (s *stubService) Register(_ context.Context, creds authservice.Credentials) (*entity.User, error) {
	s.got = creds
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	return &entity.User{ID: 7, Email: creds.Email}, nil
}

func (s *stubService) Login(_ context.Context, creds authservice.Credentials) (string, error) {
	s.got = creds
	return s.token, s.loginErr
}

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u := UserFromContext(r.Context()); u != nil {
			_, _ = w.Write([]byte(u.Subject()))
			return
		}
		_, _ = w.Write([]byte("anonymous"))
	})
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

/* ───── 1. Middleware ───── */

func TestMiddleware(t *testing.T) {
	alice := &entity.User{ID: 42, Email: "alice@example.com"}

	tests := []struct {
		name       string
		header     string
		wantBody   string
		wantCalled bool
	}{
		{"no header", "", "anonymous", false},
		{"valid bearer", "Bearer good", "42", true},
		{"lowercase scheme", "bearer good", "42", true},
		{"invalid bearer continues anonymously", "Bearer stale", "anonymous", true},
		{"basic scheme ignored", "Basic dXNlcjpwYXNz", "anonymous", false},
		{"empty bearer", "Bearer   ", "anonymous", false},
		{"oversized header", "Bearer " + strings.Repeat("a", maxBearerLength), "anonymous", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &stubAuthenticator{users: map[string]*entity.User{"good": alice}}
			h := Middleware(a)(echoUser())

			req := httptest.NewRequest(http.MethodGet, "/api/articles", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.wantBody, rec.Body.String())
			assert.Equal(t, tt.wantCalled, a.calls > 0)
		})
	}
}

func TestMiddleware_StoreFailure(t *testing.T) {
	before := testutil.ToFloat64(bearerTokensTotal.WithLabelValues("error"))
	a := &stubAuthenticator{err: errors.New("authenticate: connection refused")}
	h := Middleware(a)(echoUser())

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.Header.Set("Authorization", "Bearer whatever")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", errorBody(t, rec))
	assert.Equal(t, before+1, testutil.ToFloat64(bearerTokensTotal.WithLabelValues("error")))
}

/* ───── 2. RequireUser ───── */

func TestRequireUser(t *testing.T) {
	h := RequireUser(echoUser())

	t.Run("anonymous", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/projects", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.True(t, strings.HasPrefix(errorBody(t, rec), "unauthorized: "))
	})

	t.Run("signed in", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
		req = req.WithContext(WithUser(req.Context(), &entity.User{ID: 3}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "3", rec.Body.String())
	})
}

/* ───── 3. RegisterHandler ───── */

func TestRegisterHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		svcErr     error
		wantStatus int
		wantError  string
	}{
		{"created", `{"email":"bob@example.com","password":"correct horse battery"}`, nil, http.StatusCreated, ""},
		{"malformed body", `{"email":`, nil, http.StatusBadRequest, "validation error on field 'body': is invalid JSON"},
		{"weak password", `{"email":"bob@example.com","password":"x"}`,
			&entity.ValidationError{Field: "password", Message: "must be at least 12 characters"},
			http.StatusBadRequest, "validation error on field 'password': must be at least 12 characters"},
		{"duplicate email", `{"email":"bob@example.com","password":"correct horse battery"}`,
			fmt.Errorf("register: %w", entity.ErrConflict), http.StatusConflict, "already exists"},
		{"store failure", `{"email":"bob@example.com","password":"correct horse battery"}`,
			errors.New("register: pq: connection reset"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{registerErr: tt.svcErr}
			rec := httptest.NewRecorder()
			RegisterHandler(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(tt.body)))

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, errorBody(t, rec))
				return
			}
			var got userResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, userResponse{ID: 7, Email: "bob@example.com"}, got)
			assert.NotContains(t, rec.Body.String(), "password")
		})
	}
}

/* ───── 4. TokenHandler ───── */

func TestTokenHandler(t *testing.T) {
	t.Run("issues token", func(t *testing.T) {
		before := testutil.ToFloat64(authRequestsTotal.WithLabelValues("token", "success"))
		svc := &stubService{token: "signed.jwt.token"}
		rec := httptest.NewRecorder()
		TokenHandler(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/token",
			strings.NewReader(`{"email":"a@example.com","password":"pw"}`)))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"token":"signed.jwt.token"}`, rec.Body.String())
		assert.Equal(t, authservice.Credentials{Email: "a@example.com", Password: "pw"}, svc.got)
		assert.Equal(t, before+1, testutil.ToFloat64(authRequestsTotal.WithLabelValues("token", "success")))
	})

	t.Run("bad credentials", func(t *testing.T) {
		svc := &stubService{loginErr: authservice.ErrInvalidCredentials}
		rec := httptest.NewRecorder()
		TokenHandler(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/token",
			strings.NewReader(`{"email":"a@example.com","password":"nope"}`)))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "unauthorized: invalid email or password", errorBody(t, rec))
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		TokenHandler(&stubService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/token", strings.NewReader("nope")))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("store failure is hidden", func(t *testing.T) {
		svc := &stubService{loginErr: errors.New("login: dial tcp 10.0.0.5:5432: refused")}
		rec := httptest.NewRecorder()
		TokenHandler(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/token",
			strings.NewReader(`{"email":"a@example.com","password":"pw"}`)))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "10.0.0.5")
	})
}
