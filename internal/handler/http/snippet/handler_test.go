package snippet

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"my-ankode/internal/domain/entity"
	"my-ankode/internal/handler/http/auth"
	"my-ankode/internal/infra/adapter/persistence/redisstore"
	"my-ankode/internal/service/authz"
	snipUC "my-ankode/internal/usecase/snippet"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMux(t *testing.T) *http.ServeMux {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	mux := http.NewServeMux()
	Register(mux, snipUC.NewService(redisstore.NewSnippetRepo(client), authz.NewPolicy()))
	return mux
}

func do(mux *http.ServeMux, method, path, body string, user int64) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if user != 0 {
		req = req.WithContext(auth.WithUser(req.Context(), &entity.User{ID: user}))
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func create(t *testing.T, mux *http.ServeMux, user int64) DTO {
	t.Helper()
	rec := do(mux, http.MethodPost, "/api/snippets", `{"title":"Hello","language":"Go","code":"fmt.Println(\"hi\")"}`, user)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var dto DTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	return dto
}

func TestSnippets_Lifecycle(t *testing.T) {
	mux := newMux(t)
	sn := create(t, mux, 1)
	assert.Equal(t, "go", sn.Language)

	rec := do(mux, http.MethodGet, "/api/snippets", "", 1)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []DTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, sn.ID, list[0].ID)

	rec = do(mux, http.MethodPut, "/api/snippets/"+sn.ID, `{"title":"Hello v2","language":"go","code":"x := 1"}`, 1)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Hello v2")

	assert.Equal(t, http.StatusNoContent, do(mux, http.MethodDelete, "/api/snippets/"+sn.ID, "", 1).Code)
	assert.Equal(t, http.StatusNotFound, do(mux, http.MethodGet, "/api/snippets/"+sn.ID, "", 1).Code)
}

func TestSnippets_Ownership(t *testing.T) {
	mux := newMux(t)
	sn := create(t, mux, 1)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		user   int64
		want   int
	}{
		{"owner", http.MethodGet, "/api/snippets/" + sn.ID, "", 1, http.StatusOK},
		{"other user reads", http.MethodGet, "/api/snippets/" + sn.ID, "", 2, http.StatusForbidden},
		{"other user edits", http.MethodPut, "/api/snippets/" + sn.ID, `{"title":"x","code":"y"}`, 2, http.StatusForbidden},
		{"other user deletes", http.MethodDelete, "/api/snippets/" + sn.ID, "", 2, http.StatusForbidden},
		{"unknown id", http.MethodGet, "/api/snippets/0b1e2c9a-4a8f-4a53-9a5e-6f5f0f6f2d11", "", 2, http.StatusNotFound},
		{"malformed id", http.MethodGet, "/api/snippets/not-a-uuid", "", 1, http.StatusNotFound},
		{"anonymous", http.MethodGet, "/api/snippets", "", 0, http.StatusUnauthorized},
		{"missing code", http.MethodPost, "/api/snippets", `{"title":"x"}`, 1, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, do(mux, tt.method, tt.path, tt.body, tt.user).Code)
		})
	}

	rec := do(mux, http.MethodGet, "/api/snippets", "", 2)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}
