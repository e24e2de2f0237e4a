package article

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"my-ankode/internal/domain/entity"
	"my-ankode/internal/handler/http/auth"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/* ───── stub ───── */

type markCall struct {
	id, user int64
	on       bool
}

type stubService struct {
	views     []*entity.ArticleView
	err       error
	gotViewer *int64
	gotFilter entity.ArticleFilter
	reads     []markCall
	favorites []markCall
}

func (s *stubService) List(_ context.Context, viewerID *int64, filter entity.ArticleFilter) ([]*entity.ArticleView, error) {
	s.gotViewer, s.gotFilter = viewerID, filter
	return s.views, s.err
}

func (s *stubService) Get(_ context.Context, id int64, viewerID *int64) (*entity.ArticleView, error) {
	s.gotViewer = viewerID
	if s.err != nil {
		return nil, s.err
	}
	for _, v := range s.views {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, entity.ErrNotFound
}

func (s *stubService) Favorites(_ context.Context, userID int64, filter entity.ArticleFilter) ([]*entity.ArticleView, error) {
	s.gotViewer, s.gotFilter = &userID, filter
	return s.views, s.err
}

func (s *stubService) MarkRead(_ context.Context, id, userID int64, read bool) error {
	s.reads = append(s.reads, markCall{id, userID, read})
	return s.err
}

func (s *stubService) MarkFavorite(_ context.Context, id, userID int64, favorite bool) error {
	s.favorites = append(s.favorites, markCall{id, userID, favorite})
	return s.err
}

func serve(svc Service, req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	Register(mux, svc)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func as(req *http.Request, id int64) *http.Request {
	return req.WithContext(auth.WithUser(req.Context(), &entity.User{ID: id}))
}

var published = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func sampleViews() []*entity.ArticleView {
	owner := int64(5)
	return []*entity.ArticleView{
		{Article: entity.Article{ID: 1, Title: "Go 1.26", URL: "https://go.dev/blog/1", Source: "Go Blog", Tags: []string{"go"}, PublishedAt: &published}, Read: true},
		{Article: entity.Article{ID: 2, Title: "Followed", URL: "https://me.example/2", Source: "Mine", OwnerID: &owner}, Favorite: true},
	}
}

/* ───── 1. list ───── */

func TestList_Anonymous(t *testing.T) {
	svc := &stubService{views: sampleViews()}
	rec := serve(svc, httptest.NewRequest(http.MethodGet, "/api/articles?limit=5&offset=10&source=Go%20Blog", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, svc.gotViewer)
	assert.Equal(t, entity.ArticleFilter{Source: "Go Blog", Limit: 5, Offset: 10}, svc.gotFilter)

	var got []DTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	want := []DTO{
		{ID: 1, Title: "Go 1.26", URL: "https://go.dev/blog/1", Source: "Go Blog", Tags: []string{"go"}, PublishedAt: &published, Public: true, Read: true},
		{ID: 2, Title: "Followed", URL: "https://me.example/2", Source: "Mine", Tags: []string{}, Favorite: true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("List mismatch (-want +got):\n%s", diff)
	}
}

func TestList_SignedInPassesViewer(t *testing.T) {
	svc := &stubService{}
	rec := serve(svc, as(httptest.NewRequest(http.MethodGet, "/api/articles", nil), 9))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.gotViewer)
	assert.Equal(t, int64(9), *svc.gotViewer)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestList_BadPaging(t *testing.T) {
	for _, q := range []string{"limit=abc", "limit=-1", "offset=x"} {
		t.Run(q, func(t *testing.T) {
			rec := serve(&stubService{}, httptest.NewRequest(http.MethodGet, "/api/articles?"+q, nil))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestList_StoreErrorIsHidden(t *testing.T) {
	rec := serve(&stubService{err: errors.New("list articles: dial tcp 10.1.2.3:5432")}, httptest.NewRequest(http.MethodGet, "/api/articles", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.1.2.3")
}

/* ───── 2. detail ───── */

func TestGet(t *testing.T) {
	tests := []struct {
		name string
		path string
		want int
	}{
		{"found", "/api/articles/1", http.StatusOK},
		{"missing", "/api/articles/404", http.StatusNotFound},
		{"bad id", "/api/articles/abc", http.StatusBadRequest},
		{"zero id", "/api/articles/0", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(&stubService{views: sampleViews()}, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

/* ───── 3. flags ───── */

func TestFlags_RequireUser(t *testing.T) {
	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodPost, "/api/articles/1/read", nil),
		httptest.NewRequest(http.MethodDelete, "/api/articles/1/favorite", nil),
		httptest.NewRequest(http.MethodGet, "/api/articles/favorites", nil),
	} {
		t.Run(req.Method+" "+req.URL.Path, func(t *testing.T) {
			svc := &stubService{}
			rec := serve(svc, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Empty(t, svc.reads)
			assert.Empty(t, svc.favorites)
		})
	}
}

func TestFlags_SetAndClear(t *testing.T) {
	svc := &stubService{}

	assert.Equal(t, http.StatusNoContent, serve(svc, as(httptest.NewRequest(http.MethodPost, "/api/articles/3/read", nil), 7)).Code)
	assert.Equal(t, http.StatusNoContent, serve(svc, as(httptest.NewRequest(http.MethodDelete, "/api/articles/3/read", nil), 7)).Code)
	assert.Equal(t, http.StatusNoContent, serve(svc, as(httptest.NewRequest(http.MethodPost, "/api/articles/4/favorite", nil), 7)).Code)

	assert.Equal(t, []markCall{{3, 7, true}, {3, 7, false}}, svc.reads)
	assert.Equal(t, []markCall{{4, 7, true}}, svc.favorites)
}

func TestFlags_UnknownArticle(t *testing.T) {
	rec := serve(&stubService{err: entity.ErrNotFound}, as(httptest.NewRequest(http.MethodPost, "/api/articles/2/favorite", nil), 7))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFavorites(t *testing.T) {
	svc := &stubService{views: sampleViews()[1:]}
	rec := serve(svc, as(httptest.NewRequest(http.MethodGet, "/api/articles/favorites?limit=3", nil), 5))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(5), *svc.gotViewer)
	assert.Equal(t, 3, svc.gotFilter.Limit)

	var got []DTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.True(t, got[0].Favorite)
}
