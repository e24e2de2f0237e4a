package http

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func newPingDB(t *testing.T, pingErr error) *sql.DB {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	mock.ExpectPing().WillReturnError(pingErr)
	return db
}

/* ───────── 1. /health ───────── */

func TestHealthHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name        string
		dbErr       error
		redisDown   bool
		wantStatus  int
		wantOverall string
		wantDB      string
		wantRedis   string
	}{
		{"all healthy", nil, false, http.StatusOK, "healthy", "degraded", "healthy"},
		{"database down", sql.ErrConnDone, false, http.StatusServiceUnavailable, "unhealthy", "unhealthy", "healthy"},
		{"redis down", nil, true, http.StatusServiceUnavailable, "unhealthy", "degraded", "unhealthy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mr, client := newRedis(t)
			if tt.redisDown {
				mr.Close()
			}
			h := &HealthHandler{DB: newPingDB(t, tt.dbErr), Redis: client, Version: "test"}

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			require.Equal(t, tt.wantStatus, rec.Code)
			var body HealthResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantOverall, body.Status)
			assert.Equal(t, "test", body.Version)
			// sqlmock leaves MaxOpenConnections unbounded, which reports degraded
			assert.Equal(t, tt.wantDB, body.Checks["database"].Status)
			assert.Equal(t, tt.wantRedis, body.Checks["redis"].Status)
		})
	}
}

func TestHealthHandler_PoolLimitConfigured(t *testing.T) {
	_, client := newRedis(t)
	db := newPingDB(t, nil)
	db.SetMaxOpenConns(10)
	h := &HealthHandler{DB: db, Redis: client}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var body HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "healthy", body.Checks["database"].Status)
	assert.Contains(t, body.Checks["database"].Details, "utilization_percent")
}

func TestHealthHandler_NotConfigured(t *testing.T) {
	rec := httptest.NewRecorder()
	(&HealthHandler{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "no-cache, no-store, must-revalidate", rec.Header().Get("Cache-Control"))
}

func TestHealthHandler_DoesNotLeakErrors(t *testing.T) {
	_, client := newRedis(t)
	h := &HealthHandler{DB: newPingDB(t, sql.ErrConnDone), Redis: client}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.NotContains(t, rec.Body.String(), sql.ErrConnDone.Error())
}

/* ───────── 2. /ready and /live ───────── */

func TestReadyHandler(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		_, client := newRedis(t)
		rec := httptest.NewRecorder()
		(&ReadyHandler{DB: newPingDB(t, nil), Redis: client}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ready", rec.Body.String())
	})

	t.Run("database not ready", func(t *testing.T) {
		_, client := newRedis(t)
		rec := httptest.NewRecorder()
		(&ReadyHandler{DB: newPingDB(t, sql.ErrConnDone), Redis: client}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "database not ready")
	})

	t.Run("redis not ready", func(t *testing.T) {
		mr, client := newRedis(t)
		mr.Close()
		rec := httptest.NewRecorder()
		(&ReadyHandler{DB: newPingDB(t, nil), Redis: client}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "redis not ready")
	})

	t.Run("not configured", func(t *testing.T) {
		rec := httptest.NewRecorder()
		(&ReadyHandler{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestLiveHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	(&LiveHandler{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alive", rec.Body.String())
}
