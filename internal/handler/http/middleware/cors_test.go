package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
}

func corsRequest(h http.Handler, method, origin string, preflight bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/projects", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	if preflight {
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCORS(t *testing.T) {
	h := CORS(CORSConfig{
		AllowedOrigins: []string{"http://localhost:4200"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: DefaultCORSHeaders,
		MaxAge:         600,
	})(okHandler())

	t.Run("preflight from allowed origin", func(t *testing.T) {
		rec := corsRequest(h, http.MethodOptions, "http://localhost:4200", true)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "http://localhost:4200", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
		assert.Equal(t, "GET, POST", rec.Header().Get("Access-Control-Allow-Methods"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "X-CSRF-Token")
		assert.Equal(t, "600", rec.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("simple request from allowed origin", func(t *testing.T) {
		rec := corsRequest(h, http.MethodGet, "http://localhost:4200", false)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "http://localhost:4200", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "Origin", rec.Header().Get("Vary"))
	})

	t.Run("unknown origin gets no headers", func(t *testing.T) {
		rec := corsRequest(h, http.MethodOptions, "https://evil.example", true)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("same-origin request untouched", func(t *testing.T) {
		rec := corsRequest(h, http.MethodGet, "", false)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Vary"))
	})
}

func TestCORS_DisabledWithoutOrigins(t *testing.T) {
	rec := corsRequest(CORS(CORSConfig{})(okHandler()), http.MethodOptions, "http://localhost:4200", true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestLoadCORSConfig(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:4200, https://app.example")
	cfg, err := LoadCORSConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"http://localhost:4200", "https://app.example"}, cfg.AllowedOrigins)
	assert.Equal(t, DefaultCORSHeaders, cfg.AllowedHeaders)
	assert.Equal(t, 600, cfg.MaxAge)

	for _, bad := range []string{"*", "ftp://x.example", "https://x.example/", "https://x.example/path", "https://x.example?q=1"} {
		t.Run(bad, func(t *testing.T) {
			t.Setenv("CORS_ALLOWED_ORIGINS", bad)
			_, err := LoadCORSConfig()
			assert.Error(t, err)
		})
	}

	t.Setenv("CORS_ALLOWED_ORIGINS", "https://x.example")
	t.Setenv("CORS_MAX_AGE", "999999")
	_, err = LoadCORSConfig()
	assert.ErrorContains(t, err, "CORS_MAX_AGE")
}
