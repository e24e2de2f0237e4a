// Package middleware holds cross-cutting HTTP middleware for browser clients.
package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"my-ankode/pkg/config"

	"github.com/samber/lo"
)

// CORSConfig lists the browser origins allowed to call the API with
// credentials.
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         int
	Logger         *slog.Logger
}

// DefaultCORSHeaders covers the headers the web client sends, including
// the anti-forgery token.
var DefaultCORSHeaders = []string{"Content-Type", "Authorization", "X-Request-ID", "X-CSRF-Token"}

// LoadCORSConfig reads CORS_ALLOWED_ORIGINS, CORS_ALLOWED_HEADERS and
// CORS_MAX_AGE. No origins means CORS stays off.
func LoadCORSConfig() (CORSConfig, error) {
	cfg := CORSConfig{
		AllowedOrigins: config.GetEnvStringList("CORS_ALLOWED_ORIGINS", nil),
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: config.GetEnvStringList("CORS_ALLOWED_HEADERS", DefaultCORSHeaders),
		MaxAge:         config.GetEnvInt("CORS_MAX_AGE", 600),
	}
	for _, o := range cfg.AllowedOrigins {
		if err := validateOrigin(o); err != nil {
			return cfg, err
		}
	}
	if cfg.MaxAge < 0 || cfg.MaxAge > 86400 {
		return cfg, fmt.Errorf("CORS_MAX_AGE must be between 0 and 86400, got %d", cfg.MaxAge)
	}
	return cfg, nil
}

func validateOrigin(origin string) error {
	if origin == "*" {
		return fmt.Errorf("wildcard origin cannot be combined with credentials")
	}
	u, err := url.Parse(origin)
	if err != nil {
		return fmt.Errorf("invalid origin %q: %w", origin, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("origin must use http or https scheme: %s", origin)
	}
	if u.Host == "" || (u.Path != "" && u.Path != "/") || u.RawQuery != "" || u.Fragment != "" || strings.HasSuffix(origin, "/") {
		return fmt.Errorf("origin must be scheme://host[:port] only: %s", origin)
	}
	return nil
}

// CORS answers preflights for allowed origins and decorates their
// responses. Requests from other origins pass through without CORS headers,
// which the browser then blocks.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	if len(cfg.AllowedOrigins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	allowed := lo.SliceToMap(cfg.AllowedOrigins, func(o string) (string, struct{}) { return o, struct{}{} })
	methods := strings.Join(cfg.AllowedMethods, ", ")
	headers := strings.Join(cfg.AllowedHeaders, ", ")
	maxAge := strconv.Itoa(cfg.MaxAge)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Add("Vary", "Origin")

			if _, ok := allowed[origin]; !ok {
				logger.Warn("CORS origin not allowed",
					slog.String("origin", origin),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.Header().Set("Access-Control-Allow-Methods", methods)
				w.Header().Set("Access-Control-Allow-Headers", headers)
				w.Header().Set("Access-Control-Max-Age", maxAge)
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
