// Package csrf rejects state-changing API calls that do not carry an
// anti-forgery token bound to the caller.
package csrf

import (
	"log/slog"
	"net/http"
	"strings"

	"my-ankode/internal/handler/http/auth"
	"my-ankode/internal/handler/http/requestid"
	"my-ankode/internal/handler/http/respond"
	"my-ankode/internal/observability/logging"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/samber/lo"
)

// Defaults for GuardConfig.
const (
	DefaultPrefix = "/api/"
	DefaultHeader = "X-CSRF-Token"
	DefaultIntent = "api"
	// AnonymousSubject binds tokens issued to callers without a session.
	AnonymousSubject = "anonymous"
)

// Rejection messages.
const (
	MsgMissingToken = "Missing CSRF token"
	MsgInvalidToken = "Invalid CSRF token"
)

// DefaultExempt lists the mutating endpoints reachable without a token:
// the token endpoint itself and the two that establish a session.
var DefaultExempt = []string{"/api/csrf-token", "/api/auth/token", "/api/auth/register"}

var rejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "csrf_rejections_total",
		Help: "Total number of requests rejected by the anti-forgery guard",
	},
	[]string{"reason"}, // missing | invalid
)

// TokenManager issues and checks tokens bound to an intent and a subject.
type TokenManager interface {
	Issue(intent, subject string) (string, error)
	Valid(intent, subject, token string) bool
}

// GuardConfig selects the requests the guard inspects.
type GuardConfig struct {
	Prefix string
	Header string
	Intent string
	// Exempt paths match exactly.
	Exempt []string
}

// DefaultGuardConfig returns the configuration used by the API.
func DefaultGuardConfig() GuardConfig {
	return GuardConfig{
		Prefix: DefaultPrefix,
		Header: DefaultHeader,
		Intent: DefaultIntent,
		Exempt: append([]string(nil), DefaultExempt...),
	}
}

func (c GuardConfig) withDefaults() GuardConfig {
	if c.Prefix == "" {
		c.Prefix = DefaultPrefix
	}
	if c.Header == "" {
		c.Header = DefaultHeader
	}
	if c.Intent == "" {
		c.Intent = DefaultIntent
	}
	return c
}

// Guard returns middleware that requires a valid token on POST, PUT, PATCH
// and DELETE under cfg.Prefix. Passing requests are not modified.
func Guard(cfg GuardConfig, tm TokenManager) func(http.Handler) http.Handler {
	cfg = cfg.withDefaults()
	exempt := lo.SliceToMap(cfg.Exempt, func(p string) (string, struct{}) { return p, struct{}{} })

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !guarded(r, cfg.Prefix, exempt) {
				next.ServeHTTP(w, r)
				return
			}

			token := strings.TrimSpace(r.Header.Get(cfg.Header))
			if token == "" {
				reject(w, r, "missing", MsgMissingToken)
				return
			}
			if !tm.Valid(cfg.Intent, Subject(r), token) {
				reject(w, r, "invalid", MsgInvalidToken)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Subject is the identity a token is bound to: the signed-in user id or
// AnonymousSubject.
func Subject(r *http.Request) string {
	if user := auth.UserFromContext(r.Context()); user != nil {
		return user.Subject()
	}
	return AnonymousSubject
}

func guarded(r *http.Request, prefix string, exempt map[string]struct{}) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return false
	}
	if !strings.HasPrefix(r.URL.Path, prefix) {
		return false
	}
	_, skip := exempt[r.URL.Path]
	return !skip
}

func reject(w http.ResponseWriter, r *http.Request, reason, msg string) {
	rejectionsTotal.WithLabelValues(reason).Inc()
	logging.FromContext(r.Context()).Warn("csrf token rejected",
		slog.String("request_id", requestid.FromContext(r.Context())),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("reason", reason))
	respond.Message(w, http.StatusBadRequest, msg)
}
