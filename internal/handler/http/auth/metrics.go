package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// authRequestsTotal counts register and token calls by result.
	authRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_requests_total",
			Help: "Total authentication requests by endpoint and result",
		},
		[]string{"endpoint", "result"}, // result: success | failure | conflict | invalid | error
	)

	// authDuration includes bcrypt, which dominates the latency.
	authDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "auth_duration_seconds",
			Help:    "Authentication endpoint duration by endpoint",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		},
		[]string{"endpoint"},
	)

	bearerTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_bearer_tokens_total",
			Help: "Bearer tokens seen by the auth middleware by outcome",
		},
		[]string{"outcome"},
	)
)

// RecordAuthRequest records the result of a register or token call.
func RecordAuthRequest(endpoint, result string) {
	authRequestsTotal.WithLabelValues(endpoint, result).Inc()
}

// RecordAuthDuration records how long a register or token call took.
func RecordAuthDuration(endpoint string, durationSeconds float64) {
	authDuration.WithLabelValues(endpoint).Observe(durationSeconds)
}

// RecordBearer records a bearer token outcome: valid, invalid or error.
func RecordBearer(outcome string) {
	bearerTokensTotal.WithLabelValues(outcome).Inc()
}
