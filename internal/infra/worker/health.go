package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CircuitReporter lists feed hosts whose circuit breaker is open.
type CircuitReporter interface {
	OpenCircuits() []string
}

// HealthServer exposes the worker probes:
//
//	GET /health         liveness, always 200
//	GET /health/ready   200 once SetReady(true), 503 before
//	GET /health/feeds   503 while any feed host circuit is open
type HealthServer struct {
	addr     string
	logger   *slog.Logger
	ready    atomic.Bool
	circuits CircuitReporter
}

type healthResponse struct {
	Status       string   `json:"status"`
	OpenCircuits []string `json:"open_circuits,omitempty"`
}

// NewHealthServer returns a server that starts not ready. circuits may be nil.
func NewHealthServer(addr string, logger *slog.Logger, circuits CircuitReporter) *HealthServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthServer{addr: addr, logger: logger, circuits: circuits}
}

// SetReady flips the readiness probe.
func (h *HealthServer) SetReady(ready bool) {
	h.ready.Store(ready)
	h.logger.Info("worker readiness changed", slog.Bool("ready", ready))
}

// Handler returns the probe routes.
func (h *HealthServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		h.write(w, http.StatusOK, healthResponse{Status: "ok"})
	})
	mux.HandleFunc("GET /health/ready", func(w http.ResponseWriter, _ *http.Request) {
		if !h.ready.Load() {
			h.write(w, http.StatusServiceUnavailable, healthResponse{Status: "not ready"})
			return
		}
		h.write(w, http.StatusOK, healthResponse{Status: "ok"})
	})
	mux.HandleFunc("GET /health/feeds", func(w http.ResponseWriter, _ *http.Request) {
		var open []string
		if h.circuits != nil {
			open = h.circuits.OpenCircuits()
		}
		if len(open) > 0 {
			h.write(w, http.StatusServiceUnavailable, healthResponse{Status: "degraded", OpenCircuits: open})
			return
		}
		h.write(w, http.StatusOK, healthResponse{Status: "ok"})
	})
	return mux
}

// Start serves until ctx is cancelled and returns nil after a clean shutdown.
func (h *HealthServer) Start(ctx context.Context) error {
	return Serve(ctx, h.logger, "health", &http.Server{
		Addr:         h.addr,
		Handler:      h.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  60 * time.Second,
	})
}

func (h *HealthServer) write(w http.ResponseWriter, status int, body healthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode health response", slog.Any("error", err))
	}
}

// MetricsServer serves the Prometheus exposition for gatherer on /metrics.
func MetricsServer(addr string, gatherer prometheus.Gatherer) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}

// Serve runs srv until ctx is cancelled, then shuts it down within five
// seconds. A clean shutdown returns nil.
func Serve(ctx context.Context, logger *slog.Logger, name string, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", slog.String("server", name), slog.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", slog.String("server", name), slog.Any("error", err))
			return err
		}
		logger.Info("server stopped", slog.String("server", name))
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("server failed", slog.String("server", name), slog.Any("error", err))
		return err
	}
}
