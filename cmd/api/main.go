package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"

	"my-ankode/internal/config"
	"my-ankode/internal/handler/http/middleware"
	"my-ankode/internal/infra/db"
	"my-ankode/internal/infra/feed"
	"my-ankode/internal/infra/token"
	"my-ankode/internal/observability/logging"
	"my-ankode/internal/observability/tracing"
	envcfg "my-ankode/pkg/config"
)

func main() {
	if err := envcfg.LoadDotEnv(); err != nil {
		slog.Error("failed to load .env file", slog.Any("error", err))
		os.Exit(1)
	}
	logger := initLogger()
	secret := validateJWTSecret(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing := tracing.Init()
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("failed to stop tracer provider", slog.Any("error", err))
		}
	}()

	database := initDatabase(ctx, logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	rdb := initRedis(ctx, logger)
	defer func() {
		if err := rdb.Close(); err != nil {
			logger.Error("failed to close redis", slog.Any("error", err))
		}
	}()

	deps := loadDeps(logger, database, rdb, secret)
	handler, limiter, err := newRouter(deps)
	if err != nil {
		logger.Error("failed to build router", slog.Any("error", err))
		os.Exit(1)
	}
	go limiter.StartCleanup(ctx, 5*time.Minute)

	runServer(ctx, cancel, logger, handler, deps.Version)
}

func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// validateJWTSecret exits unless JWT_SECRET is long and not a well-known value.
func validateJWTSecret(logger *slog.Logger) string {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		logger.Error("JWT_SECRET must be set")
		os.Exit(1)
	}
	if len(secret) < token.MinSecretLength {
		logger.Error("JWT_SECRET must be at least 32 characters (256 bits)")
		os.Exit(1)
	}
	lower := strings.ToLower(secret)
	for _, weak := range []string{"secret", "password", "changeme", "default", "my-ankode"} {
		if strings.Trim(lower, "0123456789") == weak || strings.Repeat(weak, len(lower)/len(weak)) == lower {
			logger.Error("JWT_SECRET must not be a common weak value", slog.String("weak_value", weak))
			os.Exit(1)
		}
	}
	return secret
}

func initDatabase(ctx context.Context, logger *slog.Logger) *sql.DB {
	database, err := db.Open(ctx)
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

func initRedis(ctx context.Context, logger *slog.Logger) *redis.Client {
	cfg, err := db.RedisConfigFromEnv()
	if err != nil {
		logger.Error("invalid redis configuration", slog.Any("error", err))
		os.Exit(1)
	}
	client, err := db.OpenRedis(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect to redis", slog.Any("error", err))
		os.Exit(1)
	}
	return client
}

func loadDeps(logger *slog.Logger, database *sql.DB, rdb *redis.Client, secret string) Deps {
	security, err := config.LoadSecurityConfig(os.Getenv("SECURITY_CONFIG"))
	if err != nil {
		logger.Error("failed to load security configuration", slog.Any("error", err))
		os.Exit(1)
	}
	feedCfg, err := feed.LoadConfigFromEnv()
	if err != nil {
		logger.Error("invalid feed configuration", slog.Any("error", err))
		os.Exit(1)
	}
	cors, err := middleware.LoadCORSConfig()
	if err != nil {
		logger.Error("invalid CORS configuration", slog.Any("error", err))
		os.Exit(1)
	}
	cors.Logger = logger
	if !lo.Contains(cors.AllowedHeaders, security.GetCSRFHeader()) {
		cors.AllowedHeaders = append(cors.AllowedHeaders, security.GetCSRFHeader())
	}

	deps := Deps{
		DB:             database,
		Redis:          rdb,
		Logger:         logger,
		Version:        envcfg.GetEnvString("VERSION", "dev"),
		Security:       security,
		Feed:           feedCfg,
		CORS:           cors,
		JWTSecret:      secret,
		CSRFSecret:     envcfg.GetEnvString("CSRF_SECRET", secret),
		CSRFTTL:        envcfg.GetEnvDuration("CSRF_TOKEN_TTL", 2*time.Hour),
		AuthRPS:        envcfg.GetEnvFloat("AUTH_RATE_LIMIT_RPS", 1),
		AuthBurst:      envcfg.GetEnvInt("AUTH_RATE_LIMIT_BURST", 5),
		TrustForwarded: envcfg.GetEnvBool("TRUST_PROXY_HEADERS", false),
		MaxBodyBytes:   int64(envcfg.GetEnvInt("HTTP_MAX_BODY_BYTES", 1<<20)),
	}
	logger.Info("api configuration loaded",
		slog.String("version", deps.Version),
		slog.Duration("jwt_expiry", security.GetJWTExpiry()),
		slog.Duration("csrf_ttl", deps.CSRFTTL),
		slog.Int("csrf_exempt_paths", len(security.GetCSRFExempt())),
		slog.Int("cors_origins", len(cors.AllowedOrigins)),
		slog.Float64("auth_rate_limit_rps", deps.AuthRPS),
		slog.Bool("trust_proxy_headers", deps.TrustForwarded))
	return deps
}

func runServer(ctx context.Context, cancel context.CancelFunc, logger *slog.Logger, handler http.Handler, version string) {
	addr := envcfg.GetEnvString("HTTP_ADDR", ":8080")
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting", slog.String("addr", addr), slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
