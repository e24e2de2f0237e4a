package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"my-ankode/internal/config"
	hhttp "my-ankode/internal/handler/http"
	harticle "my-ankode/internal/handler/http/article"
	hauth "my-ankode/internal/handler/http/auth"
	hcomp "my-ankode/internal/handler/http/competence"
	"my-ankode/internal/handler/http/csrf"
	"my-ankode/internal/handler/http/middleware"
	hproj "my-ankode/internal/handler/http/project"
	"my-ankode/internal/handler/http/requestid"
	hsnip "my-ankode/internal/handler/http/snippet"
	"my-ankode/internal/handler/http/veille"
	pgRepo "my-ankode/internal/infra/adapter/persistence/postgres"
	"my-ankode/internal/infra/adapter/persistence/redisstore"
	"my-ankode/internal/infra/feed"
	"my-ankode/internal/infra/token"
	"my-ankode/internal/observability/tracing"
	authservice "my-ankode/internal/service/auth"
	"my-ankode/internal/service/authz"
	artUC "my-ankode/internal/usecase/article"
	compUC "my-ankode/internal/usecase/competence"
	"my-ankode/internal/usecase/ingest"
	projUC "my-ankode/internal/usecase/project"
	snipUC "my-ankode/internal/usecase/snippet"
	srcUC "my-ankode/internal/usecase/source"
)

// Deps is everything the router needs from the environment.
type Deps struct {
	DB       *sql.DB
	Redis    *redis.Client
	Logger   *slog.Logger
	Version  string
	Security *config.SecurityConfig
	Feed     feed.Config
	CORS     middleware.CORSConfig

	JWTSecret  string
	CSRFSecret string
	CSRFTTL    time.Duration

	AuthRPS        float64
	AuthBurst      int
	TrustForwarded bool
	MaxBodyBytes   int64
}

// newRouter builds the API handler. The returned limiter guards the
// credential endpoints and needs its cleanup loop started by the caller.
func newRouter(d Deps) (http.Handler, *hhttp.RateLimiter, error) {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	accessTokens, err := token.NewJWTManager(d.JWTSecret, d.Security.GetJWTExpiry(), "my-ankode")
	if err != nil {
		return nil, nil, fmt.Errorf("access tokens: %w", err)
	}
	csrfTokens, err := token.NewJWTManager(d.CSRFSecret, d.CSRFTTL, "my-ankode-csrf")
	if err != nil {
		return nil, nil, fmt.Errorf("csrf tokens: %w", err)
	}

	policy := authz.NewPolicy()
	authSvc := authservice.NewAuthService(pgRepo.NewUserRepo(d.DB), accessTokens, authservice.CredentialRequirements{
		MinPasswordLength: d.Security.GetMinPasswordLength(),
		WeakPasswords:     d.Security.GetWeakPasswords(),
	})

	articles := pgRepo.NewArticleRepo(d.DB)
	sources := pgRepo.NewSourceRepo(d.DB)
	httpClient := feed.NewHTTPClient(d.Feed)
	ingestSvc := ingest.NewService(feed.NewHTTPFetcher(d.Feed, httpClient), feed.NewGofeedParser(), articles, sources, logger)
	sourceSvc := srcUC.NewService(sources, feed.NewDiscoverer(d.Feed, httpClient))

	authLimiter := hhttp.NewRateLimiter(d.AuthRPS, d.AuthBurst, d.TrustForwarded)

	mux := http.NewServeMux()
	mux.Handle("GET /health", &hhttp.HealthHandler{DB: d.DB, Redis: d.Redis, Version: d.Version})
	mux.Handle("GET /ready", &hhttp.ReadyHandler{DB: d.DB, Redis: d.Redis})
	mux.Handle("GET /live", &hhttp.LiveHandler{})
	mux.Handle("GET /metrics", hhttp.MetricsHandler())

	mux.Handle("GET /api/csrf-token", csrf.TokenHandler(csrfTokens))
	mux.Handle("POST /api/auth/register", authLimiter.Limit(hauth.RegisterHandler(authSvc)))
	mux.Handle("POST /api/auth/token", authLimiter.Limit(hauth.TokenHandler(authSvc)))

	harticle.Register(mux, &artUC.Service{Repo: articles})
	veille.Register(mux, veille.Handler{Ingest: ingestSvc, Sources: sourceSvc})
	hproj.Register(mux, projUC.NewService(pgRepo.NewProjectRepo(d.DB), pgRepo.NewTaskRepo(d.DB), policy))
	hcomp.Register(mux, compUC.NewService(pgRepo.NewCompetenceRepo(d.DB), policy))
	hsnip.Register(mux, snipUC.NewService(redisstore.NewSnippetRepo(d.Redis), policy))

	guard := csrf.Guard(csrf.GuardConfig{
		Prefix: csrf.DefaultPrefix,
		Header: d.Security.GetCSRFHeader(),
		Intent: csrf.DefaultIntent,
		Exempt: d.Security.GetCSRFExempt(),
	}, csrfTokens)

	maxBody := d.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}

	return hhttp.Chain(mux,
		requestid.Middleware,
		tracing.Middleware,
		hhttp.Logging(logger),
		hhttp.Recover(logger),
		middleware.CORS(d.CORS),
		hhttp.MetricsMiddleware,
		hhttp.LimitRequestBody(maxBody),
		hauth.Middleware(authSvc),
		guard,
	), authLimiter, nil
}
