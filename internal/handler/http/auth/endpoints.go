package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"my-ankode/internal/domain/entity"
	"my-ankode/internal/handler/http/respond"
	"my-ankode/internal/observability/logging"
	authservice "my-ankode/internal/service/auth"
)

// Service is the account use case behind the auth endpoints.
type Service interface {
	Register(ctx context.Context, creds authservice.Credentials) (*entity.User, error)
	Login(ctx context.Context, creds authservice.Credentials) (string, error)
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// RegisterHandler serves POST /api/auth/register.
func RegisterHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		logger := logging.FromContext(r.Context())
		defer func() { RecordAuthDuration("register", time.Since(start).Seconds()) }()

		var req credentialsRequest
		if err := respond.Decode(r, &req); err != nil {
			RecordAuthRequest("register", "invalid")
			respond.DomainError(w, err)
			return
		}

		user, err := svc.Register(r.Context(), authservice.Credentials{Email: req.Email, Password: req.Password})
		if err != nil {
			var verr *entity.ValidationError
			switch {
			case errors.As(err, &verr):
				RecordAuthRequest("register", "invalid")
			case errors.Is(err, entity.ErrConflict):
				RecordAuthRequest("register", "conflict")
			default:
				RecordAuthRequest("register", "error")
			}
			logger.Warn("registration failed", slog.Any("error", err))
			respond.DomainError(w, err)
			return
		}

		RecordAuthRequest("register", "success")
		logger.Info("user registered", slog.Int64("user_id", user.ID))
		respond.JSON(w, http.StatusCreated, userResponse{ID: user.ID, Email: user.Email})
	}
}

// TokenHandler serves POST /api/auth/token. Wrong email and wrong password
// get the same 401.
func TokenHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		logger := logging.FromContext(r.Context())
		defer func() { RecordAuthDuration("token", time.Since(start).Seconds()) }()

		var req credentialsRequest
		if err := respond.Decode(r, &req); err != nil {
			RecordAuthRequest("token", "invalid")
			respond.DomainError(w, err)
			return
		}

		token, err := svc.Login(r.Context(), authservice.Credentials{Email: req.Email, Password: req.Password})
		if errors.Is(err, authservice.ErrInvalidCredentials) {
			RecordAuthRequest("token", "failure")
			logger.Warn("authentication failed", slog.String("reason", "invalid_credentials"))
			respond.Message(w, http.StatusUnauthorized, "unauthorized: "+authservice.ErrInvalidCredentials.Error())
			return
		}
		if err != nil {
			RecordAuthRequest("token", "error")
			respond.SafeError(w, http.StatusInternalServerError, err)
			return
		}

		RecordAuthRequest("token", "success")
		logger.Info("authentication successful")
		respond.JSON(w, http.StatusOK, tokenResponse{Token: token})
	}
}
