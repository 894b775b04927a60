package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/halloran/ap-gateway-go/internal/domain"
	"github.com/halloran/ap-gateway-go/internal/service"
)

// ============================================================
// Accounts: signup, login, session tokens
// ============================================================

func signupHandler(accounts *service.AccountService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/signup")
		defer span.End()

		var req domain.SignupRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := accounts.Signup(ctx, &req); err != nil {
			// The frontend branches on this status value.
			var conflict *domain.ErrConflict
			if errors.As(err, &conflict) {
				writeJSON(w, http.StatusConflict, map[string]string{"status": "exists"})
				return
			}
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
	}
}

func loginHandler(accounts *service.AccountService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/login")
		defer span.End()

		var req domain.LoginRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		resp, err := accounts.Login(ctx, &req)
		if err != nil {
			var unauthorized *domain.ErrUnauthorized
			if errors.As(err, &unauthorized) {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"status": "invalid"})
				return
			}
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func sessionTokenHandler(accounts *service.AccountService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/token")
		defer span.End()

		var req domain.SessionTokenRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		resp, err := accounts.SessionToken(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// meHandler returns the authenticated account and its entity link.
func meHandler(accounts *service.AccountService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/auth/me")
		defer span.End()

		email := AccountEmailFromContext(ctx)
		if email == "" {
			writeError(w, http.StatusUnauthorized, "missing authenticated account")
			return
		}

		account, link, err := accounts.Profile(ctx, email)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"account": account,
			"link":    link,
		})
	}
}
