package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"exam-registration/internal/data/entity"
	"exam-registration/pkg/jwt"
	"exam-registration/pkg/utils"

	"go.uber.org/zap"
)

// SessionResolver validates bearer tokens and loads the account behind them.
type SessionResolver interface {
	Validate(token string) (*jwt.Claims, error)
	ResolveAccount(ctx context.Context, claims *jwt.Claims) (*entity.User, error)
}

// AuthJWT requires a valid bearer token whose account still exists.
// notFound is the error ResolveAccount reports for a deleted account.
func AuthJWT(sessions SessionResolver, notFound error, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.ResponseUnauthorized(w, "Missing authorization header")
				return
			}

			token, ok := bearerToken(authHeader)
			if !ok {
				utils.ResponseUnauthorized(w, "Invalid authorization header format")
				return
			}

			claims, err := sessions.Validate(token)
			if err != nil {
				logger.Warn("Rejected token", zap.Error(err), zap.String("path", r.URL.Path))
				utils.ResponseUnauthorized(w, "Invalid or expired token")
				return
			}

			user, err := sessions.ResolveAccount(r.Context(), claims)
			if errors.Is(err, notFound) {
				logger.Warn("Token for missing account", zap.Int64("user_id", claims.UserID))
				utils.ResponseUnauthorized(w, "Invalid or expired token")
				return
			}
			if err != nil {
				logger.Error("Failed to resolve account", zap.Error(err), zap.Int64("user_id", claims.UserID))
				utils.ResponseInternalError(w, "Internal server error")
				return
			}

			ctx := utils.SetUserContext(r.Context(), user.ID, user.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Admin allows only the operator account. Must run after AuthJWT.
func Admin(adminEmail string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email, ok := utils.GetEmailFromContext(r.Context())
			if !ok {
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			if adminEmail == "" || !strings.EqualFold(email, adminEmail) {
				logger.Warn("Admin check: non-admin access attempt",
					zap.String("email", email),
					zap.String("path", r.URL.Path))
				utils.ResponseForbidden(w, "Admin access only")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the token from "Bearer <token>"; the scheme is case-insensitive.
func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}
