package http

import (
	"context"
	"net/http"
	"strings"

	"library-backend/internal/domain"
	"library-backend/internal/logger"
	"library-backend/internal/security"
	"library-backend/internal/service"
)

type contextKey string

const callerContextKey contextKey = "caller"

// CallerFromContext returns the authenticated caller placed by the auth
// middleware. The bool is false on routes that skipped authentication.
func CallerFromContext(ctx context.Context) (service.Caller, bool) {
	caller, ok := ctx.Value(callerContextKey).(service.Caller)
	return caller, ok
}

// AuthMiddleware validates the bearer token and injects the verified caller
// into the request context. Role comes from the token claims, never from
// the request body.
func AuthMiddleware(tokens security.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing authorization header"})
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid authorization header"})
				return
			}

			claims, err := tokens.ValidateToken(parts[1])
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
				return
			}
			if claims.Type != security.TokenTypeAccess {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: security.ErrWrongTokenType.Error()})
				return
			}

			caller := service.Caller{UserID: claims.UserID, Role: domain.Role(claims.Role)}
			ctx := context.WithValue(r.Context(), callerContextKey, caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects non-admin callers before the handler runs. Services
// re-check the role themselves; this just fails fast with a clean 403.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, ok := CallerFromContext(r.Context())
		if !ok || !caller.IsAdmin() {
			writeJSON(w, http.StatusForbidden, errorResponse{Error: "admin access required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// LoggingMiddleware records each request at debug level.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("Handling request", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
