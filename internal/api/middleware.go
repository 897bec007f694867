package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/eudysgarcia/HDC-Server/pkg/auth"
)

// ContextKey is the type for request-context keys set by the middleware.
type ContextKey string

const (
	// UserIDKey holds the authenticated user's id.
	UserIDKey ContextKey = "userID"
	// UserRoleKey holds the authenticated user's role.
	UserRoleKey ContextKey = "userRole"
)

// UserIDFrom returns the authenticated user id, or "" for anonymous requests.
func UserIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(UserIDKey).(string)
	return id
}

// UserRoleFrom returns the authenticated user's role, or "".
func UserRoleFrom(ctx context.Context) string {
	role, _ := ctx.Value(UserRoleKey).(string)
	return role
}

// AuthMiddleware verifies bearer tokens and attaches the caller's identity to
// the request context.
type AuthMiddleware struct {
	tokens auth.TokenManager
	logger *slog.Logger
}

func NewAuthMiddleware(tokens auth.TokenManager, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, logger: logger}
}

func (m *AuthMiddleware) claimsFromHeader(r *http.Request) (*auth.Claims, string) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, "Not authorized, no token"
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return nil, "Not authorized, invalid token"
	}
	claims, err := m.tokens.Validate(parts[1])
	if err != nil {
		m.logger.WarnContext(r.Context(), "token validation failed", slog.String("error", err.Error()))
		return nil, "Not authorized, invalid token"
	}
	return claims, ""
}

// Require rejects requests without a valid bearer token with 401.
func (m *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, failMsg := m.claimsFromHeader(r)
		if claims == nil {
			respondError(w, r, m.logger, http.StatusUnauthorized, failMsg)
			return
		}
		ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, UserRoleKey, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Optional attaches the caller's identity when a valid token is present and
// proceeds anonymously otherwise. Used on public reads that personalize
// engagement metadata.
func (m *AuthMiddleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, _ := m.claimsFromHeader(r); claims != nil {
			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, UserRoleKey, claims.Role)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects authenticated callers whose role is not admin with 403.
// Must run inside Require.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserRoleFrom(r.Context()) != "admin" {
			respondError(w, r, m.logger, http.StatusForbidden, "Access denied, admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs one line per request.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.InfoContext(r.Context(), "request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Duration("duration", time.Since(start)))
		})
	}
}

// bodyLimit caps request body size; decode helpers turn the overflow into the
// fixed 413 response.
func bodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
