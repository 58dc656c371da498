package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/task-manager-api/internal/api/shared"
	"github.com/phrazzld/task-manager-api/internal/platform/logger"
	"github.com/phrazzld/task-manager-api/internal/service/auth"
)

// AuthMiddleware resolves the session token of a request, from the
// Authorization header or the session cookie, into the acting user.
type AuthMiddleware struct {
	jwtService auth.JWTService
	revoker    auth.Revoker
	cookieName string
	logger     *slog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
// A nil revoker disables revocation checks.
func NewAuthMiddleware(
	jwtService auth.JWTService,
	revoker auth.Revoker,
	cookieName string,
	logger *slog.Logger,
) *AuthMiddleware {
	if revoker == nil {
		revoker = auth.NoopRevoker{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthMiddleware{
		jwtService: jwtService,
		revoker:    revoker,
		cookieName: cookieName,
		logger:     logger.With(slog.String("component", "auth_middleware")),
	}
}

// Authenticate rejects requests without a valid, unrevoked session with 401
// and adds the session to the context of all others.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Authorization")

		claims, err := m.resolve(r)
		if err != nil {
			m.reject(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(m.withSession(r, claims)))
	})
}

// Optional adds the session to the context when the request carries a valid
// one and passes every request through.
func (m *AuthMiddleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.resolve(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(m.withSession(r, claims)))
	})
}

func (m *AuthMiddleware) resolve(r *http.Request) (*auth.Claims, error) {
	token, err := m.tokenFromRequest(r)
	if err != nil {
		return nil, err
	}

	claims, err := m.jwtService.ValidateToken(r.Context(), token)
	if err != nil {
		return nil, err
	}

	revoked, err := m.revoker.IsRevoked(r.Context(), claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, auth.ErrRevokedToken
	}
	return claims, nil
}

// tokenFromRequest prefers the Authorization header over the cookie.
func (m *AuthMiddleware) tokenFromRequest(r *http.Request) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return "", auth.ErrInvalidToken
		}
		return parts[1], nil
	}

	if m.cookieName != "" {
		if c, err := r.Cookie(m.cookieName); err == nil && c.Value != "" {
			return c.Value, nil
		}
	}
	return "", auth.ErrMissingToken
}

func (m *AuthMiddleware) withSession(r *http.Request, claims *auth.Claims) context.Context {
	ctx := shared.WithSession(r.Context(), claims)
	log := logger.FromContextOrDefault(ctx, m.logger).With(slog.Int64("user_id", claims.UserID))
	return logger.WithContext(ctx, log)
}

func (m *AuthMiddleware) reject(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrMissingToken):
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
	case errors.Is(err, auth.ErrExpiredToken):
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Token expired")
	case errors.Is(err, auth.ErrRevokedToken):
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Session has ended")
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrTokenNotYetValid):
		shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Invalid token", err,
			shared.WithElevatedLogLevel())
	default:
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Authentication error", err)
	}
}
