package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/task-manager-api/internal/api/shared"
	"github.com/phrazzld/task-manager-api/internal/platform/logger"
	"github.com/phrazzld/task-manager-api/internal/redact"
	"github.com/phrazzld/task-manager-api/internal/service"
	"github.com/phrazzld/task-manager-api/internal/service/auth"
)

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SessionResponse defines the successful response of the login endpoint.
type SessionResponse struct {
	UserID    int64  `json:"user_id"`
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// SessionHandler handles login and logout.
type SessionHandler struct {
	users      service.UserService
	jwtService auth.JWTService
	revoker    auth.Revoker
	cookie     CookieConfig
	logger     *slog.Logger
}

// NewSessionHandler creates a new SessionHandler. A nil revoker makes logout
// client-side only.
func NewSessionHandler(
	users service.UserService,
	jwtService auth.JWTService,
	revoker auth.Revoker,
	cookie CookieConfig,
	logger *slog.Logger,
) *SessionHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for SessionHandler")
	}
	if revoker == nil {
		revoker = auth.NoopRevoker{}
	}
	return &SessionHandler{
		users:      users,
		jwtService: jwtService,
		revoker:    revoker,
		cookie:     cookie,
		logger:     logger.With(slog.String("component", "session_handler")),
	}
}

// Login handles POST /api/session
// On success the token is returned in the body and set as an HttpOnly cookie.
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		handleAPIErrorWithInput(w, r, err, "", map[string]any{"email": req.Email})
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context(), user.ID)
	if err != nil {
		log.Error("failed to generate token",
			slog.String("error", redact.Error(err)),
			slog.Int64("user_id", user.ID))
		HandleAPIError(w, r, err, "Failed to generate authentication token")
		return
	}

	http.SetCookie(w, h.sessionCookie(token.Value, token.ExpiresAt))

	log.Info("user logged in", slog.Int64("user_id", user.ID))
	shared.RespondWithJSON(w, r, http.StatusOK, SessionResponse{
		UserID:    user.ID,
		Token:     token.Value,
		ExpiresAt: token.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// Logout handles DELETE /api/session
// The presented token is revoked for as long as validation would still accept
// it and the cookie is cleared. Logging out without a session is not an error.
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	if claims, ok := shared.ClaimsFromContext(r.Context()); ok {
		until := claims.ValidUntil
		if until.IsZero() {
			until = claims.ExpiresAt
		}
		if err := h.revoker.Revoke(r.Context(), claims.ID, until); err != nil {
			HandleAPIError(w, r, err, "Failed to end session")
			return
		}
		log.Info("user logged out", slog.Int64("user_id", claims.UserID))
	}

	http.SetCookie(w, h.sessionCookie("", time.Unix(0, 0)))
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) sessionCookie(value string, expires time.Time) *http.Cookie {
	c := &http.Cookie{
		Name:     h.cookie.Name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if value == "" {
		c.MaxAge = -1
	}
	return c
}
