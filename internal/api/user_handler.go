package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/task-manager-api/internal/api/shared"
	"github.com/phrazzld/task-manager-api/internal/platform/logger"
	"github.com/phrazzld/task-manager-api/internal/service"
	"github.com/phrazzld/task-manager-api/internal/store"
)

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	FirstName string `json:"first_name" validate:"required,max=255"`
	LastName  string `json:"last_name"  validate:"required,max=255"`
	Email     string `json:"email"      validate:"required,email"`
	Password  string `json:"password"   validate:"required,min=3,max=72"`
}

// UpdateUserRequest defines the payload for profile updates. Omitted fields
// are left unchanged.
type UpdateUserRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=255"`
	LastName  *string `json:"last_name"  validate:"omitempty,max=255"`
	Email     *string `json:"email"      validate:"omitempty,email"`
	Password  *string `json:"password"   validate:"omitempty,min=3,max=72"`
}

// userEcho returns the submitted profile fields without the password.
func userEcho(firstName, lastName, email *string) map[string]any {
	out := map[string]any{}
	if firstName != nil {
		out["first_name"] = *firstName
	}
	if lastName != nil {
		out["last_name"] = *lastName
	}
	if email != nil {
		out["email"] = *email
	}
	return out
}

// UserHandler handles user-related HTTP requests.
type UserHandler struct {
	users  service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users service.UserService, logger *slog.Logger) *UserHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for UserHandler")
	}
	return &UserHandler{
		users:  users,
		logger: logger.With(slog.String("component", "user_handler")),
	}
}

// Register handles POST /api/users
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	echo := userEcho(&req.FirstName, &req.LastName, &req.Email)
	if err := shared.ValidateRequest(req); err != nil {
		handleAPIErrorWithInput(w, r, err, "", echo)
		return
	}

	user, err := h.users.Register(r.Context(), service.UserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		handleAPIErrorWithInput(w, r, err, "", echo)
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Info("user registered via API",
		slog.Int64("user_id", user.ID))
	shared.RespondWithJSON(w, r, http.StatusCreated, user)
}

// List handles GET /api/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list users")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, users)
}

// Get handles GET /api/users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id", store.ErrUserNotFound)
	if !ok {
		return
	}

	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, user)
}

// Update handles PATCH /api/users/{id}
// Users may only change their own account.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	actorID, id, ok := handleActorAndPathID(w, r, "id", store.ErrUserNotFound, h.logger)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	echo := userEcho(req.FirstName, req.LastName, req.Email)
	if err := shared.ValidateRequest(req); err != nil {
		handleAPIErrorWithInput(w, r, err, "", echo)
		return
	}

	user, err := h.users.Update(r.Context(), actorID, id, service.UserPatch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		handleAPIErrorWithInput(w, r, err, "", echo)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, user)
}

// Delete handles DELETE /api/users/{id}
// Users may only delete their own account, and not while they created tasks.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, id, ok := handleActorAndPathID(w, r, "id", store.ErrUserNotFound, h.logger)
	if !ok {
		return
	}

	if err := h.users.Delete(r.Context(), actorID, id); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
