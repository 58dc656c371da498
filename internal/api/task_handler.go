package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/task-manager-api/internal/api/shared"
	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/platform/logger"
	"github.com/phrazzld/task-manager-api/internal/service"
	"github.com/phrazzld/task-manager-api/internal/store"
)

// TaskHandler handles task-related HTTP requests. Every route requires an
// authenticated user.
type TaskHandler struct {
	tasks  service.TaskService
	logger *slog.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(tasks service.TaskService, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TaskHandler")
	}
	return &TaskHandler{
		tasks:  tasks,
		logger: logger.With(slog.String("component", "task_handler")),
	}
}

// List handles GET /api/tasks
// Query parameters status, executor, label and isCreatorUser narrow the
// listing; unusable values are ignored.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	actorID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	filter := domain.ParseTaskFilter(r.URL.Query(), actorID)
	overview, err := h.tasks.Overview(r.Context(), filter)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}

	log.Debug("listed tasks",
		slog.Int("count", len(overview.Tasks)),
		slog.String("filter", filter.Values().Encode()))
	shared.RespondWithJSON(w, r, http.StatusOK, overview)
}

// Get handles GET /api/tasks/{id}
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	_, id, ok := handleActorAndPathID(w, r, "id", store.ErrTaskNotFound, h.logger)
	if !ok {
		return
	}

	task, err := h.tasks.Get(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// Create handles POST /api/tasks
// The creator is always the authenticated user; a creator in the body is ignored.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	actorID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	req, err := decodeTaskRequest(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	in, err := req.toInput()
	if err != nil {
		handleAPIErrorWithInput(w, r, err, "", req.echo())
		return
	}

	task, err := h.tasks.Create(r.Context(), actorID, in)
	if err != nil {
		handleAPIErrorWithInput(w, r, err, "", req.echo())
		return
	}

	log.Debug("task created via API", slog.Int64("task_id", task.ID))
	shared.RespondWithJSON(w, r, http.StatusCreated, task)
}

// Update handles PATCH /api/tasks/{id}
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	actorID, id, ok := handleActorAndPathID(w, r, "id", store.ErrTaskNotFound, h.logger)
	if !ok {
		return
	}

	req, err := decodeTaskRequest(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	patch, err := req.toPatch()
	if err != nil {
		handleAPIErrorWithInput(w, r, err, "", req.echo())
		return
	}

	task, err := h.tasks.Update(r.Context(), actorID, id, patch)
	if err != nil {
		handleAPIErrorWithInput(w, r, err, "", req.echo())
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// Delete handles DELETE /api/tasks/{id}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, id, ok := handleActorAndPathID(w, r, "id", store.ErrTaskNotFound, h.logger)
	if !ok {
		return
	}

	if err := h.tasks.Delete(r.Context(), actorID, id); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
