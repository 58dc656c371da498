package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/phrazzld/task-manager-api/internal/api/shared"
	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/store"
)

// NameRequest is the body of status and label create/update requests.
type NameRequest struct {
	Name string `json:"name"`
}

// taxonomyService is implemented by service.StatusService and service.LabelService.
type taxonomyService[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id int64) (*T, error)
	Create(ctx context.Context, name string) (*T, error)
	Update(ctx context.Context, id int64, name string) (*T, error)
	Delete(ctx context.Context, id int64) error
}

// TaxonomyHandler serves the CRUD routes of statuses or labels. Reads are
// public; writes sit behind the auth middleware.
type TaxonomyHandler[T any] struct {
	svc      taxonomyService[T]
	notFound error
	logger   *slog.Logger
}

// NewStatusHandler creates the handler for /api/statuses.
func NewStatusHandler(
	svc taxonomyService[domain.TaskStatus],
	logger *slog.Logger,
) *TaxonomyHandler[domain.TaskStatus] {
	return newTaxonomyHandler(svc, store.ErrStatusNotFound, "status_handler", logger)
}

// NewLabelHandler creates the handler for /api/labels.
func NewLabelHandler(
	svc taxonomyService[domain.Label],
	logger *slog.Logger,
) *TaxonomyHandler[domain.Label] {
	return newTaxonomyHandler(svc, store.ErrLabelNotFound, "label_handler", logger)
}

func newTaxonomyHandler[T any](
	svc taxonomyService[T],
	notFound error,
	component string,
	logger *slog.Logger,
) *TaxonomyHandler[T] {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for " + component)
	}
	return &TaxonomyHandler[T]{
		svc:      svc,
		notFound: notFound,
		logger:   logger.With(slog.String("component", component)),
	}
}

// List handles GET /api/{statuses,labels}
func (h *TaxonomyHandler[T]) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, items)
}

// Get handles GET /api/{statuses,labels}/{id}
func (h *TaxonomyHandler[T]) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id", h.notFound)
	if !ok {
		return
	}

	item, err := h.svc.Get(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, item)
}

// Create handles POST /api/{statuses,labels}
func (h *TaxonomyHandler[T]) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	item, err := h.svc.Create(r.Context(), req.Name)
	if err != nil {
		handleAPIErrorWithInput(w, r, err, "", req)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, item)
}

// Update handles PATCH /api/{statuses,labels}/{id}
func (h *TaxonomyHandler[T]) Update(w http.ResponseWriter, r *http.Request) {
	_, id, ok := handleActorAndPathID(w, r, "id", h.notFound, h.logger)
	if !ok {
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	item, err := h.svc.Update(r.Context(), id, req.Name)
	if err != nil {
		handleAPIErrorWithInput(w, r, err, "", req)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, item)
}

// Delete handles DELETE /api/{statuses,labels}/{id}
// Entries still used by a task answer 409.
func (h *TaxonomyHandler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	_, id, ok := handleActorAndPathID(w, r, "id", h.notFound, h.logger)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decode reads a name from JSON or a form.
func (h *TaxonomyHandler[T]) decode(w http.ResponseWriter, r *http.Request) (NameRequest, bool) {
	var req NameRequest

	if shared.IsFormRequest(r) {
		if err := shared.ParseForm(r); err != nil {
			HandleAPIError(w, r, err, "")
			return req, false
		}
		req.Name = r.PostForm.Get("name")
		return req, true
	}

	if err := shared.DecodeJSON(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return req, false
	}
	return req, true
}
