package api

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/phrazzld/task-manager-api/internal/api/shared"
	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/service"
)

// taskRequest is the body of task create and update requests. It is decoded
// from JSON or from a url-encoded form with the same field names.
type taskRequest struct {
	Name        *string               `json:"name"`
	Description *string               `json:"description"`
	StatusID    domain.OptionalID     `json:"status_id"`
	ExecutorID  domain.OptionalID     `json:"executor_id"`
	Labels      domain.LabelSelection `json:"labels"`
}

// decodeTaskRequest reads a task body. Form submissions always carry the
// complete label selection, so a form without labels clears them.
func decodeTaskRequest(r *http.Request) (taskRequest, error) {
	var req taskRequest

	if !shared.IsFormRequest(r) {
		err := shared.DecodeJSON(r, &req)
		return req, err
	}

	if err := shared.ParseForm(r); err != nil {
		return req, err
	}
	form := r.PostForm

	if form.Has("name") {
		req.Name = ptrTo(form.Get("name"))
	}
	if form.Has("description") {
		req.Description = ptrTo(form.Get("description"))
	}
	req.StatusID = domain.NewOptionalID(form.Has("status_id"), form.Get("status_id"))
	req.ExecutorID = domain.NewOptionalID(form.Has("executor_id"), form.Get("executor_id"))
	req.Labels = domain.LabelSelection{
		Present: true,
		IDs:     domain.NormalizeLabelIDs(formLabels(form)),
	}
	return req, nil
}

// formLabels collects the repeated labels field, accepting the "labels[]"
// spelling that HTML multi-selects often use.
func formLabels(form url.Values) []string {
	values := append([]string{}, form["labels"]...)
	return append(values, form["labels[]"]...)
}

// malformedFields reports id fields whose value could not be read as an id.
func (req taskRequest) malformedFields() domain.ValidationErrors {
	var errs domain.ValidationErrors
	if req.StatusID.Malformed() {
		errs.Add("status_id", "is invalid", domain.ErrInvalidID)
	}
	if req.ExecutorID.Malformed() {
		errs.Add("executor_id", "is invalid", domain.ErrInvalidID)
	}
	return errs
}

// toInput builds the input of a new task.
func (req taskRequest) toInput() (service.TaskInput, error) {
	if errs := req.malformedFields(); len(errs) > 0 {
		return service.TaskInput{}, errs.Err()
	}

	in := service.TaskInput{
		ExecutorID: req.ExecutorID.Value,
		LabelIDs:   req.Labels.IDs,
	}
	if req.Name != nil {
		in.Name = *req.Name
	}
	if req.Description != nil {
		in.Description = *req.Description
	}
	if req.StatusID.Value != nil {
		in.StatusID = *req.StatusID.Value
	}
	return in, nil
}

// toPatch builds a partial update. Fields missing from the request are left
// unchanged; a status can be replaced but never cleared.
func (req taskRequest) toPatch() (service.TaskPatch, error) {
	errs := req.malformedFields()
	if req.StatusID.Present && req.StatusID.Value == nil && !req.StatusID.Malformed() {
		errs.Add("status_id", "is required", domain.ErrInvalidID)
	}
	if len(errs) > 0 {
		return service.TaskPatch{}, errs.Err()
	}

	patch := service.TaskPatch{
		Name:        req.Name,
		Description: req.Description,
		StatusID:    req.StatusID.Value,
		SetExecutor: req.ExecutorID.Present,
		ExecutorID:  req.ExecutorID.Value,
	}
	if req.Labels.Present {
		ids := req.Labels.IDs
		patch.LabelIDs = &ids
	}
	return patch, nil
}

// echo returns the submitted values for a 422 response.
func (req taskRequest) echo() map[string]any {
	labels := req.Labels.IDs
	if labels == nil {
		labels = []int64{}
	}
	out := map[string]any{
		"status_id":   req.StatusID,
		"executor_id": req.ExecutorID,
		"labels":      labels,
	}
	if req.Name != nil {
		out["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		out["description"] = *req.Description
	}
	return out
}

func ptrTo[T any](v T) *T {
	return &v
}
