package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Task is a unit of work created by one user, optionally assigned to another,
// always in exactly one status and tagged with zero or more labels.
//
// The Status, Creator, Executor and Labels fields are populated by reads that
// join the related rows; writes only look at the ID fields.
type Task struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	StatusID    int64     `json:"status_id"`
	CreatorID   int64     `json:"creator_id"`
	ExecutorID  *int64    `json:"executor_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Status   *TaskStatus `json:"status,omitempty"`
	Creator  *User       `json:"creator,omitempty"`
	Executor *User       `json:"executor,omitempty"`
	Labels   []Label     `json:"labels"`
}

// NewTask creates a validated Task owned by creatorID.
func NewTask(creatorID int64, name, description string, statusID int64, executorID *int64) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		Name:        strings.TrimSpace(name),
		Description: description,
		StatusID:    statusID,
		CreatorID:   creatorID,
		ExecutorID:  executorID,
		CreatedAt:   now,
		UpdatedAt:   now,
		Labels:      []Label{},
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}
	return task, nil
}

// Validate checks the task's own fields. Whether the referenced status and
// users exist is checked by the service against the store.
func (t *Task) Validate() error {
	var errs ValidationErrors

	name := strings.TrimSpace(t.Name)
	switch {
	case name == "":
		errs.Add("name", "is required", ErrEmptyName)
	case utf8.RuneCountInString(name) > MaxNameLength:
		errs.Add("name", "is too long", ErrValidation)
	}
	if t.StatusID <= 0 {
		errs.Add("status_id", "is required", ErrInvalidID)
	}
	if t.CreatorID <= 0 {
		errs.Add("creator_id", "is required", ErrInvalidID)
	}
	if t.ExecutorID != nil && *t.ExecutorID <= 0 {
		errs.Add("executor_id", "is invalid", ErrInvalidID)
	}

	return errs.Err()
}

// IsOwnedBy reports whether userID created the task. Only the creator may
// change or delete a task.
func (t *Task) IsOwnedBy(userID int64) bool {
	return userID > 0 && t.CreatorID == userID
}

// LabelIDs returns the ids of the task's loaded labels.
func (t *Task) LabelIDs() []int64 {
	ids := make([]int64, 0, len(t.Labels))
	for _, l := range t.Labels {
		ids = append(ids, l.ID)
	}
	return ids
}
