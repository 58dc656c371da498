package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// MaxNameLength bounds names of statuses, labels and tasks (varchar(255) columns).
const MaxNameLength = 255

// TaskStatus is a shared workflow state a task can be in ("new", "in progress", ...).
// A status cannot be removed while any task references it.
type TaskStatus struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTaskStatus creates a validated TaskStatus.
func NewTaskStatus(name string) (*TaskStatus, error) {
	now := time.Now().UTC()
	s := &TaskStatus{Name: strings.TrimSpace(name), CreatedAt: now, UpdatedAt: now}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the status name.
func (s *TaskStatus) Validate() error {
	return validateName(s.Name)
}

// Label is a shared tag attached to any number of tasks.
// A label cannot be removed while it is attached to a task.
type Label struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewLabel creates a validated Label.
func NewLabel(name string) (*Label, error) {
	now := time.Now().UTC()
	l := &Label{Name: strings.TrimSpace(name), CreatedAt: now, UpdatedAt: now}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

// Validate checks the label name.
func (l *Label) Validate() error {
	return validateName(l.Name)
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return NewValidationError("name", "is required", ErrEmptyName)
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return NewValidationError("name", "is too long", ErrValidation)
	}
	return nil
}
