package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/task-manager-api/internal/domain"
)

// TaskStore defines persistence for tasks and their label relations.
//
// Reads return tasks with Status, Creator, Executor and Labels populated.
type TaskStore interface {
	// Create inserts the task row and sets ID and timestamps. Labels are
	// attached separately with AddLabels.
	// Returns ErrInvalidReference if the status, creator or executor does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Task, error)

	// GetForUpdate loads the bare task row and locks it until the surrounding
	// transaction ends. It must be called on a store bound with WithTx.
	GetForUpdate(ctx context.Context, id int64) (*domain.Task, error)

	// Find returns the tasks matching filter, newest first.
	Find(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, error)

	// Update writes name, description, status and executor of an existing task.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task together with its label relations.
	Delete(ctx context.Context, id int64) error

	// LabelIDs returns the ids of the labels attached to a task.
	LabelIDs(ctx context.Context, taskID int64) ([]int64, error)

	// AddLabels attaches labels to a task. Already attached labels are ignored.
	AddLabels(ctx context.Context, taskID int64, labelIDs []int64) error

	// RemoveLabels detaches labels from a task.
	RemoveLabels(ctx context.Context, taskID int64, labelIDs []int64) error

	WithTx(tx *sql.Tx) TaskStore
}
