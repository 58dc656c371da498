package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/task-manager-api/internal/domain"
)

// StatusStore defines persistence for task statuses.
type StatusStore interface {
	// Create saves a new status and sets its ID.
	// Returns ErrNameExists if the name is taken.
	Create(ctx context.Context, status *domain.TaskStatus) error

	// GetByID returns ErrStatusNotFound if the status does not exist.
	GetByID(ctx context.Context, id int64) (*domain.TaskStatus, error)

	// List returns all statuses ordered by ID.
	List(ctx context.Context) ([]domain.TaskStatus, error)

	// Update renames an existing status.
	Update(ctx context.Context, status *domain.TaskStatus) error

	// Delete removes a status. Returns ErrInUse if any task references it.
	Delete(ctx context.Context, id int64) error

	WithTx(tx *sql.Tx) StatusStore
}

// LabelStore defines persistence for labels.
type LabelStore interface {
	// Create saves a new label and sets its ID.
	// Returns ErrNameExists if the name is taken.
	Create(ctx context.Context, label *domain.Label) error

	// GetByID returns ErrLabelNotFound if the label does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Label, error)

	// List returns all labels ordered by ID.
	List(ctx context.Context) ([]domain.Label, error)

	// ExistingIDs returns the subset of ids that refer to stored labels.
	ExistingIDs(ctx context.Context, ids []int64) ([]int64, error)

	// Update renames an existing label.
	Update(ctx context.Context, label *domain.Label) error

	// Delete removes a label. Returns ErrInUse if it is attached to a task.
	Delete(ctx context.Context, id int64) error

	WithTx(tx *sql.Tx) LabelStore
}
