package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/platform/logger"
	"github.com/phrazzld/task-manager-api/internal/store"
)

// TaskInput carries the fields of a new task. The creator is never part of
// the input; it is always the authenticated actor.
type TaskInput struct {
	Name        string
	Description string
	StatusID    int64
	ExecutorID  *int64
	LabelIDs    []int64
}

// TaskPatch carries a partial task update. Nil pointers leave the field unchanged.
type TaskPatch struct {
	Name        *string
	Description *string
	StatusID    *int64

	// SetExecutor selects whether ExecutorID is applied; a nil ExecutorID
	// with SetExecutor unassigns the task.
	SetExecutor bool
	ExecutorID  *int64

	// LabelIDs replaces the whole label set when non-nil.
	LabelIDs *[]int64
}

// TaskOverview is a filtered task listing together with everything a client
// needs to render the filter controls.
type TaskOverview struct {
	Tasks    []domain.Task       `json:"tasks"`
	Statuses []domain.TaskStatus `json:"statuses"`
	Users    []domain.User       `json:"users"`
	Labels   []domain.Label      `json:"labels"`
	Filter   domain.TaskFilter   `json:"filter"`
}

// TaskService provides task operations.
type TaskService interface {
	// List returns the tasks matching filter.
	List(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, error)

	// Overview returns the tasks matching filter plus all statuses, users and labels.
	Overview(ctx context.Context, filter domain.TaskFilter) (*TaskOverview, error)

	// Get returns a task with its relations.
	Get(ctx context.Context, id int64) (*domain.Task, error)

	// Create inserts a task owned by actorID and relates its labels.
	Create(ctx context.Context, actorID int64, in TaskInput) (*domain.Task, error)

	// Update applies patch to a task created by actorID.
	Update(ctx context.Context, actorID, id int64, patch TaskPatch) (*domain.Task, error)

	// Delete removes a task created by actorID.
	Delete(ctx context.Context, actorID, id int64) error
}

type taskServiceImpl struct {
	tasks    store.TaskStore
	statuses store.StatusStore
	labels   store.LabelStore
	users    store.UserStore
	tx       store.TxRunner
	logger   *slog.Logger
}

// NewTaskService creates a TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	tasks store.TaskStore,
	statuses store.StatusStore,
	labels store.LabelStore,
	users store.UserStore,
	tx store.TxRunner,
	logger *slog.Logger,
) (TaskService, error) {
	switch {
	case tasks == nil:
		return nil, domain.NewValidationError("tasks", "cannot be nil", domain.ErrValidation)
	case statuses == nil:
		return nil, domain.NewValidationError("statuses", "cannot be nil", domain.ErrValidation)
	case labels == nil:
		return nil, domain.NewValidationError("labels", "cannot be nil", domain.ErrValidation)
	case users == nil:
		return nil, domain.NewValidationError("users", "cannot be nil", domain.ErrValidation)
	case tx == nil:
		return nil, domain.NewValidationError("tx", "cannot be nil", domain.ErrValidation)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		tasks:    tasks,
		statuses: statuses,
		labels:   labels,
		users:    users,
		tx:       tx,
		logger:   logger.With(slog.String("component", "task_service")),
	}, nil
}

// List implements TaskService.List
func (s *taskServiceImpl) List(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, error) {
	tasks, err := s.tasks.Find(ctx, filter)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list tasks",
			slog.String("error", err.Error()))
		return nil, NewServiceError("task", "list", err)
	}
	return tasks, nil
}

// Overview implements TaskService.Overview
// The four reads are independent and run concurrently; any failure fails the
// whole overview rather than returning a partial result.
func (s *taskServiceImpl) Overview(ctx context.Context, filter domain.TaskFilter) (*TaskOverview, error) {
	out := &TaskOverview{Filter: filter}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		out.Tasks, err = s.tasks.Find(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		out.Statuses, err = s.statuses.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		out.Users, err = s.users.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		out.Labels, err = s.labels.List(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to load task overview",
			slog.String("error", err.Error()))
		return nil, NewServiceError("task", "overview", err)
	}
	return out, nil
}

// Get implements TaskService.Get
func (s *taskServiceImpl) Get(ctx context.Context, id int64) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, store.ErrTaskNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to retrieve task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return nil, NewServiceError("task", "get", err)
	}
	return task, nil
}

// Create implements TaskService.Create
// The task row and its label relations are written in one transaction.
func (s *taskServiceImpl) Create(ctx context.Context, actorID int64, in TaskInput) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if actorID <= 0 {
		return nil, domain.ErrUnauthorized
	}

	task, err := domain.NewTask(actorID, in.Name, in.Description, in.StatusID, in.ExecutorID)
	if err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)

		if err := s.checkReferences(ctx, tx, &task.StatusID, task.ExecutorID); err != nil {
			return err
		}
		if err := txTasks.Create(ctx, task); err != nil {
			return fmt.Errorf("failed to insert task: %w", err)
		}
		return syncTaskLabels(ctx, txTasks, s.labels.WithTx(tx), task.ID, in.LabelIDs, nil)
	})
	if err != nil {
		return nil, s.failure(log, "create", err)
	}

	log.Info("task created",
		slog.Int64("task_id", task.ID),
		slog.Int64("creator_id", actorID))

	return s.reload(ctx, task.ID)
}

// Update implements TaskService.Update
// The task row stays locked from the ownership check until commit, so
// concurrent updates of one task apply one after the other.
func (s *taskServiceImpl) Update(
	ctx context.Context,
	actorID, id int64,
	patch TaskPatch,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if actorID <= 0 {
		return nil, domain.ErrUnauthorized
	}

	err := s.tx.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)

		task, err := txTasks.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !task.IsOwnedBy(actorID) {
			return ErrNotOwned
		}

		var statusID *int64
		if patch.Name != nil {
			task.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Description != nil {
			task.Description = *patch.Description
		}
		if patch.StatusID != nil {
			task.StatusID = *patch.StatusID
			statusID = patch.StatusID
		}
		var executorID *int64
		if patch.SetExecutor {
			task.ExecutorID = patch.ExecutorID
			executorID = patch.ExecutorID
		}
		if err := task.Validate(); err != nil {
			return err
		}
		if err := s.checkReferences(ctx, tx, statusID, executorID); err != nil {
			return err
		}

		task.UpdatedAt = time.Now().UTC()
		if err := txTasks.Update(ctx, task); err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}

		if patch.LabelIDs == nil {
			return nil
		}
		current, err := txTasks.LabelIDs(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load task labels: %w", err)
		}
		return syncTaskLabels(ctx, txTasks, s.labels.WithTx(tx), id, *patch.LabelIDs, current)
	})
	if err != nil {
		return nil, s.failure(log, "update", err)
	}

	log.Info("task updated",
		slog.Int64("task_id", id),
		slog.Int64("actor_id", actorID))

	return s.reload(ctx, id)
}

// Delete implements TaskService.Delete
func (s *taskServiceImpl) Delete(ctx context.Context, actorID, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if actorID <= 0 {
		return domain.ErrUnauthorized
	}

	err := s.tx.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)

		task, err := txTasks.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !task.IsOwnedBy(actorID) {
			return ErrNotOwned
		}
		return txTasks.Delete(ctx, id)
	})
	if err != nil {
		return s.failure(log, "delete", err)
	}

	log.Info("task deleted",
		slog.Int64("task_id", id),
		slog.Int64("actor_id", actorID))
	return nil
}

// checkReferences verifies that the given status and executor exist. Nil
// arguments are skipped. Missing rows are reported as field errors.
func (s *taskServiceImpl) checkReferences(
	ctx context.Context,
	tx *sql.Tx,
	statusID *int64,
	executorID *int64,
) error {
	var errs domain.ValidationErrors

	if statusID != nil {
		if _, err := s.statuses.WithTx(tx).GetByID(ctx, *statusID); err != nil {
			if !store.IsNotFoundError(err) {
				return fmt.Errorf("failed to check status: %w", err)
			}
			errs.Add("status_id", "does not exist", domain.ErrInvalidID)
		}
	}
	if executorID != nil {
		if _, err := s.users.WithTx(tx).GetByID(ctx, *executorID); err != nil {
			if !store.IsNotFoundError(err) {
				return fmt.Errorf("failed to check executor: %w", err)
			}
			errs.Add("executor_id", "does not exist", domain.ErrInvalidID)
		}
	}

	return errs.Err()
}

// reload reads the committed task with its relations.
func (s *taskServiceImpl) reload(ctx context.Context, id int64) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to reload task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return nil, NewServiceError("task", "reload", err)
	}
	return task, nil
}

// failure logs unexpected errors and passes expected ones through untouched
// so callers can match them with errors.Is.
func (s *taskServiceImpl) failure(log *slog.Logger, op string, err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, ErrNotOwned),
		errors.Is(err, store.ErrNotFound):
		log.Debug("task operation rejected",
			slog.String("operation", op),
			slog.String("reason", err.Error()))
		return err
	case errors.Is(err, store.ErrInvalidReference):
		// a referenced row vanished between the check and the write
		log.Warn("task references a missing row",
			slog.String("operation", op),
			slog.String("error", err.Error()))
		return err
	default:
		log.Error("task operation failed",
			slog.String("operation", op),
			slog.String("error", err.Error()))
		return NewServiceError("task", op, err)
	}
}
