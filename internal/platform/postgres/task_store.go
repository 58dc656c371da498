package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/platform/logger"
	"github.com/phrazzld/task-manager-api/internal/store"
)

// PostgresTaskStore implements store.TaskStore.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a task store on db. A nil logger selects slog.Default().
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{db: tx, logger: s.logger}
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		t             domain.Task
		executorID    sql.NullInt64
		statusName    string
		creator       domain.User
		execFirstName sql.NullString
		execLastName  sql.NullString
		execEmail     sql.NullString
		labelsJSON    []byte
	)

	err := row.Scan(
		&t.ID, &t.Name, &t.Description, &t.StatusID, &t.CreatorID, &executorID, &t.CreatedAt, &t.UpdatedAt,
		&statusName,
		&creator.FirstName, &creator.LastName, &creator.Email,
		&execFirstName, &execLastName, &execEmail,
		&labelsJSON,
	)
	if err != nil {
		return nil, err
	}

	t.Status = &domain.TaskStatus{ID: t.StatusID, Name: statusName}
	creator.ID = t.CreatorID
	t.Creator = &creator

	if executorID.Valid {
		id := executorID.Int64
		t.ExecutorID = &id
		t.Executor = &domain.User{
			ID:        id,
			FirstName: execFirstName.String,
			LastName:  execLastName.String,
			Email:     execEmail.String,
		}
	}

	t.Labels = []domain.Label{}
	if len(labelsJSON) > 0 {
		if err := json.Unmarshal(labelsJSON, &t.Labels); err != nil {
			return nil, fmt.Errorf("failed to decode task labels: %w", err)
		}
	}

	return &t, nil
}

// Create implements store.TaskStore.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	now := time.Now().UTC()
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO tasks (name, description, status_id, creator_id, executor_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id, created_at, updated_at
	`, task.Name, task.Description, task.StatusID, task.CreatorID, nullableID(task.ExecutorID), now).
		Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("task references a missing row", slog.String("error", err.Error()))
		} else {
			log.Error("failed to create task", slog.String("error", err.Error()))
		}
		return MapError(err)
	}

	log.Info("task created",
		slog.Int64("task_id", task.ID),
		slog.Int64("creator_id", task.CreatorID))
	return nil
}

// GetByID implements store.TaskStore.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	q := &taskQuery{}
	query, args := q.where("t.id = ?", id).build()

	task, err := scanTask(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get task",
			slog.Int64("task_id", id),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return task, nil
}

// GetForUpdate implements store.TaskStore.
func (s *PostgresTaskStore) GetForUpdate(ctx context.Context, id int64) (*domain.Task, error) {
	var (
		t          domain.Task
		executorID sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, status_id, creator_id, executor_id, created_at, updated_at
		FROM tasks
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(&t.ID, &t.Name, &t.Description, &t.StatusID, &t.CreatorID, &executorID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		return nil, MapError(err)
	}
	if executorID.Valid {
		v := executorID.Int64
		t.ExecutorID = &v
	}
	t.Labels = []domain.Label{}
	return &t, nil
}

// Find implements store.TaskStore.
func (s *PostgresTaskStore) Find(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args := buildTaskQuery(filter)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query tasks", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	tasks := []domain.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task", slog.String("error", err.Error()))
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		log.Error("failed to iterate tasks", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	log.Debug("tasks listed", slog.Int("count", len(tasks)))
	return tasks, nil
}

// Update implements store.TaskStore.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	task.UpdatedAt = time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks
		SET name = $1, description = $2, status_id = $3, executor_id = $4, updated_at = $5
		WHERE id = $6
	`, task.Name, task.Description, task.StatusID, nullableID(task.ExecutorID), task.UpdatedAt, task.ID)
	if err != nil {
		if !IsForeignKeyViolation(err) {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to update task",
				slog.Int64("task_id", task.ID),
				slog.String("error", err.Error()))
		}
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// Delete implements store.TaskStore. Join rows go with the task through
// ON DELETE CASCADE.
func (s *PostgresTaskStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete task",
			slog.Int64("task_id", id),
			slog.String("error", err.Error()))
		return MapDeleteError(err, "task")
	}
	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		return err
	}

	log.Info("task deleted", slog.Int64("task_id", id))
	return nil
}

// LabelIDs implements store.TaskStore.
func (s *PostgresTaskStore) LabelIDs(ctx context.Context, taskID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT label_id FROM tasks_labels WHERE task_id = $1 ORDER BY label_id`, taskID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	return scanIDs(rows)
}

// AddLabels implements store.TaskStore.
func (s *PostgresTaskStore) AddLabels(ctx context.Context, taskID int64, labelIDs []int64) error {
	if len(labelIDs) == 0 {
		return nil
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks_labels (task_id, label_id)
		SELECT $1, label_id FROM unnest($2::bigint[]) AS label_id
		ON CONFLICT (task_id, label_id) DO NOTHING
	`, taskID, labelIDs)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("failed to relate labels",
			slog.Int64("task_id", taskID),
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return nil
}

// RemoveLabels implements store.TaskStore.
func (s *PostgresTaskStore) RemoveLabels(ctx context.Context, taskID int64, labelIDs []int64) error {
	if len(labelIDs) == 0 {
		return nil
	}

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM tasks_labels WHERE task_id = $1 AND label_id = ANY($2)`, taskID, labelIDs)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to unrelate labels",
			slog.Int64("task_id", taskID),
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return nil
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}
