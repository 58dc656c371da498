package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/platform/logger"
	"github.com/phrazzld/task-manager-api/internal/store"
)

// namedTable holds the queries shared by statuses and labels, which only
// differ in table name and sentinel errors.
type namedTable struct {
	table    string
	entity   string
	notFound error
	db       store.DBTX
	logger   *slog.Logger
}

type namedRow struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (t namedTable) create(ctx context.Context, name string) (namedRow, error) {
	now := time.Now().UTC()
	row := namedRow{Name: name}
	err := t.db.QueryRowContext(ctx,
		`INSERT INTO `+t.table+` (name, created_at, updated_at) VALUES ($1, $2, $2) RETURNING id, created_at, updated_at`,
		name, now).Scan(&row.ID, &row.CreatedAt, &row.UpdatedAt)
	if err != nil {
		if !IsUniqueViolation(err) {
			logger.FromContextOrDefault(ctx, t.logger).Error("failed to create "+t.entity,
				slog.String("error", err.Error()))
		}
		return namedRow{}, MapUniqueViolation(err, store.ErrNameExists)
	}
	return row, nil
}

func (t namedTable) get(ctx context.Context, id int64) (namedRow, error) {
	var row namedRow
	err := t.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM `+t.table+` WHERE id = $1`, id).
		Scan(&row.ID, &row.Name, &row.CreatedAt, &row.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return namedRow{}, t.notFound
		}
		return namedRow{}, MapError(err)
	}
	return row, nil
}

func (t namedTable) list(ctx context.Context) ([]namedRow, error) {
	rows, err := t.db.QueryContext(ctx,
		`SELECT id, name, created_at, updated_at FROM `+t.table+` ORDER BY id`)
	if err != nil {
		logger.FromContextOrDefault(ctx, t.logger).Error("failed to list "+t.table,
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var out []namedRow
	for rows.Next() {
		var row namedRow
		if err := rows.Scan(&row.ID, &row.Name, &row.CreatedAt, &row.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", t.entity, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return out, nil
}

func (t namedTable) rename(ctx context.Context, id int64, name string) (time.Time, error) {
	now := time.Now().UTC()
	result, err := t.db.ExecContext(ctx,
		`UPDATE `+t.table+` SET name = $1, updated_at = $2 WHERE id = $3`, name, now, id)
	if err != nil {
		return time.Time{}, MapUniqueViolation(err, store.ErrNameExists)
	}
	if err := CheckRowsAffected(result, t.notFound); err != nil {
		return time.Time{}, err
	}
	return now, nil
}

func (t namedTable) delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, t.logger)

	result, err := t.db.ExecContext(ctx, `DELETE FROM `+t.table+` WHERE id = $1`, id)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Info(t.entity+" still referenced by tasks", slog.Int64("id", id))
		} else {
			log.Error("failed to delete "+t.entity,
				slog.Int64("id", id),
				slog.String("error", err.Error()))
		}
		return MapDeleteError(err, t.entity)
	}
	return CheckRowsAffected(result, t.notFound)
}

// PostgresStatusStore implements store.StatusStore.
type PostgresStatusStore struct {
	t namedTable
}

// NewPostgresStatusStore creates a status store on db. A nil logger selects slog.Default().
func NewPostgresStatusStore(db store.DBTX, logger *slog.Logger) *PostgresStatusStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresStatusStore{t: namedTable{
		table:    "statuses",
		entity:   "status",
		notFound: store.ErrStatusNotFound,
		db:       db,
		logger:   logger.With(slog.String("component", "status_store")),
	}}
}

var _ store.StatusStore = (*PostgresStatusStore)(nil)

// WithTx implements store.StatusStore.
func (s *PostgresStatusStore) WithTx(tx *sql.Tx) store.StatusStore {
	t := s.t
	t.db = tx
	return &PostgresStatusStore{t: t}
}

func toStatus(r namedRow) domain.TaskStatus {
	return domain.TaskStatus{ID: r.ID, Name: r.Name, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}
}

// Create implements store.StatusStore.
func (s *PostgresStatusStore) Create(ctx context.Context, status *domain.TaskStatus) error {
	row, err := s.t.create(ctx, status.Name)
	if err != nil {
		return err
	}
	*status = toStatus(row)
	return nil
}

// GetByID implements store.StatusStore.
func (s *PostgresStatusStore) GetByID(ctx context.Context, id int64) (*domain.TaskStatus, error) {
	row, err := s.t.get(ctx, id)
	if err != nil {
		return nil, err
	}
	status := toStatus(row)
	return &status, nil
}

// List implements store.StatusStore.
func (s *PostgresStatusStore) List(ctx context.Context) ([]domain.TaskStatus, error) {
	rows, err := s.t.list(ctx)
	if err != nil {
		return nil, err
	}
	statuses := make([]domain.TaskStatus, 0, len(rows))
	for _, r := range rows {
		statuses = append(statuses, toStatus(r))
	}
	return statuses, nil
}

// Update implements store.StatusStore.
func (s *PostgresStatusStore) Update(ctx context.Context, status *domain.TaskStatus) error {
	updatedAt, err := s.t.rename(ctx, status.ID, status.Name)
	if err != nil {
		return err
	}
	status.UpdatedAt = updatedAt
	return nil
}

// Delete implements store.StatusStore.
func (s *PostgresStatusStore) Delete(ctx context.Context, id int64) error {
	return s.t.delete(ctx, id)
}

// PostgresLabelStore implements store.LabelStore.
type PostgresLabelStore struct {
	t namedTable
}

// NewPostgresLabelStore creates a label store on db. A nil logger selects slog.Default().
func NewPostgresLabelStore(db store.DBTX, logger *slog.Logger) *PostgresLabelStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresLabelStore{t: namedTable{
		table:    "labels",
		entity:   "label",
		notFound: store.ErrLabelNotFound,
		db:       db,
		logger:   logger.With(slog.String("component", "label_store")),
	}}
}

var _ store.LabelStore = (*PostgresLabelStore)(nil)

// WithTx implements store.LabelStore.
func (s *PostgresLabelStore) WithTx(tx *sql.Tx) store.LabelStore {
	t := s.t
	t.db = tx
	return &PostgresLabelStore{t: t}
}

func toLabel(r namedRow) domain.Label {
	return domain.Label{ID: r.ID, Name: r.Name, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}
}

// Create implements store.LabelStore.
func (s *PostgresLabelStore) Create(ctx context.Context, label *domain.Label) error {
	row, err := s.t.create(ctx, label.Name)
	if err != nil {
		return err
	}
	*label = toLabel(row)
	return nil
}

// GetByID implements store.LabelStore.
func (s *PostgresLabelStore) GetByID(ctx context.Context, id int64) (*domain.Label, error) {
	row, err := s.t.get(ctx, id)
	if err != nil {
		return nil, err
	}
	label := toLabel(row)
	return &label, nil
}

// List implements store.LabelStore.
func (s *PostgresLabelStore) List(ctx context.Context) ([]domain.Label, error) {
	rows, err := s.t.list(ctx)
	if err != nil {
		return nil, err
	}
	labels := make([]domain.Label, 0, len(rows))
	for _, r := range rows {
		labels = append(labels, toLabel(r))
	}
	return labels, nil
}

// ExistingIDs implements store.LabelStore.
func (s *PostgresLabelStore) ExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return []int64{}, nil
	}

	rows, err := s.t.db.QueryContext(ctx, `SELECT id FROM labels WHERE id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	return scanIDs(rows)
}

// Update implements store.LabelStore.
func (s *PostgresLabelStore) Update(ctx context.Context, label *domain.Label) error {
	updatedAt, err := s.t.rename(ctx, label.ID, label.Name)
	if err != nil {
		return err
	}
	label.UpdatedAt = updatedAt
	return nil
}

// Delete implements store.LabelStore.
func (s *PostgresLabelStore) Delete(ctx context.Context, id int64) error {
	return s.t.delete(ctx, id)
}

func scanIDs(rows *sql.Rows) ([]int64, error) {
	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return ids, nil
}
