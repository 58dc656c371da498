package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

var taskColumns = []string{
	"id", "name", "description", "status_id", "creator_id", "executor_id", "created_at", "updated_at",
	"status_name",
	"creator_first_name", "creator_last_name", "creator_email",
	"executor_first_name", "executor_last_name", "executor_email",
	"labels",
}

func TestPostgresUserStore_CreateDuplicateEmail(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewPostgresUserStore(db, nil)

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "users_email_key"})

	user := &domain.User{FirstName: "A", LastName: "B", Email: "a@b.io", PasswordDigest: "digest"}
	err := s.Create(context.Background(), user)

	assert.ErrorIs(t, err, store.ErrEmailExists)
}

func TestPostgresUserStore_CreateRequiresDigest(t *testing.T) {
	db, _ := newMockDB(t)
	s := NewPostgresUserStore(db, nil)

	err := s.Create(context.Background(), &domain.User{FirstName: "A", LastName: "B", Email: "a@b.io", Password: "plain"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestPostgresUserStore_DeleteReferenced(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewPostgresUserStore(db, nil)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = $1")).
		WithArgs(int64(3)).
		WillReturnError(&pgconn.PgError{Code: foreignKeyViolationCode})

	assert.ErrorIs(t, s.Delete(context.Background(), 3), store.ErrInUse)
}

func TestPostgresUserStore_GetByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewPostgresUserStore(db, nil)

	mock.ExpectQuery("FROM users WHERE id").WithArgs(int64(42)).WillReturnError(sql.ErrNoRows)

	_, err := s.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestPostgresStatusStore_DeleteInUse(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewPostgresStatusStore(db, nil)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM statuses WHERE id = $1")).
		WithArgs(int64(1)).
		WillReturnError(&pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "tasks_status_id_fkey"})

	assert.ErrorIs(t, s.Delete(context.Background(), 1), store.ErrInUse)
}

func TestPostgresLabelStore_UpdateMissing(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewPostgresLabelStore(db, nil)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE labels SET name = $1")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.Update(context.Background(), &domain.Label{ID: 5, Name: "bug"})
	assert.ErrorIs(t, err, store.ErrLabelNotFound)
}

func TestPostgresLabelStore_CreateDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewPostgresLabelStore(db, nil)

	mock.ExpectQuery("INSERT INTO labels").
		WithArgs("bug", sqlmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: uniqueViolationCode})

	err := s.Create(context.Background(), &domain.Label{Name: "bug"})
	assert.ErrorIs(t, err, store.ErrNameExists)
}

func TestPostgresLabelStore_ExistingIDsEmpty(t *testing.T) {
	db, _ := newMockDB(t)
	s := NewPostgresLabelStore(db, nil)

	ids, err := s.ExistingIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestPostgresTaskStore_FindScansRelations(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewPostgresTaskStore(db, nil)
	now := time.Now().UTC()

	rows := sqlmock.NewRows(taskColumns).
		AddRow(int64(2), "second", "", int64(1), int64(7), int64(8), now, now,
			"new", "Ada", "Lovelace", "ada@example.com", "Alan", "Turing", "alan@example.com",
			[]byte(`[{"id":1,"name":"bug"},{"id":3,"name":"ui"}]`)).
		AddRow(int64(1), "first", "desc", int64(1), int64(7), nil, now, now,
			"new", "Ada", "Lovelace", "ada@example.com", nil, nil, nil,
			[]byte(`[]`))

	mock.ExpectQuery(regexp.QuoteMeta("WHERE t.status_id = $1 ORDER BY t.created_at DESC, t.id DESC")).
		WithArgs(int64(1)).
		WillReturnRows(rows)

	tasks, err := s.Find(context.Background(), domain.TaskFilter{StatusID: ptr(1)})
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	first := tasks[0]
	assert.Equal(t, int64(2), first.ID)
	assert.Equal(t, "new", first.Status.Name)
	assert.Equal(t, "Ada Lovelace", first.Creator.FullName())
	require.NotNil(t, first.Executor)
	assert.Equal(t, int64(8), *first.ExecutorID)
	assert.Equal(t, "alan@example.com", first.Executor.Email)
	assert.Equal(t, []int64{1, 3}, first.LabelIDs())
	assert.Equal(t, "ui", first.Labels[1].Name)

	second := tasks[1]
	assert.Nil(t, second.ExecutorID)
	assert.Nil(t, second.Executor)
	assert.NotNil(t, second.Labels)
	assert.Empty(t, second.Labels)
}

func TestPostgresTaskStore_FindQueryError(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewPostgresTaskStore(db, nil)

	boom := errors.New("connection reset")
	mock.ExpectQuery("FROM tasks t").WillReturnError(boom)

	tasks, err := s.Find(context.Background(), domain.TaskFilter{})
	assert.Nil(t, tasks)
	assert.ErrorIs(t, err, boom)
}

func TestPostgresTaskStore_GetByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewPostgresTaskStore(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE t.id = $1")).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(taskColumns))

	_, err := s.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestPostgresTaskStore_GetForUpdateLocksRow(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "description", "status_id", "creator_id", "executor_id", "created_at", "updated_at",
		}).AddRow(int64(5), "task", "", int64(1), int64(2), nil, now, now))
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	s := NewPostgresTaskStore(db, nil).WithTx(tx)
	task, err := s.GetForUpdate(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(2), task.CreatorID)
	assert.Nil(t, task.ExecutorID)
}

func TestPostgresTaskStore_CreateUnknownStatus(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewPostgresTaskStore(db, nil)

	mock.ExpectQuery("INSERT INTO tasks").
		WillReturnError(&pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "tasks_status_id_fkey"})

	err := s.Create(context.Background(), &domain.Task{Name: "t", StatusID: 404, CreatorID: 1})
	assert.ErrorIs(t, err, store.ErrInvalidReference)
}

func TestPostgresTaskStore_DeleteMissing(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewPostgresTaskStore(db, nil)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tasks WHERE id = $1")).
		WithArgs(int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, s.Delete(context.Background(), 8), store.ErrTaskNotFound)
}

func TestPostgresTaskStore_LabelWritesSkipEmpty(t *testing.T) {
	db, _ := newMockDB(t)
	s := NewPostgresTaskStore(db, nil)

	assert.NoError(t, s.AddLabels(context.Background(), 1, nil))
	assert.NoError(t, s.RemoveLabels(context.Background(), 1, []int64{}))
}
