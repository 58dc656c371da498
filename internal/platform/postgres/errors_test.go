package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/task-manager-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResult struct {
	rows int64
	err  error
}

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.rows, r.err }

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", sql.ErrNoRows, store.ErrNotFound},
		{"unique", &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "users_email_key"}, store.ErrDuplicate},
		{"foreign key", &pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "tasks_status_id_fkey"}, store.ErrInvalidReference},
		{"check", &pgconn.PgError{Code: checkViolationCode}, store.ErrInvalidEntity},
		{"not null", &pgconn.PgError{Code: notNullViolationCode, ColumnName: "name"}, store.ErrInvalidEntity},
		{"wrapped unique", fmt.Errorf("exec: %w", &pgconn.PgError{Code: uniqueViolationCode}), store.ErrDuplicate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			assert.ErrorIs(t, got, tt.want)
		})
	}

	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, MapError(nil))
	})

	t.Run("unmapped passes through", func(t *testing.T) {
		orig := errors.New("connection refused")
		assert.Same(t, orig, MapError(orig))
	})

	t.Run("unmapped pg code passes through", func(t *testing.T) {
		orig := &pgconn.PgError{Code: "42P01"}
		assert.Equal(t, error(orig), MapError(orig))
	})
}

func TestMapDeleteError(t *testing.T) {
	fk := &pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "tasks_status_id_fkey"}

	err := MapDeleteError(fk, "status")
	assert.ErrorIs(t, err, store.ErrInUse)
	assert.NotErrorIs(t, err, store.ErrInvalidEntity)

	assert.ErrorIs(t, MapDeleteError(sql.ErrNoRows, "status"), store.ErrNotFound)
}

func TestMapUniqueViolation(t *testing.T) {
	unique := &pgconn.PgError{Code: uniqueViolationCode}

	assert.ErrorIs(t, MapUniqueViolation(unique, store.ErrEmailExists), store.ErrEmailExists)
	assert.ErrorIs(t, MapUniqueViolation(unique, nil), store.ErrDuplicate)

	other := &pgconn.PgError{Code: foreignKeyViolationCode}
	assert.ErrorIs(t, MapUniqueViolation(other, store.ErrEmailExists), store.ErrInvalidReference)
}

func TestViolationPredicates(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: uniqueViolationCode}))
	assert.False(t, IsUniqueViolation(errors.New("x")))
	assert.True(t, IsForeignKeyViolation(fmt.Errorf("w: %w", &pgconn.PgError{Code: foreignKeyViolationCode})))
	assert.True(t, IsNotFoundError(sql.ErrNoRows))
	assert.True(t, IsNotFoundError(store.ErrTaskNotFound))
	assert.False(t, IsNotFoundError(store.ErrDuplicate))
}

func TestCheckRowsAffected(t *testing.T) {
	require.NoError(t, CheckRowsAffected(fakeResult{rows: 1}, store.ErrTaskNotFound))
	assert.ErrorIs(t, CheckRowsAffected(fakeResult{rows: 0}, store.ErrTaskNotFound), store.ErrTaskNotFound)
	assert.ErrorIs(t, CheckRowsAffected(fakeResult{rows: 0}, nil), store.ErrNotFound)

	boom := errors.New("boom")
	assert.ErrorIs(t, CheckRowsAffected(fakeResult{err: boom}, nil), boom)
	assert.Error(t, CheckRowsAffected(nil, nil))
}
