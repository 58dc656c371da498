package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// replaceTaskLabels is the shape of the task update flow: clear the label
// links of a task and insert the new set in one transaction.
func replaceTaskLabels(taskID int64, labelIDs ...int64) TxFn {
	return func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM tasks_labels WHERE task_id = $1", taskID); err != nil {
			return err
		}
		for _, id := range labelIDs {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO tasks_labels (task_id, label_id) VALUES ($1, $2)", taskID, id); err != nil {
				return err
			}
		}
		return nil
	}
}

func TestRunInTransaction(t *testing.T) {
	connReset := errors.New("driver: bad connection")

	tests := []struct {
		name         string
		setup        func(mock sqlmock.Sqlmock)
		fn           TxFn
		wantErrs     []error
		notErrs      []error
		wantContains []string
	}{
		{
			name: "label replacement commits",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("DELETE FROM tasks_labels").WithArgs(int64(3)).
					WillReturnResult(sqlmock.NewResult(0, 2))
				mock.ExpectExec("INSERT INTO tasks_labels").WithArgs(int64(3), int64(1)).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec("INSERT INTO tasks_labels").WithArgs(int64(3), int64(5)).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			fn: replaceTaskLabels(3, 1, 5),
		},
		{
			name: "begin failure is a transaction failure",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin().WillReturnError(connReset)
			},
			fn:           replaceTaskLabels(3, 1),
			wantErrs:     []error{ErrTransactionFailed, connReset},
			wantContains: []string{"failed to begin transaction"},
		},
		{
			name: "commit failure is a transaction failure",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("DELETE FROM tasks_labels").WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectCommit().WillReturnError(connReset)
			},
			fn:           replaceTaskLabels(3),
			wantErrs:     []error{ErrTransactionFailed, connReset},
			wantContains: []string{"failed to commit transaction"},
		},
		{
			name: "work error rolls back and is returned as is",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectRollback()
			},
			fn: func(context.Context, *sql.Tx) error {
				return ErrTaskNotFound
			},
			wantErrs: []error{ErrTaskNotFound, ErrNotFound},
			notErrs:  []error{ErrTransactionFailed},
		},
		{
			name: "unknown label rolls back the partial insert",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("DELETE FROM tasks_labels").WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec("INSERT INTO tasks_labels").WithArgs(int64(3), int64(1)).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec("INSERT INTO tasks_labels").WithArgs(int64(3), int64(99)).
					WillReturnError(ErrInvalidReference)
				mock.ExpectRollback()
			},
			fn:       replaceTaskLabels(3, 1, 99),
			wantErrs: []error{ErrInvalidReference, ErrInvalidEntity},
			notErrs:  []error{ErrTransactionFailed},
		},
		{
			name: "rollback failure keeps the original error",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectRollback().WillReturnError(connReset)
			},
			fn: func(context.Context, *sql.Tx) error {
				return NewStoreError("status", "delete", "status is used by tasks", ErrInUse)
			},
			wantErrs:     []error{ErrInUse},
			notErrs:      []error{ErrTransactionFailed},
			wantContains: []string{"error rolling back transaction", connReset.Error()},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer func() { _ = db.Close() }()
			tt.setup(mock)

			err = RunInTransaction(context.Background(), db, tt.fn)

			if len(tt.wantErrs) == 0 {
				assert.NoError(t, err)
			}
			for _, want := range tt.wantErrs {
				assert.ErrorIs(t, err, want)
			}
			for _, notWant := range tt.notErrs {
				assert.NotErrorIs(t, err, notWant)
			}
			for _, s := range tt.wantContains {
				assert.Contains(t, err.Error(), s)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRunInTransaction_PanicRollsBack(t *testing.T) {
	tests := []struct {
		name        string
		rollbackErr error
	}{
		{"rollback succeeds", nil},
		{"rollback fails", errors.New("driver: bad connection")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer func() { _ = db.Close() }()

			mock.ExpectBegin()
			mock.ExpectRollback().WillReturnError(tt.rollbackErr)

			assert.PanicsWithValue(t, "label cache corrupted", func() {
				_ = RunInTransaction(context.Background(), db, func(context.Context, *sql.Tx) error {
					panic("label cache corrupted")
				})
			})
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDBTxRunner(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM tasks").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	var runner TxRunner = NewTxRunner(db)
	err = runner.RunInTx(context.Background(), func(ctx context.Context, tx *sql.Tx) error {
		_, execErr := tx.ExecContext(ctx, "DELETE FROM tasks WHERE id = $1", 1)
		return execErr
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
