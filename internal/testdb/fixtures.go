//go:build integration

package testdb

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// UniqueName returns prefix with a random suffix, for rows with unique columns.
func UniqueName(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString()[:8])
}

// MustInsertUser inserts a user with a placeholder digest and returns its id.
func MustInsertUser(ctx context.Context, t *testing.T, tx *sql.Tx, email string) int64 {
	t.Helper()
	var id int64
	err := tx.QueryRowContext(ctx, `
		INSERT INTO users (first_name, last_name, email, password_digest)
		VALUES ('Test', 'User', $1, '$2a$04$placeholderdigestplaceholderdigestplacehold')
		RETURNING id`, email).Scan(&id)
	require.NoError(t, err, "failed to insert test user")
	return id
}

// MustInsertStatus inserts a status and returns its id.
func MustInsertStatus(ctx context.Context, t *testing.T, tx *sql.Tx, name string) int64 {
	t.Helper()
	var id int64
	err := tx.QueryRowContext(ctx, `INSERT INTO statuses (name) VALUES ($1) RETURNING id`, name).Scan(&id)
	require.NoError(t, err, "failed to insert test status")
	return id
}

// MustInsertLabel inserts a label and returns its id.
func MustInsertLabel(ctx context.Context, t *testing.T, tx *sql.Tx, name string) int64 {
	t.Helper()
	var id int64
	err := tx.QueryRowContext(ctx, `INSERT INTO labels (name) VALUES ($1) RETURNING id`, name).Scan(&id)
	require.NoError(t, err, "failed to insert test label")
	return id
}

// MustInsertTask inserts a task without labels and returns its id.
func MustInsertTask(ctx context.Context, t *testing.T, tx *sql.Tx, name string, statusID, creatorID int64, executorID *int64) int64 {
	t.Helper()
	var id int64
	err := tx.QueryRowContext(ctx, `
		INSERT INTO tasks (name, status_id, creator_id, executor_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id`, name, statusID, creatorID, executorID).Scan(&id)
	require.NoError(t, err, "failed to insert test task")
	return id
}
