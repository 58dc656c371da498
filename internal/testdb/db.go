//go:build integration

package testdb

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/phrazzld/task-manager-api/internal/platform/postgres"
	"github.com/stretchr/testify/require"
)

// TestTimeout bounds individual database operations in tests.
const TestTimeout = 5 * time.Second

var (
	sharedDB     *sql.DB
	sharedDBErr  error
	sharedDBOnce sync.Once
)

// GetTestDBWithT returns a connection to the test database with the schema
// migrated to the latest version. The connection is shared by every test in
// the package; the test is skipped when no database is configured.
func GetTestDBWithT(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := GetTestDatabaseURL()
	if dbURL == "" {
		t.Skipf("%s or %s not set; skipping database test", EnvTestDatabaseURL, EnvDatabaseURL)
	}

	sharedDBOnce.Do(func() {
		db, err := sql.Open("pgx", dbURL)
		if err != nil {
			sharedDBErr = err
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			sharedDBErr = err
			_ = db.Close()
			return
		}
		if err := postgres.Migrate(ctx, db, "up", nil); err != nil {
			sharedDBErr = err
			_ = db.Close()
			return
		}
		sharedDB = db
	})

	require.NoError(t, sharedDBErr, "test database %s unavailable", MaskDatabaseURL(dbURL))
	return sharedDB
}

// WithTx runs fn inside a transaction that is always rolled back, so tests
// never see each other's rows.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err, "failed to begin test transaction")

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("Warning: failed to rollback transaction: %v", err)
		}
	}()

	fn(t, tx)
}
