package testdb

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/schoolmgmt/school-api/internal/config"
	"github.com/schoolmgmt/school-api/internal/platform/postgres"
	"github.com/stretchr/testify/require"
)

// Timeout bounds connection setup and migrations.
const Timeout = 30 * time.Second

var (
	migrateOnce sync.Once
	migrateErr  error
)

// Available reports whether a test database is configured.
func Available() bool {
	return config.LookupDatabaseURL() != ""
}

// Open connects to the test database and makes sure the schema is current.
// The test is skipped when no database is configured. The connection is
// closed when the test finishes.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	url := config.LookupDatabaseURL()
	if url == "" {
		t.Skip("SCHOOL_DATABASE_URL or DATABASE_URL not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), Timeout)
	defer cancel()

	db, err := postgres.Open(ctx, config.DatabaseConfig{URL: url, MaxOpenConns: 5})
	require.NoError(t, err, "failed to connect to test database")
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("failed to close test database: %v", err)
		}
	})

	migrateOnce.Do(func() {
		quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
		migrateErr = postgres.Migrate(ctx, db, postgres.MigrateUp, quiet)
	})
	require.NoError(t, migrateErr, "failed to migrate test database")

	return db
}
