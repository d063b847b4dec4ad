package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/schoolmgmt/school-api/internal/store"
)

// withTx runs fn in a new transaction on conn. Stores created through
// WithTx have no conn and run fn directly on the caller's transaction.
func withTx(ctx context.Context, db store.DBTX, conn *sql.DB, fn func(db store.DBTX) error) error {
	if conn == nil {
		return fn(db)
	}
	return store.RunInTransaction(ctx, conn, func(ctx context.Context, tx *sql.Tx) error {
		return fn(tx)
	})
}

// roleID resolves a seeded role name.
func roleID(ctx context.Context, db store.DBTX, name string) (int64, error) {
	var id int64
	err := db.QueryRowContext(ctx, `SELECT id FROM roles WHERE name = $1`, name).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, store.ErrRoleNotFound
		}
		return 0, MapError(err)
	}
	return id, nil
}
