package postgres_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/schoolmgmt/school-api/internal/platform/postgres"
	"github.com/schoolmgmt/school-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func pgError(code, constraint string) *pgconn.PgError {
	return &pgconn.PgError{
		Code:           code,
		Message:        "error message",
		TableName:      "users",
		ColumnName:     "email",
		ConstraintName: constraint,
	}
}

func TestMapError(t *testing.T) {
	t.Parallel()

	plain := errors.New("connection reset")

	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"no rows", sql.ErrNoRows, store.ErrNotFound},
		{"email unique index", pgError("23505", "users_email_lower_key"), store.ErrEmailExists},
		{"other unique violation", pgError("23505", "roles_name_key"), store.ErrDuplicate},
		{"foreign key", pgError("23503", "users_role_id_fkey"), store.ErrInvalidEntity},
		{"check", pgError("23514", "students_roll_check"), store.ErrInvalidEntity},
		{"not null", pgError("23502", ""), store.ErrInvalidEntity},
		{"wrapped pg error", fmt.Errorf("insert: %w", pgError("23505", "users_email_lower_key")), store.ErrEmailExists},
		{"unmapped", plain, plain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, postgres.MapError(tt.err), tt.target)
		})
	}
}

func TestMapError_Nil(t *testing.T) {
	assert.NoError(t, postgres.MapError(nil))
}

func TestMapError_OtherUniqueIsNotEmailExists(t *testing.T) {
	err := postgres.MapError(pgError("23505", "roles_name_key"))
	assert.False(t, errors.Is(err, store.ErrEmailExists))
}
