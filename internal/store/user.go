package store

import (
	"context"
	"database/sql"

	"github.com/schoolmgmt/school-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// GetByID retrieves a user and its role name.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByEmail retrieves a user by email, compared case-insensitively.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// EmailExists is an advisory check used to fail fast with a friendly
	// error. The unique index on lower(email) remains the authority.
	EmailExists(ctx context.Context, email string) (bool, error)

	// RoleIDByName resolves a role name to its id.
	// Returns ErrRoleNotFound if the role has not been seeded.
	RoleIDByName(ctx context.Context, name string) (int64, error)

	// CreateWithProfile inserts the user and its profile atomically and
	// returns the new user id. Returns ErrEmailExists on a duplicate email.
	CreateWithProfile(ctx context.Context, user *domain.User, profile domain.UserProfile) (int64, error)

	// MarkEmailVerified sets is_email_verified. It is idempotent.
	// Returns ErrUserNotFound if the user does not exist.
	MarkEmailVerified(ctx context.Context, id int64) error

	// WithTx returns a new UserStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) UserStore
}
