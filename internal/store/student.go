package store

import (
	"context"
	"database/sql"

	"github.com/schoolmgmt/school-api/internal/domain"
)

// UpsertResult describes a successful AddOrUpdate.
type UpsertResult struct {
	Created bool
	UserID  int64
	Message string
}

// StatusChange activates or deactivates a student on behalf of a reviewer.
type StatusChange struct {
	UserID     int64
	ReviewerID int64
	Active     bool
}

// StudentStore persists students across the users, user_profiles and
// students tables.
type StudentStore interface {
	// List returns the students matching filter ordered by id.
	List(ctx context.Context, filter domain.StudentFilter) ([]domain.StudentSummary, error)

	// GetDetail returns the full record of one student.
	// Returns ErrStudentNotFound if no Student-role user has the id.
	GetDetail(ctx context.Context, id int64) (*domain.Student, error)

	// Exists reports whether a Student-role user has the id.
	Exists(ctx context.Context, id int64) (bool, error)

	// AddOrUpdate creates the student when s.ID is zero and updates it
	// otherwise. All three rows are written in one transaction.
	// Returns ErrEmailExists on a duplicate email, ErrStudentNotFound when
	// updating an unknown id and ErrRoleNotFound when the Student role is
	// missing.
	AddOrUpdate(ctx context.Context, s *domain.Student) (UpsertResult, error)

	// SetStatus updates the active flag and records the reviewer. It returns
	// the number of rows affected; zero means no such student.
	SetStatus(ctx context.Context, change StatusChange) (int64, error)

	// WithTx returns a new StudentStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) StudentStore
}
