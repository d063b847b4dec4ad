package service

import (
	"errors"
	"fmt"

	"github.com/schoolmgmt/school-api/internal/store"
)

// Sentinel errors returned by the services. The API layer maps them to
// status codes with errors.Is.
var (
	// ErrStudentNotFound indicates that no Student-role user has the id.
	ErrStudentNotFound = errors.New("student not found")

	// ErrNoStudents indicates that a listing matched nothing.
	ErrNoStudents = fmt.Errorf("%w: no students match the filter", ErrStudentNotFound)

	// ErrEmailTaken indicates that another user already has the email.
	ErrEmailTaken = errors.New("email already exists")

	// ErrRoleMissing indicates that a seeded role row is absent. It is a
	// deployment problem, not a client error.
	ErrRoleMissing = errors.New("required role is not configured")

	// ErrInvalidCredentials is returned for an unknown email and for a wrong
	// password alike.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountInactive indicates correct credentials on an account that is
	// disabled or has not verified its email.
	ErrAccountInactive = errors.New("account is not active or email is not verified")
)

// ServiceError wraps an unexpected failure with the operation that failed
// and a message that is safe to show to clients.
type ServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError translates err for callers of operation. Store errors with
// a service-level meaning become the matching sentinel; everything else is
// wrapped in a ServiceError carrying message.
func NewServiceError(operation, message string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrStudentNotFound), errors.Is(err, ErrEmailTaken), errors.Is(err, ErrRoleMissing):
		return err
	case errors.Is(err, store.ErrStudentNotFound):
		return ErrStudentNotFound
	case errors.Is(err, store.ErrEmailExists):
		return ErrEmailTaken
	case errors.Is(err, store.ErrRoleNotFound):
		return fmt.Errorf("%w: %v", ErrRoleMissing, err)
	}

	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
