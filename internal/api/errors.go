package api

import (
	"errors"
	"net/http"

	"github.com/schoolmgmt/school-api/internal/api/shared"
	"github.com/schoolmgmt/school-api/internal/domain"
	"github.com/schoolmgmt/school-api/internal/service"
	"github.com/schoolmgmt/school-api/internal/service/auth"
	"github.com/schoolmgmt/school-api/internal/store"
)

const msgUnexpected = "An unexpected error occurred"

// MapErrorToStatusCode maps internal errors to HTTP status codes so that
// internal error types never reach clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusInternalServerError

	// Validation errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, service.ErrAccountInactive),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden

	// A missing role row is a deployment fault, not a missing resource.
	case errors.Is(err, service.ErrRoleMissing),
		errors.Is(err, store.ErrRoleNotFound):
		return http.StatusInternalServerError

	// Not found errors
	case errors.Is(err, service.ErrStudentNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err that carries
// no internal detail.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return msgUnexpected
	}

	var svcErr *service.ServiceError

	switch {
	case errors.Is(err, domain.ErrValidation):
		return "Validation failed"
	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID"
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	case errors.Is(err, service.ErrInvalidCredentials):
		return "Invalid credentials"
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid token"

	case errors.Is(err, service.ErrAccountInactive):
		return "Account is inactive or email is not verified"
	case errors.Is(err, domain.ErrUnauthorized):
		return "You do not have permission to perform this action"

	case errors.Is(err, service.ErrRoleMissing),
		errors.Is(err, store.ErrRoleNotFound):
		return msgUnexpected

	case errors.Is(err, service.ErrNoStudents):
		return "Students not found"
	case errors.Is(err, service.ErrStudentNotFound),
		errors.Is(err, store.ErrStudentNotFound):
		return "Student not found"
	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	case errors.As(err, &svcErr) && svcErr.Message != "":
		return svcErr.Message

	default:
		return msgUnexpected
	}
}

// HandleAPIError writes the response for err. Validation errors carry their
// field list. When err maps to 500 and has no safe message of its own,
// defaultMsg is shown instead of the generic text.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	status := MapErrorToStatusCode(err)
	msg := GetSafeErrorMessage(err)
	if msg == msgUnexpected && defaultMsg != "" {
		msg = defaultMsg
	}

	var opts []shared.ResponseOption
	var verrs *domain.ValidationErrors
	if errors.As(err, &verrs) && verrs.HasErrors() {
		opts = append(opts, shared.WithFields(verrs.Fields))
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		opts = append(opts, shared.WithElevatedLogLevel())
	}

	shared.RespondWithErrorAndLog(w, r, status, msg, err, opts...)
}
