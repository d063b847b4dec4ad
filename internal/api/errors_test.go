package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/schoolmgmt/school-api/internal/api/shared"
	"github.com/schoolmgmt/school-api/internal/domain"
	"github.com/schoolmgmt/school-api/internal/service"
	"github.com/schoolmgmt/school-api/internal/service/auth"
	"github.com/schoolmgmt/school-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation errors", domain.NewValidationError("name", "Name is required"), http.StatusBadRequest},
		{"invalid id", fmt.Errorf("%w: roll", domain.ErrInvalidID), http.StatusBadRequest},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest},
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"wrong token type", auth.ErrWrongTokenType, http.StatusUnauthorized},
		{"missing token", auth.ErrMissingToken, http.StatusUnauthorized},
		{"invalid credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"inactive account", service.ErrAccountInactive, http.StatusForbidden},
		{"unauthorized", domain.ErrUnauthorized, http.StatusForbidden},
		{"student not found", service.ErrStudentNotFound, http.StatusNotFound},
		{"no students", service.ErrNoStudents, http.StatusNotFound},
		{"store not found", store.ErrUserNotFound, http.StatusNotFound},
		{"email taken", service.ErrEmailTaken, http.StatusConflict},
		{"store email exists", store.ErrEmailExists, http.StatusConflict},
		{"role missing", fmt.Errorf("%w: Admin", service.ErrRoleMissing), http.StatusInternalServerError},
		{"store role missing", store.ErrRoleNotFound, http.StatusInternalServerError},
		{"service error", &service.ServiceError{Operation: "add_student", Message: "Unable to add student", Err: store.ErrTransactionFailed}, http.StatusInternalServerError},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError},
		{"nil", nil, http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		msg  string
	}{
		{"no students", service.ErrNoStudents, "Students not found"},
		{"student not found", service.ErrStudentNotFound, "Student not found"},
		{"email taken", service.ErrEmailTaken, "Email already exists"},
		{"invalid credentials", service.ErrInvalidCredentials, "Invalid credentials"},
		{"expired token", auth.ErrExpiredToken, "Token expired"},
		{"wrong token type", auth.ErrWrongTokenType, "Invalid token"},
		{"validation", domain.NewValidationError("email", "Email is required"), "Validation failed"},
		{"service message", &service.ServiceError{Operation: "list_students", Message: "Unable to list students", Err: errors.New("pq: relation does not exist")}, "Unable to list students"},
		{"role missing hides detail", fmt.Errorf("%w: Admin", service.ErrRoleMissing), "An unexpected error occurred"},
		{"unknown hides detail", errors.New(`pq: syntax error at or near "FROM"`), "An unexpected error occurred"},
		{"nil", nil, "An unexpected error occurred"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.msg, GetSafeErrorMessage(tc.err))
		})
	}
}

func TestHandleAPIError_ValidationFields(t *testing.T) {
	verr := &domain.ValidationErrors{}
	verr.Add("name", "Name is required")
	verr.Add("roll", "Roll must be at least 1")

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/students", nil)
	req = req.WithContext(shared.SetTraceID(req.Context()))

	HandleAPIError(rr, req, verr, "")

	var body shared.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Validation failed", body.Error)
	assert.Equal(t, verr.Fields, body.Fields)
	assert.NotEmpty(t, body.TraceID)
}

func TestHandleAPIError_DefaultMessage(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/students", nil)

	HandleAPIError(rr, req, errors.New("dial tcp 10.0.0.5:5432: connection refused"), "Unable to list students")

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"Unable to list students"}`, rr.Body.String())
}

func TestHandleAPIError_SpecificMessageWins(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/students/9", nil)

	HandleAPIError(rr, req, service.ErrStudentNotFound, "Unable to get student")

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"Student not found"}`, rr.Body.String())
}
