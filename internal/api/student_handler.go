package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/schoolmgmt/school-api/internal/api/shared"
	"github.com/schoolmgmt/school-api/internal/domain"
	"github.com/schoolmgmt/school-api/internal/platform/logger"
	"github.com/schoolmgmt/school-api/internal/service"
	"github.com/schoolmgmt/school-api/internal/store"
	"github.com/schoolmgmt/school-api/internal/validation"
)

// StudentService is the subset of service.StudentService the handler uses.
type StudentService interface {
	ListStudents(ctx context.Context, filter domain.StudentFilter) ([]domain.StudentSummary, error)
	GetStudent(ctx context.Context, id int64) (*domain.Student, error)
	AddStudent(ctx context.Context, st *domain.Student) (service.Outcome, error)
	UpdateStudent(ctx context.Context, st *domain.Student) (service.Outcome, error)
	SetStudentStatus(ctx context.Context, change store.StatusChange) (string, error)
}

// StudentHandler serves the student management endpoints.
type StudentHandler struct {
	students  StudentService
	validator *validation.Validator
	logger    *slog.Logger
}

// NewStudentHandler creates a StudentHandler.
func NewStudentHandler(students StudentService, v *validation.Validator, logger *slog.Logger) *StudentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if v == nil {
		v = validation.New()
	}
	return &StudentHandler{
		students:  students,
		validator: v,
		logger:    logger.With(slog.String("component", "student_handler")),
	}
}

// ListStudents handles GET /students. Query parameters name, class, section
// and roll narrow the listing.
func (h *StudentHandler) ListStudents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := validation.StudentListQuery{
		Name:    q.Get("name"),
		Class:   q.Get("class"),
		Section: q.Get("section"),
		Roll:    q.Get("roll"),
	}
	if err := h.validator.Struct(query); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	filter, err := query.ToFilter()
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	students, err := h.students.ListStudents(r.Context(), filter)
	if err != nil {
		HandleAPIError(w, r, err, "Unable to list students")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, StudentListResponse{Students: students})
}

// GetStudent handles GET /students/{id}.
func (h *StudentHandler) GetStudent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, h.validator, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	st, err := h.students.GetStudent(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Unable to get student")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, newStudentResponse(st))
}

// AddStudent handles POST /students.
func (h *StudentHandler) AddStudent(w http.ResponseWriter, r *http.Request) {
	var req validation.StudentRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}
	st, err := req.ToStudent(0)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	out, err := h.students.AddStudent(r.Context(), st)
	if err != nil {
		HandleAPIError(w, r, err, "Unable to add student")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Info("student added",
		slog.Int64("student_id", out.UserID),
		slog.Bool("email_sent", out.EmailSent))
	shared.RespondWithJSON(w, r, http.StatusCreated, AddStudentResponse{
		Message:   out.Message,
		ID:        out.UserID,
		EmailSent: out.EmailSent,
	})
}

// UpdateStudent handles PUT /students/{id}.
func (h *StudentHandler) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, h.validator, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req validation.StudentRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}
	st, err := req.ToStudent(id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	out, err := h.students.UpdateStudent(r.Context(), st)
	if err != nil {
		HandleAPIError(w, r, err, "Unable to update student")
		return
	}
	shared.RespondWithMessage(w, r, http.StatusOK, out.Message)
}

// SetStudentStatus handles POST /students/{id}/status. The caller is
// recorded as the reviewer.
func (h *StudentHandler) SetStudentStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, h.validator, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req validation.StudentStatusRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	reviewer, err := callerID(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	msg, err := h.students.SetStudentStatus(r.Context(), store.StatusChange{
		UserID:     id,
		ReviewerID: reviewer,
		Active:     *req.Status,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Unable to change student status")
		return
	}
	shared.RespondWithMessage(w, r, http.StatusOK, msg)
}
