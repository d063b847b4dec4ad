package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/schoolmgmt/school-api/internal/domain"
	"github.com/schoolmgmt/school-api/internal/events"
	"github.com/schoolmgmt/school-api/internal/notify"
	"github.com/schoolmgmt/school-api/internal/platform/logger"
	"github.com/schoolmgmt/school-api/internal/redact"
	"github.com/schoolmgmt/school-api/internal/store"
	"github.com/schoolmgmt/school-api/internal/task"
)

// Messages returned to clients.
const (
	MsgStudentAddedEmailSent   = "Student added and verification email sent successfully."
	MsgStudentAddedEmailFailed = "Student added, but failed to send verification email."
	MsgStudentStatusChanged    = "Student status changed successfully"

	msgUnableToList         = "Unable to list students"
	msgUnableToGet          = "Unable to get student"
	msgUnableToAdd          = "Unable to add student"
	msgUnableToUpdate       = "Unable to update student"
	msgUnableToChangeStatus = "Unable to change student status"
)

// Outcome reports a successful student write.
type Outcome struct {
	Message   string
	UserID    int64
	EmailSent bool
}

// StudentService implements the student use cases.
type StudentService struct {
	students store.StudentStore
	users    store.UserStore
	notifier notify.Notifier
	emitter  events.EventEmitter
	logger   *slog.Logger
}

// NewStudentService creates a StudentService. All dependencies are required.
func NewStudentService(
	students store.StudentStore,
	users store.UserStore,
	notifier notify.Notifier,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (*StudentService, error) {
	switch {
	case students == nil:
		return nil, errors.New("student store cannot be nil")
	case users == nil:
		return nil, errors.New("user store cannot be nil")
	case notifier == nil:
		return nil, errors.New("notifier cannot be nil")
	case emitter == nil:
		return nil, errors.New("event emitter cannot be nil")
	case logger == nil:
		return nil, errors.New("logger cannot be nil")
	}

	return &StudentService{
		students: students,
		users:    users,
		notifier: notifier,
		emitter:  emitter,
		logger:   logger.With(slog.String("component", "student_service")),
	}, nil
}

// ListStudents returns the students matching filter. An empty result is
// reported as ErrNoStudents.
func (s *StudentService) ListStudents(
	ctx context.Context,
	filter domain.StudentFilter,
) ([]domain.StudentSummary, error) {
	students, err := s.students.List(ctx, filter)
	if err != nil {
		return nil, NewServiceError("list_students", msgUnableToList, err)
	}
	if len(students) == 0 {
		return nil, ErrNoStudents
	}
	return students, nil
}

// GetStudent returns the full record of one student.
func (s *StudentService) GetStudent(ctx context.Context, id int64) (*domain.Student, error) {
	if err := s.checkStudent(ctx, "get_student", msgUnableToGet, id); err != nil {
		return nil, err
	}

	st, err := s.students.GetDetail(ctx, id)
	if err != nil {
		return nil, NewServiceError("get_student", msgUnableToGet, err)
	}
	return st, nil
}

// AddStudent creates the student and then sends the verification email.
// A delivery failure downgrades the message and schedules a retry; it never
// fails the call.
func (s *StudentService) AddStudent(ctx context.Context, st *domain.Student) (Outcome, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	st.ID = 0
	st.Normalize()

	taken, err := s.users.EmailExists(ctx, st.Email)
	if err != nil {
		return Outcome{}, NewServiceError("add_student", msgUnableToAdd, err)
	}
	if taken {
		return Outcome{}, ErrEmailTaken
	}

	res, err := s.students.AddOrUpdate(ctx, st)
	if err != nil {
		log.Error("failed to add student", slog.String("error", redact.Error(err)))
		return Outcome{}, NewServiceError("add_student", msgUnableToAdd, err)
	}

	out := Outcome{UserID: res.UserID}
	msg := notify.VerificationEmail{UserID: res.UserID, UserEmail: st.Email}
	if err := s.notifier.SendAccountVerificationEmail(ctx, msg); err != nil {
		log.Warn("verification email not sent, scheduling retry",
			slog.Int64("user_id", res.UserID),
			slog.String("error", redact.Error(err)))
		s.requestRetry(ctx, msg)
		out.Message = MsgStudentAddedEmailFailed
		return out, nil
	}

	out.EmailSent = true
	out.Message = MsgStudentAddedEmailSent
	return out, nil
}

func (s *StudentService) requestRetry(ctx context.Context, msg notify.VerificationEmail) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	event, err := events.NewTaskRequestEvent(task.TaskTypeVerificationEmail, msg)
	if err != nil {
		log.Error("failed to build retry event", slog.String("error", err.Error()))
		return
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Error("failed to schedule verification email retry",
			slog.Int64("user_id", msg.UserID),
			slog.String("error", redact.Error(err)))
	}
}

// UpdateStudent rewrites an existing student. The id must resolve first;
// an update never creates a record.
func (s *StudentService) UpdateStudent(ctx context.Context, st *domain.Student) (Outcome, error) {
	if st.ID <= 0 {
		return Outcome{}, ErrStudentNotFound
	}
	if err := s.checkStudent(ctx, "update_student", msgUnableToUpdate, st.ID); err != nil {
		return Outcome{}, err
	}

	res, err := s.students.AddOrUpdate(ctx, st)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update student",
			slog.Int64("student_id", st.ID),
			slog.String("error", redact.Error(err)))
		return Outcome{}, NewServiceError("update_student", msgUnableToUpdate, err)
	}
	return Outcome{Message: res.Message, UserID: res.UserID}, nil
}

// SetStudentStatus activates or deactivates a student.
func (s *StudentService) SetStudentStatus(ctx context.Context, change store.StatusChange) (string, error) {
	if err := s.checkStudent(ctx, "set_student_status", msgUnableToChangeStatus, change.UserID); err != nil {
		return "", err
	}

	n, err := s.students.SetStatus(ctx, change)
	if err != nil {
		return "", NewServiceError("set_student_status", msgUnableToChangeStatus, err)
	}
	if n <= 0 {
		return "", &ServiceError{
			Operation: "set_student_status",
			Message:   msgUnableToChangeStatus,
			Err:       store.ErrUpdateFailed,
		}
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("student status changed",
		slog.Int64("student_id", change.UserID),
		slog.Int64("reviewer_id", change.ReviewerID),
		slog.Bool("active", change.Active))
	return MsgStudentStatusChanged, nil
}

func (s *StudentService) checkStudent(ctx context.Context, op, msg string, id int64) error {
	ok, err := s.students.Exists(ctx, id)
	if err != nil {
		return NewServiceError(op, msg, err)
	}
	if !ok {
		return ErrStudentNotFound
	}
	return nil
}
