package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/schoolmgmt/school-api/internal/notify"
)

// Common errors
var (
	ErrNilNotifier   = errors.New("notifier cannot be nil")
	ErrInvalidUserID = errors.New("user ID must be positive")
	ErrEmptyEmail    = errors.New("email cannot be empty")
)

// VerificationEmailTask re-sends the account verification email of one user.
type VerificationEmailTask struct {
	id       uuid.UUID
	msg      notify.VerificationEmail
	notifier notify.Notifier
	logger   *slog.Logger

	mu     sync.Mutex
	status TaskStatus
}

var _ Task = (*VerificationEmailTask)(nil)

// ID returns the task's unique identifier
func (t *VerificationEmailTask) ID() uuid.UUID {
	return t.id
}

// Type returns TaskTypeVerificationEmail.
func (t *VerificationEmailTask) Type() string {
	return TaskTypeVerificationEmail
}

// Payload returns the JSON-encoded notify.VerificationEmail.
func (t *VerificationEmailTask) Payload() []byte {
	b, err := json.Marshal(t.msg)
	if err != nil {
		return nil
	}
	return b
}

// Status returns the current task status
func (t *VerificationEmailTask) Status() TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *VerificationEmailTask) setStatus(s TaskStatus) {
	t.mu.Lock()
	t.status = s
	t.mu.Unlock()
}

// Execute sends the email again.
func (t *VerificationEmailTask) Execute(ctx context.Context) error {
	t.setStatus(TaskStatusProcessing)

	if err := t.notifier.SendAccountVerificationEmail(ctx, t.msg); err != nil {
		t.setStatus(TaskStatusFailed)
		return fmt.Errorf("resend verification email to user %d: %w", t.msg.UserID, err)
	}

	t.logger.Info("verification email re-sent", "task_id", t.id, "user_id", t.msg.UserID)
	t.setStatus(TaskStatusCompleted)
	return nil
}

// VerificationEmailTaskFactory creates VerificationEmailTasks.
type VerificationEmailTaskFactory struct {
	notifier notify.Notifier
	logger   *slog.Logger
}

// NewVerificationEmailTaskFactory creates a factory bound to notifier.
func NewVerificationEmailTaskFactory(
	notifier notify.Notifier,
	logger *slog.Logger,
) (*VerificationEmailTaskFactory, error) {
	if notifier == nil {
		return nil, ErrNilNotifier
	}
	return &VerificationEmailTaskFactory{
		notifier: notifier,
		logger:   logger.With("component", "verification_email_task"),
	}, nil
}

// CreateTask creates a new pending task for msg.
func (f *VerificationEmailTaskFactory) CreateTask(msg notify.VerificationEmail) (*VerificationEmailTask, error) {
	return f.build(uuid.New(), msg, TaskStatusPending)
}

// FromRecord restores a persisted task. It satisfies Factory.
func (f *VerificationEmailTaskFactory) FromRecord(rec Record) (Task, error) {
	var msg notify.VerificationEmail
	if err := json.Unmarshal(rec.Payload, &msg); err != nil {
		return nil, fmt.Errorf("invalid verification email payload: %w", err)
	}
	return f.build(rec.ID, msg, rec.Status)
}

func (f *VerificationEmailTaskFactory) build(
	id uuid.UUID,
	msg notify.VerificationEmail,
	status TaskStatus,
) (*VerificationEmailTask, error) {
	if msg.UserID <= 0 {
		return nil, ErrInvalidUserID
	}
	if msg.UserEmail == "" {
		return nil, ErrEmptyEmail
	}
	return &VerificationEmailTask{
		id:       id,
		msg:      msg,
		notifier: f.notifier,
		logger:   f.logger,
		status:   status,
	}, nil
}
