package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/schoolmgmt/school-api/internal/events"
	"github.com/schoolmgmt/school-api/internal/notify"
)

// Submitter accepts tasks for background execution. *TaskRunner implements it.
type Submitter interface {
	Submit(ctx context.Context, task Task) error
}

// TaskFactoryEventHandler turns task request events into submitted tasks.
type TaskFactoryEventHandler struct {
	factory *VerificationEmailTaskFactory
	runner  Submitter
	logger  *slog.Logger
}

var _ events.EventHandler = (*TaskFactoryEventHandler)(nil)

// NewTaskFactoryEventHandler creates an event handler that builds tasks with
// factory and submits them to runner.
func NewTaskFactoryEventHandler(
	factory *VerificationEmailTaskFactory,
	runner Submitter,
	logger *slog.Logger,
) *TaskFactoryEventHandler {
	return &TaskFactoryEventHandler{
		factory: factory,
		runner:  runner,
		logger:  logger.With("component", "task_factory_event_handler"),
	}
}

// HandleEvent implements events.EventHandler. Events of other types are ignored.
func (h *TaskFactoryEventHandler) HandleEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	if event.Type != TaskTypeVerificationEmail {
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	var msg notify.VerificationEmail
	if err := event.UnmarshalPayload(&msg); err != nil {
		h.logger.Error("failed to unmarshal payload", "error", err, "event_id", event.ID)
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	task, err := h.factory.CreateTask(msg)
	if err != nil {
		h.logger.Error("failed to create task", "error", err, "event_id", event.ID)
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := h.runner.Submit(ctx, task); err != nil {
		h.logger.Error("failed to submit task",
			"error", err,
			"task_id", task.ID(),
			"event_id", event.ID)
		return fmt.Errorf("failed to submit task: %w", err)
	}

	h.logger.Info("task created and submitted",
		"task_id", task.ID(),
		"user_id", msg.UserID,
		"event_id", event.ID)
	return nil
}
