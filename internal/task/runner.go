package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrQueueFull is returned by Submit when the in-memory queue has no room.
// The task stays pending in the store and is picked up by the next Recover.
var ErrQueueFull = errors.New("task queue is full, try again later")

// ErrRunnerStopped is returned by Submit after Stop.
var ErrRunnerStopped = errors.New("task runner is stopped")

// TaskRunnerConfig holds configuration for the task runner
type TaskRunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue
	QueueSize int

	// StuckTaskAge defines how long a task can be in processing state
	// before it's considered stuck and reset
	StuckTaskAge time.Duration

	// StuckTaskCheckInterval defines how often to check for stuck tasks and
	// for pending tasks that did not fit in the queue. Zero means five
	// minutes.
	StuckTaskCheckInterval time.Duration
}

// DefaultTaskRunnerConfig returns a TaskRunnerConfig with reasonable defaults
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount:            2,
		QueueSize:              100,
		StuckTaskAge:           30 * time.Minute,
		StuckTaskCheckInterval: 5 * time.Minute,
	}
}

// TaskRunner manages background task processing
type TaskRunner struct {
	store      TaskStore
	registry   *Registry
	taskChan   chan Task
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	config     TaskRunnerConfig

	// queued holds the ids sitting in taskChan or being processed, so the
	// pending sweep does not run a task twice.
	mu     sync.Mutex
	queued map[uuid.UUID]struct{}

	logger     *slog.Logger
	errHandler func(task Task, err error)
}

// NewTaskRunner creates a new TaskRunner. registry restores persisted tasks
// during recovery.
func NewTaskRunner(store TaskStore, registry *Registry, config TaskRunnerConfig, logger *slog.Logger) *TaskRunner {
	if config.StuckTaskCheckInterval == 0 {
		config.StuckTaskCheckInterval = 5 * time.Minute
	}
	if config.WorkerCount <= 0 {
		config.WorkerCount = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	logger = logger.With("component", "task_runner")

	return &TaskRunner{
		store:      store,
		registry:   registry,
		taskChan:   make(chan Task, config.QueueSize),
		queued:     make(map[uuid.UUID]struct{}),
		ctx:        ctx,
		cancelFunc: cancel,
		config:     config,
		logger:     logger,
		errHandler: func(task Task, err error) {
			logger.Error("task execution failed",
				"task_id", task.ID(),
				"task_type", task.Type(),
				"error", err)
		},
	}
}

// SetErrorHandler allows setting a custom error handler function
func (r *TaskRunner) SetErrorHandler(handler func(task Task, err error)) {
	r.errHandler = handler
}

// Submit persists the task and queues it for execution.
func (r *TaskRunner) Submit(ctx context.Context, task Task) error {
	if r.ctx.Err() != nil {
		return ErrRunnerStopped
	}

	if err := r.store.SaveTask(ctx, task); err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}

	if !r.enqueue(task) {
		return ErrQueueFull
	}
	return nil
}

// enqueue offers task to the workers without blocking. It reports false
// when the queue is full. A task that is already queued counts as queued.
func (r *TaskRunner) enqueue(task Task) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.queued[task.ID()]; ok {
		return true
	}
	select {
	case r.taskChan <- task:
		r.queued[task.ID()] = struct{}{}
		return true
	default:
		return false
	}
}

func (r *TaskRunner) done(id uuid.UUID) {
	r.mu.Lock()
	delete(r.queued, id)
	r.mu.Unlock()
}

// Start recovers unfinished tasks and starts the workers and the stuck-task monitor.
func (r *TaskRunner) Start() error {
	if err := r.Recover(r.ctx); err != nil {
		return fmt.Errorf("failed to recover tasks: %w", err)
	}

	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	r.wg.Add(1)
	go r.stuckTaskMonitor()

	return nil
}

// Stop cancels in-flight work and waits for workers to exit. Tasks left in
// the queue remain pending in the store.
func (r *TaskRunner) Stop() {
	r.cancelFunc()
	r.wg.Wait()
}

// Recover requeues pending tasks and resets tasks left in processing state
// by a previous run.
func (r *TaskRunner) Recover(ctx context.Context) error {
	pending, err := r.store.GetPendingTasks(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to get pending tasks: %w", err)
	}

	processing, err := r.store.GetProcessingTasks(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to get processing tasks: %w", err)
	}

	r.logger.Info("recovering unfinished tasks",
		"pending_count", len(pending),
		"processing_count", len(processing))

	for _, rec := range pending {
		r.requeue(rec)
	}
	for _, rec := range processing {
		if err := r.store.UpdateTaskStatus(ctx, rec.ID, TaskStatusPending, "Reset after recovery"); err != nil {
			r.logger.Error("failed to reset processing task status",
				"task_id", rec.ID,
				"task_type", rec.Type,
				"error", err)
			continue
		}
		r.requeue(rec)
	}

	return nil
}

func (r *TaskRunner) requeue(rec Record) {
	task, err := r.registry.Build(rec)
	if err != nil {
		r.logger.Error("failed to restore task",
			"task_id", rec.ID,
			"task_type", rec.Type,
			"error", err)
		if updateErr := r.store.UpdateTaskStatus(r.ctx, rec.ID, TaskStatusFailed, err.Error()); updateErr != nil {
			r.logger.Error("failed to mark unrestorable task as failed", "task_id", rec.ID, "error", updateErr)
		}
		return
	}

	if !r.enqueue(task) {
		r.logger.Warn("queue is full, task stays pending",
			"task_id", rec.ID,
			"task_type", rec.Type)
	}
}

func (r *TaskRunner) worker(id int) {
	defer r.wg.Done()

	r.logger.Debug("starting worker", "worker_id", id)

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Debug("stopping worker", "worker_id", id)
			return

		case task := <-r.taskChan:
			r.processTask(task, id)
			r.done(task.ID())
		}
	}
}

func (r *TaskRunner) processTask(task Task, workerID int) {
	ctx := r.ctx
	logger := r.logger.With(
		"task_id", task.ID(),
		"task_type", task.Type(),
		"worker_id", workerID,
	)

	if err := r.store.UpdateTaskStatus(ctx, task.ID(), TaskStatusProcessing, ""); err != nil {
		logger.Error("failed to update task status to processing", "error", err)
		return
	}

	logger.Info("processing task")

	if err := task.Execute(ctx); err != nil {
		if ctx.Err() != nil {
			// Shutting down; the stuck-task monitor or next Recover resets it.
			logger.Warn("task interrupted by shutdown", "error", err)
			return
		}
		logger.Error("task execution failed", "error", err)
		if updateErr := r.store.UpdateTaskStatus(ctx, task.ID(), TaskStatusFailed, err.Error()); updateErr != nil {
			logger.Error("failed to update task status to failed", "error", updateErr)
		}
		r.errHandler(task, err)
		return
	}

	logger.Info("task completed successfully")
	if err := r.store.UpdateTaskStatus(ctx, task.ID(), TaskStatusCompleted, ""); err != nil {
		logger.Error("failed to update task status to completed", "error", err)
	}
}

func (r *TaskRunner) stuckTaskMonitor() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.StuckTaskCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return

		case <-ticker.C:
			r.resetStuckTasks(r.ctx)
			r.sweepPending(r.ctx)
		}
	}
}

func (r *TaskRunner) resetStuckTasks(ctx context.Context) {
	stuck, err := r.store.GetProcessingTasks(ctx, r.config.StuckTaskAge)
	if err != nil {
		r.logger.Error("failed to check for stuck tasks", "error", err)
		return
	}
	if len(stuck) == 0 {
		return
	}

	r.logger.Info("found stuck tasks", "count", len(stuck))
	for _, rec := range stuck {
		if err := r.store.UpdateTaskStatus(ctx, rec.ID, TaskStatusPending,
			"Reset after being stuck in processing state"); err != nil {
			r.logger.Error("failed to reset stuck task status",
				"task_id", rec.ID,
				"task_type", rec.Type,
				"error", err)
			continue
		}
		r.requeue(rec)
	}
}

// sweepPending requeues pending tasks that have waited at least one check
// interval, such as tasks that found the queue full.
func (r *TaskRunner) sweepPending(ctx context.Context) {
	pending, err := r.store.GetPendingTasks(ctx, r.config.StuckTaskCheckInterval)
	if err != nil {
		r.logger.Error("failed to check for pending tasks", "error", err)
		return
	}

	for _, rec := range pending {
		r.mu.Lock()
		_, queued := r.queued[rec.ID]
		r.mu.Unlock()
		if !queued {
			r.requeue(rec)
		}
	}
}
