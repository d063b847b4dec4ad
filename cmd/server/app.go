package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	apiMiddleware "github.com/schoolmgmt/school-api/internal/api/middleware"
	"github.com/schoolmgmt/school-api/internal/config"
	"github.com/schoolmgmt/school-api/internal/events"
	"github.com/schoolmgmt/school-api/internal/notify"
	"github.com/schoolmgmt/school-api/internal/platform/postgres"
	"github.com/schoolmgmt/school-api/internal/redact"
	"github.com/schoolmgmt/school-api/internal/service"
	"github.com/schoolmgmt/school-api/internal/service/auth"
	"github.com/schoolmgmt/school-api/internal/store"
	"github.com/schoolmgmt/school-api/internal/task"
	"github.com/schoolmgmt/school-api/internal/validation"
)

// loginWindow is the fixed window of the login rate limiter.
const loginWindow = time.Minute

// application holds the shared dependencies of the server and releases them
// on shutdown.
type application struct {
	config   *config.Config
	logger   *slog.Logger
	db       *sql.DB
	registry *prometheus.Registry
	redis    *redis.Client

	userStore    store.UserStore
	studentStore store.StudentStore
	taskStore    task.TaskStore

	jwtService auth.JWTService
	hasher     auth.PasswordHasher
	notifier   notify.Notifier

	emitter    *events.InMemoryEventEmitter
	taskRunner *task.TaskRunner

	studentService *service.StudentService
	authService    *service.AuthService
	adminService   *service.AdminService

	validator    *validation.Validator
	metrics      *apiMiddleware.Metrics
	loginLimiter *apiMiddleware.RateLimiter
}

// newApplication wires every component. Nothing is started; Run starts the
// task runner and the HTTP server.
func newApplication(
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
	registry *prometheus.Registry,
) (*application, error) {
	app := &application{
		config:   cfg,
		logger:   logger,
		db:       db,
		registry: registry,
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	app.hasher = auth.NewArgon2Hasher()

	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.studentStore = postgres.NewPostgresStudentStore(db, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)

	if err := app.setupNotifier(); err != nil {
		return nil, err
	}
	if err := app.setupTasks(); err != nil {
		return nil, err
	}

	app.studentService, err = service.NewStudentService(
		app.studentStore,
		app.userStore,
		app.notifier,
		app.emitter,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create student service: %w", err)
	}
	app.authService, err = service.NewAuthService(app.userStore, app.hasher, app.jwtService, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth service: %w", err)
	}
	app.adminService, err = service.NewAdminService(app.userStore, app.hasher, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create admin service: %w", err)
	}

	app.validator = validation.New()
	app.metrics, err = apiMiddleware.NewMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register HTTP metrics: %w", err)
	}
	if err := app.setupRateLimiter(); err != nil {
		return nil, err
	}

	logger.Info("application initialized")
	return app, nil
}

// setupNotifier picks SMTP delivery when a relay is configured and logs
// verification links otherwise. Either way delivery outcomes are counted.
func (app *application) setupNotifier() error {
	var base notify.Notifier
	if app.config.Mail.SMTPHost != "" {
		smtpNotifier, err := notify.NewSMTPNotifier(app.config.Mail, app.jwtService, app.logger)
		if err != nil {
			return fmt.Errorf("failed to create SMTP notifier: %w", err)
		}
		base = smtpNotifier
	} else {
		app.logger.Warn("SMTP is not configured, verification emails will only be logged")
		base = notify.NewLogNotifier(app.logger)
	}

	instrumented, err := notify.NewInstrumentedNotifier(base, app.registry)
	if err != nil {
		return fmt.Errorf("failed to register notifier metrics: %w", err)
	}
	app.notifier = instrumented
	return nil
}

// setupTasks builds the retry pipeline: failed verification emails are
// emitted as events, turned into tasks and executed by the runner.
func (app *application) setupTasks() error {
	factory, err := task.NewVerificationEmailTaskFactory(app.notifier, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create verification email task factory: %w", err)
	}

	registry := task.NewRegistry()
	registry.Register(task.TaskTypeVerificationEmail, factory.FromRecord)

	app.taskRunner = task.NewTaskRunner(app.taskStore, registry, task.TaskRunnerConfig{
		WorkerCount:  app.config.Task.WorkerCount,
		QueueSize:    app.config.Task.QueueSize,
		StuckTaskAge: time.Duration(app.config.Task.StuckTaskAgeMinutes) * time.Minute,
	}, app.logger)
	app.taskRunner.SetErrorHandler(func(t task.Task, err error) {
		app.logger.Warn("background task failed",
			"task_id", t.ID(),
			"task_type", t.Type(),
			"error", redact.Error(err))
	})

	app.emitter = events.NewInMemoryEventEmitter(app.logger)
	app.emitter.Subscribe(
		task.TaskTypeVerificationEmail,
		task.NewTaskFactoryEventHandler(factory, app.taskRunner, app.logger),
	)
	return nil
}

// setupRateLimiter enables the login limiter when Redis is configured.
func (app *application) setupRateLimiter() error {
	if app.config.Redis.Addr == "" || app.config.RateLimit.LoginPerMinute <= 0 {
		app.logger.Info("login rate limiting disabled")
		return nil
	}

	app.redis = redis.NewClient(&redis.Options{Addr: app.config.Redis.Addr})
	limiter, err := apiMiddleware.NewRateLimiter(
		app.redis,
		"login",
		app.config.RateLimit.LoginPerMinute,
		loginWindow,
		app.logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create login rate limiter: %w", err)
	}
	app.loginLimiter = limiter
	return nil
}

// Run starts background processing and serves HTTP until ctx is cancelled.
func (app *application) Run(ctx context.Context) error {
	defer app.cleanup()

	if err := app.taskRunner.Start(); err != nil {
		return fmt.Errorf("failed to start task runner: %w", err)
	}
	return app.startHTTPServer(ctx, app.setupRouter())
}

// health reports whether the database answers within the request deadline.
func (app *application) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status, body := http.StatusOK, "OK"
	if err := app.db.PingContext(ctx); err != nil {
		app.logger.Error("health check failed", "error", err)
		status, body = http.StatusServiceUnavailable, "database unavailable"
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(body)); err != nil {
		app.logger.Error("failed to write health check response", "error", err)
	}
}

// cleanup releases resources in reverse order of acquisition.
func (app *application) cleanup() {
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", "error", err)
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}
	app.logger.Info("application shutdown completed")
}
