package postgres_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/schoolmgmt/school-api/internal/platform/postgres"
	"github.com/schoolmgmt/school-api/internal/store"
	"github.com/schoolmgmt/school-api/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTask struct {
	id uuid.UUID
}

func (f fakeTask) ID() uuid.UUID                   { return f.id }
func (f fakeTask) Type() string                    { return task.TaskTypeVerificationEmail }
func (f fakeTask) Payload() []byte                 { return []byte(`{"user_id":1,"user_email":"a@x.com"}`) }
func (f fakeTask) Status() task.TaskStatus         { return task.TaskStatusPending }
func (f fakeTask) Execute(ctx context.Context) error { return nil }

func newTaskStore(t *testing.T) (*postgres.PostgresTaskStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return postgres.NewPostgresTaskStore(db, nil), mock
}

func TestPostgresTaskStore_SaveTask(t *testing.T) {
	s, mock := newTaskStore(t)
	ft := fakeTask{id: uuid.New()}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tasks")).
		WithArgs(ft.id, task.TaskTypeVerificationEmail, string(ft.Payload()), "pending",
			sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.SaveTask(context.Background(), ft))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTaskStore_UpdateTaskStatus(t *testing.T) {
	s, mock := newTaskStore(t)
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE tasks")).
		WithArgs("failed", "smtp down", sqlmock.AnyArg(), id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE tasks")).
		WithArgs("completed", nil, sqlmock.AnyArg(), id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.UpdateTaskStatus(context.Background(), id, task.TaskStatusFailed, "smtp down"))
	err := s.UpdateTaskStatus(context.Background(), id, task.TaskStatusCompleted, "")
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTaskStore_GetTasks(t *testing.T) {
	cols := []string{"id", "type", "payload", "status", "error_message", "created_at", "updated_at"}
	now := time.Now().UTC()
	id := uuid.New()

	t.Run("pending", func(t *testing.T) {
		s, mock := newTaskStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("WHERE status = $1 ORDER BY created_at ASC")).
			WithArgs("pending").
			WillReturnRows(sqlmock.NewRows(cols).
				AddRow(id.String(), task.TaskTypeVerificationEmail, []byte(`{}`), "pending", nil, now, now))

		recs, err := s.GetPendingTasks(context.Background(), 0)
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, id, recs[0].ID)
		assert.Equal(t, task.TaskStatusPending, recs[0].Status)
		assert.Empty(t, recs[0].ErrorMessage)
		assert.Equal(t, []byte(`{}`), recs[0].Payload)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("processing older than", func(t *testing.T) {
		s, mock := newTaskStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("WHERE status = $1 AND updated_at < $2")).
			WithArgs("processing", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows(cols).
				AddRow(id.String(), task.TaskTypeVerificationEmail, []byte(`{}`), "processing", "Reset", now, now))

		recs, err := s.GetProcessingTasks(context.Background(), 30*time.Minute)
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, "Reset", recs[0].ErrorMessage)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMigrationFiles(t *testing.T) {
	files, err := postgres.MigrationFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"00001_create_roles_and_users.sql",
		"00002_create_user_profiles.sql",
		"00003_create_students.sql",
		"00004_create_tasks.sql",
	}, files)
}

func TestMigrate_UnknownCommand(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	err = postgres.Migrate(context.Background(), db, "sideways", testLogger())
	assert.ErrorContains(t, err, "unknown migration command")
}
