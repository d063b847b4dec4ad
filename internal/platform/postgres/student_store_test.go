package postgres_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/schoolmgmt/school-api/internal/domain"
	"github.com/schoolmgmt/school-api/internal/platform/postgres"
	"github.com/schoolmgmt/school-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStudentStore(t *testing.T) (*postgres.PostgresStudentStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return postgres.NewPostgresStudentStore(db, nil), mock
}

func sampleStudent() *domain.Student {
	return &domain.Student{
		Name:               " Jane Doe ",
		Email:              "Jane@School.test",
		Gender:             "Female",
		DOB:                time.Date(2012, 5, 14, 0, 0, 0, 0, time.UTC),
		Phone:              "5551234567",
		Class:              "5",
		Section:            "A",
		Roll:               12,
		AdmissionDate:      time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		CurrentAddress:     "1 Main St",
		PermanentAddress:   "1 Main St",
		FatherName:         "John Doe",
		GuardianName:       "John Doe",
		GuardianPhone:      "5557654321",
		RelationOfGuardian: "Father",
		SystemAccess:       boolPtr(true),
	}
}

func boolPtr(b bool) *bool { return &b }

func expectProfileAndRecord(mock sqlmock.Sqlmock, userID int64) {
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO user_profiles")).
		WithArgs(userID, "Female", "5551234567", sqlmock.AnyArg(), sqlmock.AnyArg(),
			"1 Main St", "1 Main St", "John Doe", nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO students")).
		WithArgs(userID, "5", "A", 12, sqlmock.AnyArg(), nil, nil,
			"John Doe", "5557654321", "Father").
		WillReturnResult(sqlmock.NewResult(0, 1))
}

func TestPostgresStudentStore_AddOrUpdate_Create(t *testing.T) {
	s, mock := newStudentStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM roles WHERE name = $1")).
		WithArgs(domain.RoleStudent).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("Jane Doe", "jane@school.test", int64(3), true).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))
	expectProfileAndRecord(mock, 42)
	mock.ExpectCommit()

	res, err := s.AddOrUpdate(context.Background(), sampleStudent())
	require.NoError(t, err)
	assert.Equal(t, store.UpsertResult{Created: true, UserID: 42, Message: postgres.MsgStudentAdded}, res)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStudentStore_AddOrUpdate_Update(t *testing.T) {
	s, mock := newStudentStore(t)
	st := sampleStudent()
	st.ID = 42

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users")).
		WithArgs("Jane Doe", "jane@school.test", true, int64(42), domain.RoleStudent).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectProfileAndRecord(mock, 42)
	mock.ExpectCommit()

	res, err := s.AddOrUpdate(context.Background(), st)
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, int64(42), res.UserID)
	assert.Equal(t, postgres.MsgStudentUpdated, res.Message)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStudentStore_AddOrUpdate_SystemAccessOmitted(t *testing.T) {
	t.Run("create grants access", func(t *testing.T) {
		s, mock := newStudentStore(t)
		st := sampleStudent()
		st.SystemAccess = nil

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM roles WHERE name = $1")).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
			WithArgs("Jane Doe", "jane@school.test", int64(3), true).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))
		expectProfileAndRecord(mock, 42)
		mock.ExpectCommit()

		_, err := s.AddOrUpdate(context.Background(), st)
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("update keeps stored flag", func(t *testing.T) {
		s, mock := newStudentStore(t)
		st := sampleStudent()
		st.ID = 42
		st.SystemAccess = nil

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("is_active = COALESCE($3::boolean, is_active)")).
			WithArgs("Jane Doe", "jane@school.test", nil, int64(42), domain.RoleStudent).
			WillReturnResult(sqlmock.NewResult(0, 1))
		expectProfileAndRecord(mock, 42)
		mock.ExpectCommit()

		_, err := s.AddOrUpdate(context.Background(), st)
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("update can revoke explicitly", func(t *testing.T) {
		s, mock := newStudentStore(t)
		st := sampleStudent()
		st.ID = 42
		st.SystemAccess = boolPtr(false)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("UPDATE users")).
			WithArgs("Jane Doe", "jane@school.test", false, int64(42), domain.RoleStudent).
			WillReturnResult(sqlmock.NewResult(0, 1))
		expectProfileAndRecord(mock, 42)
		mock.ExpectCommit()

		_, err := s.AddOrUpdate(context.Background(), st)
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresStudentStore_AddOrUpdate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		id     int64
		setup  func(mock sqlmock.Sqlmock)
		target error
	}{
		{
			name: "student role missing",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM roles")).
					WillReturnRows(sqlmock.NewRows([]string{"id"}))
			},
			target: store.ErrRoleNotFound,
		},
		{
			name: "duplicate email on insert",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM roles")).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))
				mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
					WillReturnError(pgError("23505", "users_email_lower_key"))
			},
			target: store.ErrEmailExists,
		},
		{
			name: "students insert fails after user and profile",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM roles")).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))
				mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))
				mock.ExpectExec(regexp.QuoteMeta("INSERT INTO user_profiles")).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(regexp.QuoteMeta("INSERT INTO students")).
					WillReturnError(pgError("23514", "students_roll_check"))
			},
			target: store.ErrInvalidEntity,
		},
		{
			name: "update of unknown student",
			id:   404,
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta("UPDATE users")).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			target: store.ErrStudentNotFound,
		},
		{
			name: "duplicate email on update",
			id:   42,
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta("UPDATE users")).
					WillReturnError(pgError("23505", "users_email_lower_key"))
			},
			target: store.ErrEmailExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newStudentStore(t)
			st := sampleStudent()
			st.ID = tt.id

			mock.ExpectBegin()
			tt.setup(mock)
			mock.ExpectRollback()

			res, err := s.AddOrUpdate(context.Background(), st)
			assert.ErrorIs(t, err, tt.target)
			assert.Equal(t, store.UpsertResult{}, res)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresStudentStore_WithTxUsesCallerTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectProfileAndRecord(mock, 42)
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)

	st := sampleStudent()
	st.ID = 42
	txStore := postgres.NewPostgresStudentStore(db, nil).WithTx(tx)
	_, err = txStore.AddOrUpdate(context.Background(), st)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStudentStore_List(t *testing.T) {
	s, mock := newStudentStore(t)
	roll := 12

	mock.ExpectQuery(regexp.QuoteMeta(
		`u.name ILIKE $2 ESCAPE '\' AND s.class_name = $3 AND s.section_name = $4 AND s.roll = $5 ORDER BY u.id`)).
		WithArgs(domain.RoleStudent, `%ja\_ne%`, "5", "A", 12).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "class", "section", "roll", "active"}).
			AddRow(int64(42), "Ja_ne", "jane@school.test", "5", "A", 12, true))

	got, err := s.List(context.Background(), domain.StudentFilter{
		Name: " ja_ne ", Class: "5", Section: "A", Roll: &roll,
	})
	require.NoError(t, err)
	assert.Equal(t, []domain.StudentSummary{{
		ID: 42, Name: "Ja_ne", Email: "jane@school.test", Class: "5", Section: "A", Roll: 12, SystemAccess: true,
	}}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStudentStore_List_NoFilterEmpty(t *testing.T) {
	s, mock := newStudentStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE r.name = $1 ORDER BY u.id")).
		WithArgs(domain.RoleStudent).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "class", "section", "roll", "active"}))

	got, err := s.List(context.Background(), domain.StudentFilter{})
	require.NoError(t, err)
	assert.Empty(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStudentStore_GetDetail(t *testing.T) {
	s, mock := newStudentStore(t)
	dob := time.Date(2012, 5, 14, 0, 0, 0, 0, time.UTC)
	admitted := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	reviewed := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	cols := make([]string, 24)
	for i := range cols {
		cols[i] = "c" + string(rune('a'+i))
	}
	mock.ExpectQuery(regexp.QuoteMeta("WHERE u.id = $1 AND r.name = $2")).
		WithArgs(int64(42), domain.RoleStudent).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			int64(42), "Jane Doe", "jane@school.test", false, true, admitted,
			reviewed, int64(1),
			"Female", "5551234567", dob,
			"1 Main St", "2 Side St",
			"John Doe", "",
			"5", "A", 12, admitted,
			"", "",
			"John Doe", "5557654321",
			"Father",
		))

	st, err := s.GetDetail(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", st.Name)
	require.NotNil(t, st.SystemAccess)
	assert.False(t, st.HasSystemAccess())
	assert.True(t, st.IsEmailVerified)
	assert.Equal(t, dob, st.DOB)
	assert.Equal(t, 12, st.Roll)
	require.NotNil(t, st.ReviewerID)
	assert.Equal(t, int64(1), *st.ReviewerID)
	require.NotNil(t, st.ReviewedAt)
	assert.Equal(t, reviewed, *st.ReviewedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStudentStore_GetDetail_NotFound(t *testing.T) {
	s, mock := newStudentStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE u.id = $1 AND r.name = $2")).
		WithArgs(int64(7), domain.RoleStudent).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.GetDetail(context.Background(), 7)
	assert.ErrorIs(t, err, store.ErrStudentNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStudentStore_Exists(t *testing.T) {
	s, mock := newStudentStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs(int64(42), domain.RoleStudent).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := s.Exists(context.Background(), 42)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStudentStore_SetStatus(t *testing.T) {
	t.Run("updates and reports affected rows", func(t *testing.T) {
		s, mock := newStudentStore(t)
		mock.ExpectExec(regexp.QuoteMeta("status_last_reviewer_id = $2")).
			WithArgs(false, int64(1), int64(42), domain.RoleStudent).
			WillReturnResult(sqlmock.NewResult(0, 1))

		n, err := s.SetStatus(context.Background(), store.StatusChange{UserID: 42, ReviewerID: 1, Active: false})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("zero rows", func(t *testing.T) {
		s, mock := newStudentStore(t)
		mock.ExpectExec(regexp.QuoteMeta("UPDATE users")).
			WillReturnResult(sqlmock.NewResult(0, 0))

		n, err := s.SetStatus(context.Background(), store.StatusChange{UserID: 9, ReviewerID: 1, Active: true})
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("unknown reviewer", func(t *testing.T) {
		s, mock := newStudentStore(t)
		mock.ExpectExec(regexp.QuoteMeta("UPDATE users")).
			WillReturnError(pgError("23503", "users_status_last_reviewer_id_fkey"))

		_, err := s.SetStatus(context.Background(), store.StatusChange{UserID: 9, ReviewerID: 77, Active: true})
		assert.True(t, errors.Is(err, store.ErrInvalidEntity))
	})
}

func TestPostgresStudentStore_AddOrUpdate_TransactionFailure(t *testing.T) {
	s, mock := newStudentStore(t)

	mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

	res, err := s.AddOrUpdate(context.Background(), sampleStudent())
	assert.ErrorIs(t, err, store.ErrTransactionFailed)
	assert.Equal(t, store.UpsertResult{}, res)
	require.NoError(t, mock.ExpectationsWereMet())
}
