package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/schoolmgmt/school-api/internal/domain"
	"github.com/schoolmgmt/school-api/internal/platform/logger"
	"github.com/schoolmgmt/school-api/internal/store"
)

// Messages returned in store.UpsertResult.
const (
	MsgStudentAdded   = "Student added successfully"
	MsgStudentUpdated = "Student updated successfully"
)

// PostgresStudentStore implements store.StudentStore over the users,
// user_profiles and students tables.
type PostgresStudentStore struct {
	db     store.DBTX
	conn   *sql.DB
	logger *slog.Logger
}

// NewPostgresStudentStore creates a student store on db. If logger is nil
// the default logger is used.
func NewPostgresStudentStore(db *sql.DB, logger *slog.Logger) *PostgresStudentStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresStudentStore{
		db:     db,
		conn:   db,
		logger: logger.With(slog.String("component", "student_store")),
	}
}

var _ store.StudentStore = (*PostgresStudentStore)(nil)

// WithTx implements store.StudentStore.WithTx.
func (s *PostgresStudentStore) WithTx(tx *sql.Tx) store.StudentStore {
	return &PostgresStudentStore{db: tx, logger: s.logger}
}

// List implements store.StudentStore.List.
func (s *PostgresStudentStore) List(
	ctx context.Context,
	filter domain.StudentFilter,
) ([]domain.StudentSummary, error) {
	query, args := buildListQuery(filter)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list students",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	students := []domain.StudentSummary{}
	for rows.Next() {
		var st domain.StudentSummary
		if err := rows.Scan(
			&st.ID,
			&st.Name,
			&st.Email,
			&st.Class,
			&st.Section,
			&st.Roll,
			&st.SystemAccess,
		); err != nil {
			return nil, fmt.Errorf("failed to scan student row: %w", err)
		}
		students = append(students, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating student rows: %w", err)
	}

	return students, nil
}

func buildListQuery(filter domain.StudentFilter) (string, []any) {
	var b strings.Builder
	b.WriteString(`
		SELECT u.id, u.name, u.email, s.class_name, COALESCE(s.section_name, ''), s.roll, u.is_active
		FROM users u
		JOIN roles r ON r.id = u.role_id
		JOIN students s ON s.user_id = u.id
		WHERE r.name = $1`)
	args := []any{domain.RoleStudent}

	add := func(cond string, v any) {
		args = append(args, v)
		fmt.Fprintf(&b, " AND "+cond, len(args))
	}
	if name := strings.TrimSpace(filter.Name); name != "" {
		add(`u.name ILIKE $%d ESCAPE '\'`, "%"+escapeLike(name)+"%")
	}
	if filter.Class != "" {
		add("s.class_name = $%d", filter.Class)
	}
	if filter.Section != "" {
		add("s.section_name = $%d", filter.Section)
	}
	if filter.Roll != nil {
		add("s.roll = $%d", *filter.Roll)
	}
	b.WriteString(" ORDER BY u.id")

	return b.String(), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// GetDetail implements store.StudentStore.GetDetail.
func (s *PostgresStudentStore) GetDetail(ctx context.Context, id int64) (*domain.Student, error) {
	var (
		st         domain.Student
		active     bool
		dob        sql.NullTime
		reviewedAt sql.NullTime
		reviewerID sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT u.id, u.name, u.email, u.is_active, u.is_email_verified, u.created_dt,
		       u.status_last_reviewed_dt, u.status_last_reviewer_id,
		       COALESCE(p.gender, ''), COALESCE(p.phone, ''), p.dob,
		       COALESCE(p.current_address, ''), COALESCE(p.permanent_address, ''),
		       COALESCE(p.father_name, ''), COALESCE(p.mother_name, ''),
		       s.class_name, COALESCE(s.section_name, ''), s.roll, s.admission_dt,
		       COALESCE(s.father_phone, ''), COALESCE(s.mother_phone, ''),
		       COALESCE(s.guardian_name, ''), COALESCE(s.guardian_phone, ''),
		       COALESCE(s.relation_of_guardian, '')
		FROM users u
		JOIN roles r ON r.id = u.role_id
		JOIN user_profiles p ON p.user_id = u.id
		JOIN students s ON s.user_id = u.id
		WHERE u.id = $1 AND r.name = $2`,
		id, domain.RoleStudent,
	).Scan(
		&st.ID, &st.Name, &st.Email, &active, &st.IsEmailVerified, &st.CreatedAt,
		&reviewedAt, &reviewerID,
		&st.Gender, &st.Phone, &dob,
		&st.CurrentAddress, &st.PermanentAddress,
		&st.FatherName, &st.MotherName,
		&st.Class, &st.Section, &st.Roll, &st.AdmissionDate,
		&st.FatherPhone, &st.MotherPhone,
		&st.GuardianName, &st.GuardianPhone,
		&st.RelationOfGuardian,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrStudentNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to load student",
			slog.Int64("student_id", id),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	st.SystemAccess = &active
	if dob.Valid {
		st.DOB = dob.Time
	}
	if reviewedAt.Valid {
		st.ReviewedAt = &reviewedAt.Time
	}
	if reviewerID.Valid {
		st.ReviewerID = &reviewerID.Int64
	}
	return &st, nil
}

// Exists implements store.StudentStore.Exists.
func (s *PostgresStudentStore) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM users u JOIN roles r ON r.id = u.role_id
			WHERE u.id = $1 AND r.name = $2
		)`, id, domain.RoleStudent).Scan(&exists)
	if err != nil {
		return false, MapError(err)
	}
	return exists, nil
}

// AddOrUpdate implements store.StudentStore.AddOrUpdate.
func (s *PostgresStudentStore) AddOrUpdate(ctx context.Context, st *domain.Student) (store.UpsertResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	st.Normalize()

	var result store.UpsertResult
	err := withTx(ctx, s.db, s.conn, func(db store.DBTX) error {
		if st.IsNew() {
			id, err := insertStudentUser(ctx, db, st)
			if err != nil {
				return err
			}
			result = store.UpsertResult{Created: true, UserID: id, Message: MsgStudentAdded}
		} else {
			if err := updateStudentUser(ctx, db, st); err != nil {
				return err
			}
			result = store.UpsertResult{UserID: st.ID, Message: MsgStudentUpdated}
		}

		if err := upsertStudentProfile(ctx, db, result.UserID, st); err != nil {
			return err
		}
		return upsertStudentRecord(ctx, db, result.UserID, st)
	})
	if err != nil {
		log.Warn("student upsert rolled back",
			slog.Int64("student_id", st.ID),
			slog.String("error", err.Error()))
		return store.UpsertResult{}, err
	}

	log.Info("student saved",
		slog.Int64("student_id", result.UserID),
		slog.Bool("created", result.Created))
	return result, nil
}

func insertStudentUser(ctx context.Context, db store.DBTX, st *domain.Student) (int64, error) {
	role, err := roleID(ctx, db, domain.RoleStudent)
	if err != nil {
		return 0, err
	}

	var id int64
	err = db.QueryRowContext(ctx, `
		INSERT INTO users (name, email, role_id, is_active, is_email_verified)
		VALUES ($1, $2, $3, $4, FALSE)
		RETURNING id`,
		st.Name, st.Email, role, st.HasSystemAccess(),
	).Scan(&id)
	if err != nil {
		return 0, MapError(err)
	}
	return id, nil
}

func updateStudentUser(ctx context.Context, db store.DBTX, st *domain.Student) error {
	result, err := db.ExecContext(ctx, `
		UPDATE users
		SET name = $1, email = $2, is_active = COALESCE($3::boolean, is_active), updated_dt = NOW()
		WHERE id = $4 AND role_id = (SELECT id FROM roles WHERE name = $5)`,
		st.Name, st.Email, nullBool(st.SystemAccess), st.ID, domain.RoleStudent,
	)
	if err != nil {
		return MapError(err)
	}
	return rowsAffected(result, store.ErrStudentNotFound)
}

func upsertStudentProfile(ctx context.Context, db store.DBTX, userID int64, st *domain.Student) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO user_profiles (
			user_id, gender, phone, dob, join_dt, current_address,
			permanent_address, father_name, mother_name
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id) DO UPDATE SET
			gender = EXCLUDED.gender,
			phone = EXCLUDED.phone,
			dob = EXCLUDED.dob,
			join_dt = EXCLUDED.join_dt,
			current_address = EXCLUDED.current_address,
			permanent_address = EXCLUDED.permanent_address,
			father_name = EXCLUDED.father_name,
			mother_name = EXCLUDED.mother_name`,
		userID,
		st.Gender,
		st.Phone,
		st.DOB,
		st.AdmissionDate,
		st.CurrentAddress,
		st.PermanentAddress,
		st.FatherName,
		nullString(st.MotherName),
	)
	return MapError(err)
}

func upsertStudentRecord(ctx context.Context, db store.DBTX, userID int64, st *domain.Student) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO students (
			user_id, class_name, section_name, roll, admission_dt, father_phone,
			mother_phone, guardian_name, guardian_phone, relation_of_guardian
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id) DO UPDATE SET
			class_name = EXCLUDED.class_name,
			section_name = EXCLUDED.section_name,
			roll = EXCLUDED.roll,
			admission_dt = EXCLUDED.admission_dt,
			father_phone = EXCLUDED.father_phone,
			mother_phone = EXCLUDED.mother_phone,
			guardian_name = EXCLUDED.guardian_name,
			guardian_phone = EXCLUDED.guardian_phone,
			relation_of_guardian = EXCLUDED.relation_of_guardian`,
		userID,
		st.Class,
		nullString(st.Section),
		st.Roll,
		st.AdmissionDate,
		nullString(st.FatherPhone),
		nullString(st.MotherPhone),
		st.GuardianName,
		st.GuardianPhone,
		st.RelationOfGuardian,
	)
	return MapError(err)
}

// SetStatus implements store.StudentStore.SetStatus.
func (s *PostgresStudentStore) SetStatus(ctx context.Context, change store.StatusChange) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET is_active = $1,
		    status_last_reviewer_id = $2,
		    status_last_reviewed_dt = NOW(),
		    updated_dt = NOW()
		WHERE id = $3 AND role_id = (SELECT id FROM roles WHERE name = $4)`,
		change.Active, change.ReviewerID, change.UserID, domain.RoleStudent,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to change student status",
			slog.Int64("student_id", change.UserID),
			slog.String("error", err.Error()))
		return 0, MapError(err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}
