package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/schoolmgmt/school-api/internal/domain"
	"github.com/schoolmgmt/school-api/internal/platform/logger"
	"github.com/schoolmgmt/school-api/internal/store"
)

const selectUser = `
	SELECT u.id, u.name, u.email, COALESCE(u.password, ''), u.role_id, r.name,
	       u.is_active, u.is_email_verified, u.created_dt
	FROM users u
	JOIN roles r ON r.id = u.role_id
`

// PostgresUserStore implements store.UserStore.
type PostgresUserStore struct {
	db     store.DBTX
	conn   *sql.DB
	logger *slog.Logger
}

// NewPostgresUserStore creates a user store on db. If logger is nil the
// default logger is used.
func NewPostgresUserStore(db *sql.DB, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresUserStore{
		db:     db,
		conn:   db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

var _ store.UserStore = (*PostgresUserStore)(nil)

// WithTx implements store.UserStore.WithTx.
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &PostgresUserStore{db: tx, logger: s.logger}
}

// GetByID implements store.UserStore.GetByID.
func (s *PostgresUserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.getOne(ctx, selectUser+`WHERE u.id = $1`, id)
}

// GetByEmail implements store.UserStore.GetByEmail.
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getOne(ctx, selectUser+`WHERE lower(u.email) = lower($1)`, domain.NormalizeEmail(email))
}

func (s *PostgresUserStore) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var u domain.User
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Password,
		&u.RoleID,
		&u.RoleName,
		&u.IsActive,
		&u.IsEmailVerified,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to load user",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return &u, nil
}

// EmailExists implements store.UserStore.EmailExists.
func (s *PostgresUserStore) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE lower(email) = lower($1))`,
		domain.NormalizeEmail(email),
	).Scan(&exists)
	if err != nil {
		return false, MapError(err)
	}
	return exists, nil
}

// RoleIDByName implements store.UserStore.RoleIDByName.
func (s *PostgresUserStore) RoleIDByName(ctx context.Context, name string) (int64, error) {
	return roleID(ctx, s.db, name)
}

// CreateWithProfile implements store.UserStore.CreateWithProfile.
func (s *PostgresUserStore) CreateWithProfile(
	ctx context.Context,
	user *domain.User,
	profile domain.UserProfile,
) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var id int64
	err := withTx(ctx, s.db, s.conn, func(db store.DBTX) error {
		err := db.QueryRowContext(ctx, `
			INSERT INTO users (name, email, password, role_id, is_active, is_email_verified)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
			user.Name,
			domain.NormalizeEmail(user.Email),
			nullString(user.Password),
			user.RoleID,
			user.IsActive,
			user.IsEmailVerified,
		).Scan(&id)
		if err != nil {
			return MapError(err)
		}

		_, err = db.ExecContext(ctx, `
			INSERT INTO user_profiles (
				user_id, gender, marital_status, phone, dob, join_dt, qualification,
				experience, current_address, permanent_address, father_name,
				mother_name, emergency_phone
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			id,
			profile.Gender,
			profile.MaritalStatus,
			profile.Phone,
			profile.DOB,
			profile.JoinDate,
			profile.Qualification,
			profile.Experience,
			profile.CurrentAddress,
			profile.PermanentAddress,
			profile.FatherName,
			profile.MotherName,
			profile.EmergencyPhone,
		)
		return MapError(err)
	})
	if err != nil {
		log.Warn("failed to create user", slog.String("error", err.Error()))
		return 0, err
	}

	log.Info("user created", slog.Int64("user_id", id), slog.Int64("role_id", user.RoleID))
	return id, nil
}

// MarkEmailVerified implements store.UserStore.MarkEmailVerified.
func (s *PostgresUserStore) MarkEmailVerified(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET is_email_verified = TRUE, updated_dt = NOW() WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}
	return rowsAffected(result, store.ErrUserNotFound)
}

// nullString stores empty strings as NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// nullBool stores an absent flag as NULL.
func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}
