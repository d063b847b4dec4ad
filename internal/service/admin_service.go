package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/schoolmgmt/school-api/internal/domain"
	"github.com/schoolmgmt/school-api/internal/platform/logger"
	"github.com/schoolmgmt/school-api/internal/service/auth"
	"github.com/schoolmgmt/school-api/internal/store"
)

const msgUnableToCreateAdmin = "Unable to create admin user"

// AdminAccount describes a bootstrapped administrator.
type AdminAccount struct {
	UserID int64
	Name   string
	Email  string
}

// AdminService creates administrator accounts.
type AdminService struct {
	users  store.UserStore
	hasher auth.PasswordHasher
	logger *slog.Logger
	now    func() time.Time
}

// NewAdminService creates an AdminService.
func NewAdminService(users store.UserStore, hasher auth.PasswordHasher, logger *slog.Logger) (*AdminService, error) {
	if users == nil {
		return nil, errors.New("user store cannot be nil")
	}
	if hasher == nil {
		return nil, errors.New("password hasher cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminService{
		users:  users,
		hasher: hasher,
		logger: logger.With(slog.String("component", "admin_service")),
		now:    time.Now,
	}, nil
}

// Bootstrap creates an active, email-verified administrator together with
// a minimal profile. Inputs must already be validated.
func (s *AdminService) Bootstrap(ctx context.Context, name, email, password string) (AdminAccount, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	email = domain.NormalizeEmail(email)

	taken, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return AdminAccount{}, NewServiceError("bootstrap_admin", msgUnableToCreateAdmin, err)
	}
	if taken {
		return AdminAccount{}, ErrEmailTaken
	}

	roleID, err := s.users.RoleIDByName(ctx, domain.RoleAdmin)
	if err != nil {
		if errors.Is(err, store.ErrRoleNotFound) {
			return AdminAccount{}, fmt.Errorf("%w: %s", ErrRoleMissing, domain.RoleAdmin)
		}
		return AdminAccount{}, NewServiceError("bootstrap_admin", msgUnableToCreateAdmin, err)
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return AdminAccount{}, NewServiceError("bootstrap_admin", msgUnableToCreateAdmin, err)
	}

	user := &domain.User{
		Name:            name,
		Email:           email,
		Password:        digest,
		RoleID:          roleID,
		IsActive:        true,
		IsEmailVerified: true,
	}
	id, err := s.users.CreateWithProfile(ctx, user, domain.NewAdminProfile(s.now().UTC()))
	if err != nil {
		return AdminAccount{}, NewServiceError("bootstrap_admin", msgUnableToCreateAdmin, err)
	}

	log.Info("admin user created", slog.Int64("user_id", id))
	return AdminAccount{UserID: id, Name: name, Email: email}, nil
}
