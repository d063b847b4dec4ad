package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/schoolmgmt/school-api/internal/domain"
	"github.com/schoolmgmt/school-api/internal/platform/logger"
	"github.com/schoolmgmt/school-api/internal/service/auth"
	"github.com/schoolmgmt/school-api/internal/store"
)

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token string
	User  *domain.User
}

// AuthService authenticates users and completes email verification.
type AuthService struct {
	users  store.UserStore
	hasher auth.PasswordHasher
	tokens auth.JWTService
	logger *slog.Logger
}

// NewAuthService creates an AuthService.
func NewAuthService(
	users store.UserStore,
	hasher auth.PasswordHasher,
	tokens auth.JWTService,
	logger *slog.Logger,
) (*AuthService, error) {
	switch {
	case users == nil:
		return nil, errors.New("user store cannot be nil")
	case hasher == nil:
		return nil, errors.New("password hasher cannot be nil")
	case tokens == nil:
		return nil, errors.New("jwt service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		logger: logger.With(slog.String("component", "auth_service")),
	}, nil
}

// Login checks the credentials and issues an access token. Unknown emails
// and wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, NewServiceError("login", "Unable to log in", err)
	}

	if !s.hasher.Verify(user.Password, password) {
		log.Debug("password mismatch", slog.Int64("user_id", user.ID))
		return LoginResult{}, ErrInvalidCredentials
	}
	if !user.CanLogin() {
		return LoginResult{}, ErrAccountInactive
	}

	token, err := s.tokens.GenerateToken(ctx, user.ID, user.RoleName)
	if err != nil {
		return LoginResult{}, NewServiceError("login", "Unable to log in", err)
	}

	log.Info("user logged in", slog.Int64("user_id", user.ID), slog.String("role", user.RoleName))
	return LoginResult{Token: token, User: user}, nil
}

// VerifyEmail completes the verification link flow. Verifying an already
// verified account succeeds.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	claims, err := s.tokens.ValidateVerificationToken(ctx, token)
	if err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return auth.ErrInvalidToken
		}
		return NewServiceError("verify_email", "Unable to verify email", err)
	}

	// The link only verifies the address it was sent to.
	if domain.NormalizeEmail(claims.Email) != domain.NormalizeEmail(user.Email) {
		return auth.ErrInvalidToken
	}
	if user.IsEmailVerified {
		return nil
	}

	if err := s.users.MarkEmailVerified(ctx, user.ID); err != nil {
		return NewServiceError("verify_email", "Unable to verify email", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("email verified", slog.Int64("user_id", user.ID))
	return nil
}
