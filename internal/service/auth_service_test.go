package service_test

import (
	"context"
	"testing"

	"github.com/schoolmgmt/school-api/internal/domain"
	"github.com/schoolmgmt/school-api/internal/mocks"
	"github.com/schoolmgmt/school-api/internal/service"
	"github.com/schoolmgmt/school-api/internal/service/auth"
	"github.com/schoolmgmt/school-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T, users *mocks.MockUserStore, tokens *mocks.MockJWTService) *service.AuthService {
	t.Helper()
	svc, err := service.NewAuthService(users, &mocks.MockPasswordHasher{}, tokens, discardLogger())
	require.NoError(t, err)
	return svc
}

func teacher() *domain.User {
	return &domain.User{
		ID:              5,
		Email:           "teacher@school.test",
		Password:        "hashed:secret1",
		RoleName:        domain.RoleTeacher,
		IsActive:        true,
		IsEmailVerified: true,
	}
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("issues token", func(t *testing.T) {
		users := &mocks.MockUserStore{
			GetByEmailFn: func(ctx context.Context, email string) (*domain.User, error) { return teacher(), nil },
		}
		var gotRole string
		tokens := &mocks.MockJWTService{
			GenerateTokenFn: func(ctx context.Context, id int64, role string) (string, error) {
				gotRole = role
				return "access-token", nil
			},
		}

		res, err := newAuthService(t, users, tokens).Login(ctx, "teacher@school.test", "secret1")
		require.NoError(t, err)
		assert.Equal(t, "access-token", res.Token)
		assert.Equal(t, domain.RoleTeacher, gotRole)
	})

	t.Run("unknown email and wrong password look the same", func(t *testing.T) {
		unknown := &mocks.MockUserStore{}
		known := &mocks.MockUserStore{
			GetByEmailFn: func(ctx context.Context, email string) (*domain.User, error) { return teacher(), nil },
		}

		_, errUnknown := newAuthService(t, unknown, &mocks.MockJWTService{}).Login(ctx, "x@school.test", "secret1")
		_, errWrong := newAuthService(t, known, &mocks.MockJWTService{}).Login(ctx, "teacher@school.test", "nope123")

		assert.ErrorIs(t, errUnknown, service.ErrInvalidCredentials)
		assert.ErrorIs(t, errWrong, service.ErrInvalidCredentials)
		assert.Equal(t, errUnknown.Error(), errWrong.Error())
	})

	t.Run("unverified account", func(t *testing.T) {
		u := teacher()
		u.IsEmailVerified = false
		users := &mocks.MockUserStore{
			GetByEmailFn: func(ctx context.Context, email string) (*domain.User, error) { return u, nil },
		}

		_, err := newAuthService(t, users, &mocks.MockJWTService{}).Login(ctx, u.Email, "secret1")
		assert.ErrorIs(t, err, service.ErrAccountInactive)
	})
}

func TestAuthService_VerifyEmail(t *testing.T) {
	ctx := context.Background()

	claims := &auth.Claims{UserID: 5, Email: "Teacher@School.test", TokenType: auth.TokenTypeVerifyEmail}

	t.Run("marks verified", func(t *testing.T) {
		u := teacher()
		u.IsEmailVerified = false
		users := &mocks.MockUserStore{
			GetByIDFn: func(ctx context.Context, id int64) (*domain.User, error) { return u, nil },
		}

		err := newAuthService(t, users, &mocks.MockJWTService{Claims: claims}).VerifyEmail(ctx, "tok")
		require.NoError(t, err)
		assert.Equal(t, []int64{5}, users.Verified)
	})

	t.Run("already verified is a no-op", func(t *testing.T) {
		users := &mocks.MockUserStore{
			GetByIDFn: func(ctx context.Context, id int64) (*domain.User, error) { return teacher(), nil },
		}

		require.NoError(t, newAuthService(t, users, &mocks.MockJWTService{Claims: claims}).VerifyEmail(ctx, "tok"))
		assert.Empty(t, users.Verified)
	})

	t.Run("token for a changed address", func(t *testing.T) {
		u := teacher()
		u.Email = "new@school.test"
		users := &mocks.MockUserStore{
			GetByIDFn: func(ctx context.Context, id int64) (*domain.User, error) { return u, nil },
		}

		err := newAuthService(t, users, &mocks.MockJWTService{Claims: claims}).VerifyEmail(ctx, "tok")
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("unknown user", func(t *testing.T) {
		users := &mocks.MockUserStore{
			GetByIDFn: func(ctx context.Context, id int64) (*domain.User, error) { return nil, store.ErrUserNotFound },
		}
		err := newAuthService(t, users, &mocks.MockJWTService{Claims: claims}).VerifyEmail(ctx, "tok")
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		err := newAuthService(t, &mocks.MockUserStore{},
			&mocks.MockJWTService{ValidateErr: auth.ErrExpiredToken}).VerifyEmail(ctx, "tok")
		assert.ErrorIs(t, err, auth.ErrExpiredToken)
	})
}
