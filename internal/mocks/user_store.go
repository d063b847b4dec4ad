package mocks

import (
	"context"
	"database/sql"

	"github.com/schoolmgmt/school-api/internal/domain"
	"github.com/schoolmgmt/school-api/internal/store"
)

// MockUserStore implements store.UserStore for testing.
type MockUserStore struct {
	GetByIDFn           func(ctx context.Context, id int64) (*domain.User, error)
	GetByEmailFn        func(ctx context.Context, email string) (*domain.User, error)
	EmailExistsFn       func(ctx context.Context, email string) (bool, error)
	RoleIDByNameFn      func(ctx context.Context, name string) (int64, error)
	CreateWithProfileFn func(ctx context.Context, user *domain.User, profile domain.UserProfile) (int64, error)
	MarkEmailVerifiedFn func(ctx context.Context, id int64) error

	// Created records users passed to CreateWithProfile.
	Created []*domain.User
	// Verified records ids passed to MarkEmailVerified.
	Verified []int64
}

var _ store.UserStore = (*MockUserStore)(nil)

// GetByID implements store.UserStore.
func (m *MockUserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, store.ErrUserNotFound
}

// GetByEmail implements store.UserStore.
func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}
	return nil, store.ErrUserNotFound
}

// EmailExists implements store.UserStore.
func (m *MockUserStore) EmailExists(ctx context.Context, email string) (bool, error) {
	if m.EmailExistsFn != nil {
		return m.EmailExistsFn(ctx, email)
	}
	return false, nil
}

// RoleIDByName implements store.UserStore. It defaults to the seeded ids.
func (m *MockUserStore) RoleIDByName(ctx context.Context, name string) (int64, error) {
	if m.RoleIDByNameFn != nil {
		return m.RoleIDByNameFn(ctx, name)
	}
	switch name {
	case domain.RoleAdmin:
		return 1, nil
	case domain.RoleTeacher:
		return 2, nil
	case domain.RoleStudent:
		return 3, nil
	}
	return 0, store.ErrRoleNotFound
}

// CreateWithProfile implements store.UserStore.
func (m *MockUserStore) CreateWithProfile(
	ctx context.Context,
	user *domain.User,
	profile domain.UserProfile,
) (int64, error) {
	m.Created = append(m.Created, user)
	if m.CreateWithProfileFn != nil {
		return m.CreateWithProfileFn(ctx, user, profile)
	}
	return int64(len(m.Created)), nil
}

// MarkEmailVerified implements store.UserStore.
func (m *MockUserStore) MarkEmailVerified(ctx context.Context, id int64) error {
	m.Verified = append(m.Verified, id)
	if m.MarkEmailVerifiedFn != nil {
		return m.MarkEmailVerifiedFn(ctx, id)
	}
	return nil
}

// WithTx implements store.UserStore.
func (m *MockUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return m
}
