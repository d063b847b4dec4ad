package mocks

import (
	"context"
	"database/sql"

	"github.com/schoolmgmt/school-api/internal/domain"
	"github.com/schoolmgmt/school-api/internal/store"
	"github.com/stretchr/testify/mock"
)

// MockStudentStore is a testify mock of store.StudentStore.
type MockStudentStore struct {
	mock.Mock
}

var _ store.StudentStore = (*MockStudentStore)(nil)

// List is a mock implementation of store.StudentStore.List.
func (m *MockStudentStore) List(ctx context.Context, filter domain.StudentFilter) ([]domain.StudentSummary, error) {
	args := m.Called(ctx, filter)
	if students, ok := args.Get(0).([]domain.StudentSummary); ok {
		return students, args.Error(1)
	}
	return nil, args.Error(1)
}

// GetDetail is a mock implementation of store.StudentStore.GetDetail.
func (m *MockStudentStore) GetDetail(ctx context.Context, id int64) (*domain.Student, error) {
	args := m.Called(ctx, id)
	if st, ok := args.Get(0).(*domain.Student); ok {
		return st, args.Error(1)
	}
	return nil, args.Error(1)
}

// Exists is a mock implementation of store.StudentStore.Exists.
func (m *MockStudentStore) Exists(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// AddOrUpdate is a mock implementation of store.StudentStore.AddOrUpdate.
func (m *MockStudentStore) AddOrUpdate(ctx context.Context, s *domain.Student) (store.UpsertResult, error) {
	args := m.Called(ctx, s)
	return args.Get(0).(store.UpsertResult), args.Error(1)
}

// SetStatus is a mock implementation of store.StudentStore.SetStatus.
func (m *MockStudentStore) SetStatus(ctx context.Context, change store.StatusChange) (int64, error) {
	args := m.Called(ctx, change)
	return args.Get(0).(int64), args.Error(1)
}

// WithTx is a mock implementation of store.StudentStore.WithTx.
func (m *MockStudentStore) WithTx(tx *sql.Tx) store.StudentStore {
	return m
}
