package mocks

import (
	"context"

	"github.com/schoolmgmt/school-api/internal/service/auth"
)

// MockJWTService implements auth.JWTService for testing.
type MockJWTService struct {
	GenerateTokenFn             func(ctx context.Context, userID int64, role string) (string, error)
	ValidateTokenFn             func(ctx context.Context, tokenString string) (*auth.Claims, error)
	GenerateVerificationTokenFn func(ctx context.Context, userID int64, email string) (string, error)
	ValidateVerificationTokenFn func(ctx context.Context, tokenString string) (*auth.Claims, error)

	// Defaults used when the matching Fn is nil.
	Token       string
	Err         error
	Claims      *auth.Claims
	ValidateErr error
}

var _ auth.JWTService = (*MockJWTService)(nil)

// GenerateToken implements auth.JWTService.
func (m *MockJWTService) GenerateToken(ctx context.Context, userID int64, role string) (string, error) {
	if m.GenerateTokenFn != nil {
		return m.GenerateTokenFn(ctx, userID, role)
	}
	return m.Token, m.Err
}

// ValidateToken implements auth.JWTService.
func (m *MockJWTService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, tokenString)
	}
	return m.Claims, m.ValidateErr
}

// GenerateVerificationToken implements auth.JWTService.
func (m *MockJWTService) GenerateVerificationToken(ctx context.Context, userID int64, email string) (string, error) {
	if m.GenerateVerificationTokenFn != nil {
		return m.GenerateVerificationTokenFn(ctx, userID, email)
	}
	return m.Token, m.Err
}

// ValidateVerificationToken implements auth.JWTService.
func (m *MockJWTService) ValidateVerificationToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if m.ValidateVerificationTokenFn != nil {
		return m.ValidateVerificationTokenFn(ctx, tokenString)
	}
	return m.Claims, m.ValidateErr
}

// MockPasswordHasher implements auth.PasswordHasher for testing. By default
// Hash prefixes the password with "hashed:" and Verify checks that form.
type MockPasswordHasher struct {
	HashFn   func(password string) (string, error)
	VerifyFn func(digest, password string) bool

	VerifyCallCount int
}

var _ auth.PasswordHasher = (*MockPasswordHasher)(nil)

// Hash implements auth.PasswordHasher.
func (m *MockPasswordHasher) Hash(password string) (string, error) {
	if m.HashFn != nil {
		return m.HashFn(password)
	}
	return "hashed:" + password, nil
}

// Verify implements auth.PasswordHasher.
func (m *MockPasswordHasher) Verify(digest, password string) bool {
	m.VerifyCallCount++
	if m.VerifyFn != nil {
		return m.VerifyFn(digest, password)
	}
	return digest == "hashed:"+password
}
