package auth

import (
	"context"
	"time"
)

// Token types carried in the "type" claim.
const (
	TokenTypeAccess      = "access"
	TokenTypeVerifyEmail = "verify_email"
)

// JWTService defines operations for managing JWT tokens.
type JWTService interface {
	// GenerateToken creates a signed access token for the user and role.
	GenerateToken(ctx context.Context, userID int64, role string) (string, error)

	// ValidateToken validates an access token and extracts its claims.
	// Tokens of any other type are rejected with ErrWrongTokenType.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)

	// GenerateVerificationToken creates a signed token embedded in the
	// account verification link sent by email.
	GenerateVerificationToken(ctx context.Context, userID int64, email string) (string, error)

	// ValidateVerificationToken validates a token taken from a verification link.
	ValidateVerificationToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the application view of a validated token.
type Claims struct {
	UserID    int64
	Role      string
	Email     string
	TokenType string
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}
