// Package notify delivers account notifications. Delivery is best effort:
// callers treat a failure as a degraded outcome and schedule a retry rather
// than failing the write that triggered it.
package notify

import (
	"context"
	"errors"
)

// ErrDeliveryFailed wraps every error returned by a Notifier.
var ErrDeliveryFailed = errors.New("notification delivery failed")

// VerificationEmail identifies the account whose email must be verified.
type VerificationEmail struct {
	UserID    int64  `json:"user_id"`
	UserEmail string `json:"user_email"`
}

// Notifier sends account notifications.
type Notifier interface {
	SendAccountVerificationEmail(ctx context.Context, msg VerificationEmail) error
}

// TokenIssuer issues the token embedded in a verification link.
type TokenIssuer interface {
	GenerateVerificationToken(ctx context.Context, userID int64, email string) (string, error)
}
