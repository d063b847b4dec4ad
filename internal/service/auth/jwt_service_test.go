package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/schoolmgmt/school-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAuthConfig = config.AuthConfig{
	JWTSecret:                        "test-secret-that-is-long-enough-for-testing",
	TokenLifetimeMinutes:             60,
	VerificationTokenLifetimeMinutes: 1440,
}

func newTestService(t *testing.T, now time.Time) JWTService {
	t.Helper()
	svc, err := NewJWTServiceWithClock(testAuthConfig, func() time.Time { return now })
	require.NoError(t, err)
	return svc
}

func TestNewJWTService_RejectsShortSecret(t *testing.T) {
	t.Parallel()
	cfg := testAuthConfig
	cfg.JWTSecret = "short"
	_, err := NewJWTService(cfg)
	assert.Error(t, err)
}

func TestGenerateAndValidateToken(t *testing.T) {
	t.Parallel()
	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(t, fixedTime)

	token, err := svc.GenerateToken(context.Background(), 42, "Teacher")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "Teacher", claims.Role)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, fixedTime.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)
}

func TestValidateToken_Errors(t *testing.T) {
	t.Parallel()
	issued := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	token, err := newTestService(t, issued).GenerateToken(ctx, 1, "Admin")
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		_, err := newTestService(t, issued.Add(2*time.Hour)).ValidateToken(ctx, token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("within clock skew", func(t *testing.T) {
		_, err := newTestService(t, issued.Add(61*time.Minute)).ValidateToken(ctx, token)
		assert.NoError(t, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		cfg := testAuthConfig
		cfg.JWTSecret = "wrong-secret-that-is-long-enough-for-testing"
		other, err := NewJWTServiceWithClock(cfg, func() time.Time { return issued })
		require.NoError(t, err)
		_, err = other.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := newTestService(t, issued).ValidateToken(ctx, "not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("none algorithm", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"uid": 1, "type": "access"})
		s, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = newTestService(t, issued).ValidateToken(ctx, s)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestVerificationToken(t *testing.T) {
	t.Parallel()
	issued := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()
	svc := newTestService(t, issued)

	token, err := svc.GenerateVerificationToken(ctx, 7, "a@x.com")
	require.NoError(t, err)

	claims, err := svc.ValidateVerificationToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, issued.Add(24*time.Hour).Unix(), claims.ExpiresAt.Unix())

	_, err = svc.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, ErrWrongTokenType, "verification links must not authenticate")

	access, err := svc.GenerateToken(ctx, 7, "Student")
	require.NoError(t, err)
	_, err = svc.ValidateVerificationToken(ctx, access)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}
