package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/phrazzld/task-manager-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret  = "test-secret-that-is-long-enough-for-testing"
	wrongSecret = "wrong-secret-that-is-long-enough-for-testing"
)

func newTestJWTService(t *testing.T, secret string, lifetime time.Duration, now func() time.Time) *hmacJWTService {
	t.Helper()
	svc, err := newHMACJWTService(secret, lifetime, now)
	require.NoError(t, err)
	return svc
}

func TestNewJWTService(t *testing.T) {
	t.Parallel()

	_, err := NewJWTService(config.AuthConfig{JWTSecret: "short", TokenLifetimeMinutes: 10})
	assert.Error(t, err)

	_, err = NewJWTService(config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 0})
	assert.Error(t, err)

	svc, err := NewJWTService(config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 10})
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	lifetime := 60 * time.Minute
	svc := newTestJWTService(t, testSecret, lifetime, func() time.Time { return fixedTime })

	token, err := svc.GenerateToken(context.Background(), 42)
	require.NoError(t, err)
	require.NotEmpty(t, token.Value)
	assert.NotEmpty(t, token.ID)
	assert.Equal(t, fixedTime.Add(lifetime), token.ExpiresAt)

	claims, err := svc.ValidateToken(context.Background(), token.Value)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, token.ID, claims.ID)
	assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, fixedTime.Add(lifetime).Unix(), claims.ExpiresAt.Unix())

	other, err := svc.GenerateToken(context.Background(), 42)
	require.NoError(t, err)
	assert.NotEqual(t, token.ID, other.ID, "every token gets its own id")
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	lifetime := 60 * time.Minute
	at := func(ts time.Time) func() time.Time { return func() time.Time { return ts } }

	issue := func(t *testing.T, secret string, userID int64) string {
		t.Helper()
		token, err := newTestJWTService(t, secret, lifetime, at(fixedTime)).GenerateToken(context.Background(), userID)
		require.NoError(t, err)
		return token.Value
	}

	tests := []struct {
		name    string
		token   func(t *testing.T) string
		now     time.Time
		secret  string
		wantErr error
	}{
		{
			name:   "valid token",
			token:  func(t *testing.T) string { return issue(t, testSecret, 7) },
			now:    fixedTime,
			secret: testSecret,
		},
		{
			name:   "within clock skew after expiry",
			token:  func(t *testing.T) string { return issue(t, testSecret, 7) },
			now:    fixedTime.Add(lifetime + time.Minute),
			secret: testSecret,
		},
		{
			name:    "expired token",
			token:   func(t *testing.T) string { return issue(t, testSecret, 7) },
			now:     fixedTime.Add(lifetime + time.Hour),
			secret:  testSecret,
			wantErr: ErrExpiredToken,
		},
		{
			name:    "invalid signature",
			token:   func(t *testing.T) string { return issue(t, testSecret, 7) },
			now:     fixedTime,
			secret:  wrongSecret,
			wantErr: ErrInvalidToken,
		},
		{
			name:    "malformed token",
			token:   func(*testing.T) string { return "this.is.not.a.valid.jwt.token" },
			now:     fixedTime,
			secret:  testSecret,
			wantErr: ErrInvalidToken,
		},
		{
			name: "unsigned token",
			token: func(t *testing.T) string {
				raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwtCustomClaims{
					UserID: 7,
					RegisteredClaims: jwt.RegisteredClaims{
						ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
					},
				}).SignedString(jwt.UnsafeAllowNoneSignatureType)
				require.NoError(t, err)
				return raw
			},
			now:     fixedTime,
			secret:  testSecret,
			wantErr: ErrInvalidToken,
		},
		{
			name:    "token without user",
			token:   func(t *testing.T) string { return issue(t, testSecret, 0) },
			now:     fixedTime,
			secret:  testSecret,
			wantErr: ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := newTestJWTService(t, tt.secret, lifetime, at(tt.now))

			claims, err := svc.ValidateToken(context.Background(), tt.token(t))

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(7), claims.UserID)
		})
	}
}

func TestValidateToken_ValidUntilCoversLeeway(t *testing.T) {
	t.Parallel()

	issuedAt := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	lifetime := 15 * time.Minute

	token, err := newTestJWTService(t, testSecret, lifetime, func() time.Time { return issuedAt }).
		GenerateToken(context.Background(), 7)
	require.NoError(t, err)

	// 90 seconds past exp the token is still accepted
	late := token.ExpiresAt.Add(90 * time.Second)
	svc := newTestJWTService(t, testSecret, lifetime, func() time.Time { return late })

	claims, err := svc.ValidateToken(context.Background(), token.Value)
	require.NoError(t, err)
	assert.WithinDuration(t, token.ExpiresAt, claims.ExpiresAt, 0)
	assert.True(t, claims.ValidUntil.After(late), "a revocation ending at ValidUntil must outlive every accepted use")
	assert.WithinDuration(t, token.ExpiresAt.Add(svc.clockSkew), claims.ValidUntil, 0)

	_, err = newTestJWTService(t, testSecret, lifetime, func() time.Time { return claims.ValidUntil.Add(time.Second) }).
		ValidateToken(context.Background(), token.Value)
	assert.ErrorIs(t, err, ErrExpiredToken)
}
