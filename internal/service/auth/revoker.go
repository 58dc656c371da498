package auth

import (
	"context"
	"time"
)

// Revoker records session tokens ended by logout until they would have
// expired anyway.
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// NoopRevoker is used when no revocation store is configured. Logout then
// only clears the client's cookie and tokens stay valid until they expire.
type NoopRevoker struct{}

// Revoke implements Revoker.
func (NoopRevoker) Revoke(context.Context, string, time.Time) error { return nil }

// IsRevoked implements Revoker.
func (NoopRevoker) IsRevoked(context.Context, string) (bool, error) { return false, nil }
