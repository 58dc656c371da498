package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/phrazzld/task-manager-api/internal/service/auth"
)

// MockRevoker implements auth.Revoker in memory. Revoked holds every
// revoked token id with its expiry.
type MockRevoker struct {
	RevokeErr    error
	IsRevokedErr error

	mu      sync.Mutex
	Revoked map[string]time.Time
}

var _ auth.Revoker = (*MockRevoker)(nil)

// NewMockRevoker creates an empty MockRevoker.
func NewMockRevoker() *MockRevoker {
	return &MockRevoker{Revoked: make(map[string]time.Time)}
}

// Revoke implements auth.Revoker.
func (m *MockRevoker) Revoke(_ context.Context, tokenID string, until time.Time) error {
	if m.RevokeErr != nil {
		return m.RevokeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Revoked == nil {
		m.Revoked = make(map[string]time.Time)
	}
	m.Revoked[tokenID] = until
	return nil
}

// IsRevoked implements auth.Revoker.
func (m *MockRevoker) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	if m.IsRevokedErr != nil {
		return false, m.IsRevokedErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Revoked[tokenID]
	return ok, nil
}
