package auth

import (
	"context"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

// RevocationRegistry tracks tokens invalidated before their natural expiry.
// Once revoked, a token must be rejected by every authenticated entry point.
type RevocationRegistry interface {
	// Revoke marks token as revoked. Repeated calls are no-ops.
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
	// IsRevoked reports whether token was revoked.
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// MemoryRevocations is a process-local RevocationRegistry. Entries are
// kept for the life of the process.
type MemoryRevocations struct {
	tokens *xsync.MapOf[string, time.Time]
}

// NewMemoryRevocations returns an empty in-memory registry.
func NewMemoryRevocations() *MemoryRevocations {
	return &MemoryRevocations{
		tokens: xsync.NewMapOf[string, time.Time](),
	}
}

// Revoke implements RevocationRegistry.
func (m *MemoryRevocations) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.tokens.LoadOrStore(token, expiresAt)
	return nil
}

// IsRevoked implements RevocationRegistry.
func (m *MemoryRevocations) IsRevoked(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	_, ok := m.tokens.Load(token)
	return ok, nil
}

// Len returns the number of revoked tokens.
func (m *MemoryRevocations) Len() int {
	return m.tokens.Size()
}

var _ RevocationRegistry = (*MemoryRevocations)(nil)
