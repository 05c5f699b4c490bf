package memory

import (
	"context"
	"sync"
	"time"

	"github.com/mahavirtraders/flowtrack/internal/domain/repository"
)

// TokenBlocklist remembers revoked token IDs until their expiry.
type TokenBlocklist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

// NewTokenBlocklist creates an in-process blocklist.
func NewTokenBlocklist() *TokenBlocklist {
	return &TokenBlocklist{
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

var _ repository.TokenBlocklist = (*TokenBlocklist)(nil)

func (b *TokenBlocklist) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	for id, exp := range b.revoked {
		if now.After(exp) {
			delete(b.revoked, id)
		}
	}
	b.revoked[tokenID] = now.Add(ttl)
	return nil
}

func (b *TokenBlocklist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	exp, ok := b.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if b.now().After(exp) {
		delete(b.revoked, tokenID)
		return false, nil
	}
	return true, nil
}
