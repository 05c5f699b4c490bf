package cache

import (
	"context"
	"time"

	"github.com/mahavirtraders/flowtrack/internal/domain/repository"
	"github.com/redis/go-redis/v9"
)

// TokenBlocklist stores revoked token IDs as keys that expire with the token.
type TokenBlocklist struct {
	client *redis.Client
}

// NewTokenBlocklist creates a Redis token blocklist.
func NewTokenBlocklist(client *redis.Client) *TokenBlocklist {
	return &TokenBlocklist{client: client}
}

var _ repository.TokenBlocklist = (*TokenBlocklist)(nil)

func (b *TokenBlocklist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return b.client.Set(ctx, revokedKeyPrefix+tokenID, 1, ttl).Err()
}

func (b *TokenBlocklist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := b.client.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
