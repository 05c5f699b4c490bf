// Package cache provides Redis-backed session ports so several API instances
// can share carts, finalize locks, revoked tokens and change events.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/mahavirtraders/flowtrack/internal/config"
	"github.com/redis/go-redis/v9"
)

const (
	cartKeyPrefix     = "flowtrack:cart:"
	finalizeKeyPrefix = "flowtrack:finalize:"
	revokedKeyPrefix  = "flowtrack:revoked:"
	eventsChannel     = "flowtrack:events"
)

// NewClient connects to Redis and verifies the connection.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}
