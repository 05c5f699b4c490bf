package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mahavirtraders/flowtrack/internal/domain/entity"
	"github.com/mahavirtraders/flowtrack/internal/domain/repository"
	"github.com/redis/go-redis/v9"
)

const maxCartRetries = 10

// CartStore keeps each cart as a JSON value with a sliding TTL. Updates use
// optimistic locking (WATCH/MULTI) so two requests on one session cannot
// overwrite each other.
type CartStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCartStore creates a Redis cart store.
func NewCartStore(client *redis.Client, ttl time.Duration) *CartStore {
	return &CartStore{client: client, ttl: ttl}
}

var _ repository.CartStore = (*CartStore)(nil)

func cartKey(sessionID string) string {
	return cartKeyPrefix + sessionID
}

func decodeCart(sessionID string, raw []byte) (*entity.Cart, error) {
	cart := entity.NewCart(sessionID)
	if err := json.Unmarshal(raw, cart); err != nil {
		return nil, fmt.Errorf("decode cart %s: %w", sessionID, err)
	}
	if cart.Lines == nil {
		cart.Lines = []entity.CartLine{}
	}
	return cart, nil
}

func readCart(ctx context.Context, cmd redis.Cmdable, sessionID string) (*entity.Cart, error) {
	raw, err := cmd.Get(ctx, cartKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return entity.NewCart(sessionID), nil
	}
	if err != nil {
		return nil, err
	}
	return decodeCart(sessionID, raw)
}

func (s *CartStore) Get(ctx context.Context, sessionID string) (*entity.Cart, error) {
	return readCart(ctx, s.client, sessionID)
}

func (s *CartStore) Update(ctx context.Context, sessionID string, fn func(cart *entity.Cart) error) (*entity.Cart, error) {
	key := cartKey(sessionID)
	var result *entity.Cart

	txf := func(tx *redis.Tx) error {
		cart, err := readCart(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		if err := fn(cart); err != nil {
			return err
		}
		cart.UpdatedAt = time.Now()

		payload, err := json.Marshal(cart)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, s.ttl)
			return nil
		})
		if err == nil {
			result = cart
		}
		return err
	}

	for i := 0; i < maxCartRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return result, nil
	}
	return nil, fmt.Errorf("cart %s: too much contention", sessionID)
}

func (s *CartStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, cartKey(sessionID)).Err()
}
