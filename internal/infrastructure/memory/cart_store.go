// Package memory holds single-process implementations of the session ports.
// They are the default when no Redis server is configured.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/mahavirtraders/flowtrack/internal/domain/entity"
	"github.com/mahavirtraders/flowtrack/internal/domain/repository"
)

type cartEntry struct {
	cart      *entity.Cart
	expiresAt time.Time
}

// CartStore keeps carts in a map guarded by a mutex. Carts idle for longer
// than the TTL are dropped on access.
type CartStore struct {
	mu    sync.Mutex
	carts map[string]cartEntry
	ttl   time.Duration
	now   func() time.Time
}

// NewCartStore creates an in-process cart store. A zero ttl keeps carts forever.
func NewCartStore(ttl time.Duration) *CartStore {
	return &CartStore{
		carts: make(map[string]cartEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

var _ repository.CartStore = (*CartStore)(nil)

func (s *CartStore) load(sessionID string) *entity.Cart {
	entry, ok := s.carts[sessionID]
	if !ok {
		return entity.NewCart(sessionID)
	}
	if s.ttl > 0 && s.now().After(entry.expiresAt) {
		delete(s.carts, sessionID)
		return entity.NewCart(sessionID)
	}
	return entry.cart.Clone()
}

// Get returns a copy of the session's cart.
func (s *CartStore) Get(_ context.Context, sessionID string) (*entity.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(sessionID), nil
}

// Update runs fn on a copy and stores it only when fn succeeds.
func (s *CartStore) Update(_ context.Context, sessionID string, fn func(cart *entity.Cart) error) (*entity.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.load(sessionID)
	if err := fn(cart); err != nil {
		return nil, err
	}
	cart.UpdatedAt = s.now()
	s.carts[sessionID] = cartEntry{cart: cart.Clone(), expiresAt: s.now().Add(s.ttl)}
	return cart, nil
}

func (s *CartStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
	return nil
}
