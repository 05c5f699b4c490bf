package repository

import (
	"context"
	"time"

	"github.com/mahavirtraders/flowtrack/internal/domain/entity"
)

// Transactor runs fn inside a single store transaction. Repositories called
// with the context passed to fn take part in that transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// CartStore keeps in-progress carts per session.
type CartStore interface {
	// Get returns a copy of the session's cart, or an empty cart.
	Get(ctx context.Context, sessionID string) (*entity.Cart, error)
	// Update applies fn to the session's cart atomically and stores the result.
	Update(ctx context.Context, sessionID string, fn func(cart *entity.Cart) error) (*entity.Cart, error)
	Delete(ctx context.Context, sessionID string) error
}

// FinalizeGuard allows at most one finalize per session at a time.
type FinalizeGuard interface {
	// Acquire takes the session's guard or returns ErrLockHeld. The returned
	// release func must be called on every path.
	Acquire(ctx context.Context, sessionID string) (release func(), err error)
}

// TokenBlocklist remembers revoked access tokens until they expire.
type TokenBlocklist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
