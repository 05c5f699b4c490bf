package memory

import (
	"context"
	"sync"

	"github.com/mahavirtraders/flowtrack/internal/domain/repository"
)

// FinalizeGuard tracks sessions with a finalize in flight.
type FinalizeGuard struct {
	mu     sync.Mutex
	active map[string]struct{}
}

// NewFinalizeGuard creates an in-process finalize guard.
func NewFinalizeGuard() *FinalizeGuard {
	return &FinalizeGuard{active: make(map[string]struct{})}
}

var _ repository.FinalizeGuard = (*FinalizeGuard)(nil)

// Acquire fails fast with ErrLockHeld instead of queueing a second finalize.
func (g *FinalizeGuard) Acquire(_ context.Context, sessionID string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, held := g.active[sessionID]; held {
		return nil, repository.ErrLockHeld
	}
	g.active[sessionID] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.active, sessionID)
			g.mu.Unlock()
		})
	}, nil
}
