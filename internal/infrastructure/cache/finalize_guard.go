package cache

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mahavirtraders/flowtrack/internal/domain/repository"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only if this holder still owns it.
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

// renewScript pushes the lock's expiry out only if this holder still owns it.
var renewScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
return 0
`)

// FinalizeGuard is a per-session lock built on SET NX with a TTL. The holder
// renews the TTL every third of it until release, so a slow finalize keeps
// the session locked. If the holder dies, or cannot reach Redis for a whole
// TTL, the lock lapses and another finalize may start.
type FinalizeGuard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewFinalizeGuard creates a Redis finalize guard.
func NewFinalizeGuard(client *redis.Client, ttl time.Duration) *FinalizeGuard {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &FinalizeGuard{client: client, ttl: ttl}
}

var _ repository.FinalizeGuard = (*FinalizeGuard)(nil)

func (g *FinalizeGuard) Acquire(ctx context.Context, sessionID string) (func(), error) {
	key := finalizeKeyPrefix + sessionID
	token := uuid.NewString()

	ok, err := g.client.SetNX(ctx, key, token, g.ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, repository.ErrLockHeld
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go g.keepAlive(key, token, sessionID, stop, done)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done

			// Release with a fresh context: the request context may already be done.
			releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := releaseScript.Run(releaseCtx, g.client, []string{key}, token).Err(); err != nil {
				log.Printf("[finalize-guard] failed to release %s: %v", sessionID, err)
			}
		})
	}, nil
}

func (g *FinalizeGuard) keepAlive(key, token, sessionID string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(g.ttl / 3)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), g.ttl/3)
			renewed, err := renewScript.Run(ctx, g.client, []string{key}, token, g.ttl.Milliseconds()).Int()
			cancel()
			if err != nil {
				log.Printf("[finalize-guard] failed to renew %s: %v", sessionID, err)
				continue
			}
			if renewed == 0 {
				log.Printf("[finalize-guard] lost lock on %s", sessionID)
				return
			}
		}
	}
}
