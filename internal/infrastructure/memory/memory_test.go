package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mahavirtraders/flowtrack/internal/domain/entity"
	"github.com/mahavirtraders/flowtrack/internal/domain/repository"
)

func TestCartStore_UpdateAndGet(t *testing.T) {
	store := NewCartStore(time.Hour)
	ctx := context.Background()
	product := &entity.Product{ID: uuid.New(), Name: "Cement", RetailPrice: 30000}

	cart, err := store.Update(ctx, "s1", func(c *entity.Cart) error {
		c.AddLine(product)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(cart.Lines))
	}

	// Mutating the returned copy must not leak into the store
	cart.Lines[0].Quantity = 99

	got, _ := store.Get(ctx, "s1")
	if got.Lines[0].Quantity != 1 {
		t.Errorf("expected stored quantity 1, got %d", got.Lines[0].Quantity)
	}
}

func TestCartStore_FailedUpdateLeavesCartUntouched(t *testing.T) {
	store := NewCartStore(time.Hour)
	ctx := context.Background()
	product := &entity.Product{ID: uuid.New(), Name: "Cement", RetailPrice: 30000}

	store.Update(ctx, "s1", func(c *entity.Cart) error {
		c.AddLine(product)
		return nil
	})

	boom := errors.New("boom")
	_, err := store.Update(ctx, "s1", func(c *entity.Cart) error {
		c.AddLine(product)
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	got, _ := store.Get(ctx, "s1")
	if got.Lines[0].Quantity != 1 {
		t.Errorf("expected quantity 1 after failed update, got %d", got.Lines[0].Quantity)
	}
}

func TestCartStore_Expiry(t *testing.T) {
	store := NewCartStore(time.Minute)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	store.Update(ctx, "s1", func(c *entity.Cart) error {
		c.AddLine(&entity.Product{ID: uuid.New(), Name: "Sand", RetailPrice: 100})
		return nil
	})

	now = now.Add(2 * time.Minute)
	got, _ := store.Get(ctx, "s1")
	if !got.IsEmpty() {
		t.Error("expected expired cart to come back empty")
	}
}

func TestCartStore_Delete(t *testing.T) {
	store := NewCartStore(0)
	ctx := context.Background()
	store.Update(ctx, "s1", func(c *entity.Cart) error {
		c.AddLine(&entity.Product{ID: uuid.New(), Name: "Sand", RetailPrice: 100})
		return nil
	})
	store.Delete(ctx, "s1")

	got, _ := store.Get(ctx, "s1")
	if !got.IsEmpty() || got.SessionID != "s1" {
		t.Errorf("expected empty cart for s1, got %+v", got)
	}
}

func TestFinalizeGuard_OneAtATime(t *testing.T) {
	guard := NewFinalizeGuard()
	ctx := context.Background()

	release, err := guard.Acquire(ctx, "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := guard.Acquire(ctx, "s1"); !errors.Is(err, repository.ErrLockHeld) {
		t.Errorf("expected ErrLockHeld, got %v", err)
	}

	// Other sessions are independent
	releaseOther, err := guard.Acquire(ctx, "s2")
	if err != nil {
		t.Fatalf("expected s2 to acquire, got %v", err)
	}
	releaseOther()

	release()
	release() // double release is harmless

	if _, err := guard.Acquire(ctx, "s1"); err != nil {
		t.Errorf("expected reacquire after release, got %v", err)
	}
}

func TestFinalizeGuard_Concurrent(t *testing.T) {
	guard := NewFinalizeGuard()
	ctx := context.Background()

	var acquired int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, err := guard.Acquire(ctx, "s1"); err == nil {
				atomic.AddInt32(&acquired, 1)
			}
		}()
	}
	close(start)
	wg.Wait()

	if acquired != 1 {
		t.Errorf("expected exactly 1 acquisition, got %d", acquired)
	}
}

func TestTokenBlocklist(t *testing.T) {
	list := NewTokenBlocklist()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	list.now = func() time.Time { return now }
	ctx := context.Background()

	if revoked, _ := list.IsRevoked(ctx, "jti-1"); revoked {
		t.Error("expected unknown token to be allowed")
	}

	list.Revoke(ctx, "jti-1", time.Hour)
	if revoked, _ := list.IsRevoked(ctx, "jti-1"); !revoked {
		t.Error("expected revoked token to be blocked")
	}

	now = now.Add(2 * time.Hour)
	if revoked, _ := list.IsRevoked(ctx, "jti-1"); revoked {
		t.Error("expected token to be forgotten after its ttl")
	}
}
