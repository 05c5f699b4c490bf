package events

import (
	"context"
	"sync"
	"testing"
	"time"
)

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case e, ok := <-ch:
		if !ok {
			t.Fatal("channel closed unexpectedly")
		}
		return e
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func TestHub_DeliversToCollectionAndWildcard(t *testing.T) {
	hub := NewHub(4)
	sales, cancelSales := hub.Subscribe(CollectionSales)
	defer cancelSales()
	all, cancelAll := hub.Subscribe(AllCollections)
	defer cancelAll()
	products, cancelProducts := hub.Subscribe(CollectionProducts)
	defer cancelProducts()

	hub.Publish(context.Background(), NewEvent(CollectionSales, ActionCreated, "s-1", nil))

	if e := receive(t, sales); e.ID != "s-1" || e.Action != ActionCreated {
		t.Errorf("unexpected event on sales: %+v", e)
	}
	if e := receive(t, all); e.Collection != CollectionSales {
		t.Errorf("unexpected event on wildcard: %+v", e)
	}
	select {
	case e := <-products:
		t.Errorf("products subscriber should not receive sales events, got %+v", e)
	default:
	}
}

func TestHub_CancelClosesAndUnregisters(t *testing.T) {
	hub := NewHub(1)
	ch, cancel := hub.Subscribe(CollectionProducts)
	if got := hub.SubscriberCount(CollectionProducts); got != 1 {
		t.Fatalf("expected 1 subscriber, got %d", got)
	}

	cancel()
	cancel() // second call is a no-op

	if _, ok := <-ch; ok {
		t.Error("expected channel to be closed")
	}
	if got := hub.SubscriberCount(CollectionProducts); got != 0 {
		t.Errorf("expected 0 subscribers, got %d", got)
	}
	hub.Dispatch(NewEvent(CollectionProducts, ActionUpdated, "p-1", nil))
}

func TestHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	hub := NewHub(1)
	_, cancel := hub.Subscribe(CollectionExpenses)
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			hub.Dispatch(NewEvent(CollectionExpenses, ActionCreated, "e", nil))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatch blocked on a full subscriber")
	}
}

func TestHub_ConcurrentSubscribeAndDispatch(t *testing.T) {
	hub := NewHub(8)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, cancel := hub.Subscribe(CollectionSales)
			cancel()
		}()
		go func() {
			defer wg.Done()
			hub.Dispatch(NewEvent(CollectionSales, ActionCreated, "s", nil))
		}()
	}
	wg.Wait()
	if got := hub.SubscriberCount(CollectionSales); got != 0 {
		t.Errorf("expected all subscribers cancelled, got %d", got)
	}
}
