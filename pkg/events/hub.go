// Package events carries change notifications for the stored collections to
// in-process subscribers.
package events

import (
	"context"
	"log"
	"sync"
	"time"
)

// Collection names published by the services.
const (
	CollectionProducts    = "products"
	CollectionSales       = "sales"
	CollectionPurchases   = "purchases"
	CollectionAttendance  = "attendance"
	CollectionExpenses    = "expenses"
	CollectionDayClosings = "day_closings"
	CollectionUsers       = "users"

	// AllCollections subscribes to every collection.
	AllCollections = "*"
)

// Action describes what happened to a record.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// Event is a single change notification.
type Event struct {
	Collection string      `json:"collection"`
	Action     Action      `json:"action"`
	ID         string      `json:"id"`
	Data       interface{} `json:"data,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// NewEvent stamps a change notification with the current time.
func NewEvent(collection string, action Action, id string, data interface{}) Event {
	return Event{
		Collection: collection,
		Action:     action,
		ID:         id,
		Data:       data,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher accepts change notifications.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// Subscriber hands out live event streams per collection.
type Subscriber interface {
	Subscribe(collection string) (<-chan Event, func())
}

type subscription struct {
	ch   chan Event
	once sync.Once
}

// Hub fans events out to subscribers over buffered channels. A subscriber
// that falls behind loses events instead of blocking publishers.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*subscription]struct{}
	buffer int
}

// NewHub creates a hub whose subscriber channels hold buffer events.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{
		subs:   make(map[string]map[*subscription]struct{}),
		buffer: buffer,
	}
}

// Subscribe returns a channel of events for collection and a cancel func that
// closes it. Use AllCollections to receive everything.
func (h *Hub) Subscribe(collection string) (<-chan Event, func()) {
	sub := &subscription{ch: make(chan Event, h.buffer)}

	h.mu.Lock()
	if h.subs[collection] == nil {
		h.subs[collection] = make(map[*subscription]struct{})
	}
	h.subs[collection][sub] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		sub.once.Do(func() {
			h.mu.Lock()
			delete(h.subs[collection], sub)
			if len(h.subs[collection]) == 0 {
				delete(h.subs, collection)
			}
			h.mu.Unlock()
			close(sub.ch)
		})
	}
	return sub.ch, cancel
}

// Publish delivers e to local subscribers.
func (h *Hub) Publish(_ context.Context, e Event) {
	h.Dispatch(e)
}

// Dispatch delivers e to subscribers of its collection and of AllCollections.
func (h *Hub) Dispatch(e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, key := range []string{e.Collection, AllCollections} {
		for sub := range h.subs[key] {
			select {
			case sub.ch <- e:
			default:
				log.Printf("[events] subscriber on %q is full, dropping %s %s", key, e.Collection, e.Action)
			}
		}
	}
}

// SubscriberCount reports how many subscribers are listening on collection.
func (h *Hub) SubscriberCount(collection string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[collection])
}
