package cache

import (
	"context"
	"encoding/json"
	"log"

	"github.com/mahavirtraders/flowtrack/pkg/events"
	"github.com/redis/go-redis/v9"
)

// EventRelay publishes change events to a Redis channel and feeds events
// from every instance into the local hub, so stream subscribers see changes
// made through any instance.
type EventRelay struct {
	client *redis.Client
	hub    *events.Hub
}

// NewEventRelay creates a relay in front of hub.
func NewEventRelay(client *redis.Client, hub *events.Hub) *EventRelay {
	return &EventRelay{client: client, hub: hub}
}

var _ events.Publisher = (*EventRelay)(nil)

// Publish sends e to Redis. If Redis is unreachable the event is still
// delivered locally.
func (r *EventRelay) Publish(ctx context.Context, e events.Event) {
	payload, err := json.Marshal(e)
	if err == nil {
		err = r.client.Publish(ctx, eventsChannel, payload).Err()
	}
	if err != nil {
		log.Printf("[event-relay] publish %s %s failed, delivering locally: %v", e.Collection, e.Action, err)
		r.hub.Dispatch(e)
	}
}

// Run subscribes to the events channel and dispatches into the hub until ctx
// is cancelled.
func (r *EventRelay) Run(ctx context.Context) {
	pubsub := r.client.Subscribe(ctx, eventsChannel)
	defer pubsub.Close()

	log.Println("[event-relay] listening for change events")
	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var e events.Event
			if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
				log.Printf("[event-relay] dropping malformed event: %v", err)
				continue
			}
			r.hub.Dispatch(e)
		}
	}
}
