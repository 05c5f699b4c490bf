package handler

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mahavirtraders/flowtrack/internal/presentation/http/dto/response"
	"github.com/mahavirtraders/flowtrack/pkg/events"
)

var streamCollections = map[string]bool{
	events.AllCollections:        true,
	events.CollectionProducts:    true,
	events.CollectionSales:       true,
	events.CollectionPurchases:   true,
	events.CollectionAttendance:  true,
	events.CollectionExpenses:    true,
	events.CollectionDayClosings: true,
	events.CollectionUsers:       true,
}

// StreamHandler pushes collection changes to clients as server-sent events
type StreamHandler struct {
	subscriber events.Subscriber
	heartbeat  time.Duration
}

// NewStreamHandler creates a new stream handler
func NewStreamHandler(subscriber events.Subscriber) *StreamHandler {
	return &StreamHandler{subscriber: subscriber, heartbeat: 25 * time.Second}
}

// Stream subscribes to one collection, or all of them by default, until the
// client goes away.
// @Summary Live changes
// @Tags stream
// @Security BearerAuth
// @Produce text/event-stream
// @Param collection query string false "products, sales, purchases, attendance, expenses, day_closings, users or *"
// @Router /stream [get]
func (h *StreamHandler) Stream(c *gin.Context) {
	collection := c.DefaultQuery("collection", events.AllCollections)
	if !streamCollections[collection] {
		response.BadRequest(c, "Unknown collection "+collection)
		return
	}

	ch, cancel := h.subscriber.Subscribe(collection)
	defer cancel()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	c.SSEvent("ready", gin.H{"collection": collection})
	c.Writer.Flush()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case e, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(e.Collection, e)
			return true
		case <-ticker.C:
			c.SSEvent("ping", time.Now().UTC().Format(time.RFC3339))
			return true
		}
	})
}
