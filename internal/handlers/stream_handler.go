package handlers

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/pollstream/pollstream-api/internal/events"
	"github.com/pollstream/pollstream-api/internal/logger"
)

// StreamHandler bridges bus subscriptions to Server-Sent Events responses.
type StreamHandler struct {
	bus *events.Bus
	log *log.Logger
}

// NewStreamHandler creates a new stream handler
func NewStreamHandler(bus *events.Bus) *StreamHandler {
	return &StreamHandler{
		bus: bus,
		log: logger.Handler("stream_handler"),
	}
}

// PollUpdates handles GET /api/polls/stream. Each frame carries the event
// type (poll_created, poll_updated, poll_deleted) and the JSON payload.
// The subscription is closed when the client disconnects, which removes
// its queue from the bus.
func (h *StreamHandler) PollUpdates(c *gin.Context) {
	sub := h.bus.Subscribe()
	defer sub.Close()

	h.log.Debug("stream subscriber connected", "remote_addr", c.ClientIP())

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	// Flush the status line and headers now so the client sees the stream
	// as established; the first event may be a long time coming.
	c.Writer.Flush()

	clientGone := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case ev := <-sub.Events():
			c.SSEvent(string(ev.Type), ev.Payload)
			return true
		case <-clientGone:
			return false
		}
	})

	h.log.Debug("stream subscriber disconnected", "remote_addr", c.ClientIP())
}
