package api

import (
	"net/http"
	"time"

	"github.com/editorial-lifecycle-api/internal/lifecycle"
	"github.com/editorial-lifecycle-api/internal/notify"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	eventBuffer       = 16
	heartbeatInterval = 25 * time.Second
)

// EventsHandler streams change notifications to admin screens so they can
// re-read the lists.
type EventsHandler struct {
	store *lifecycle.Store
	log   zerolog.Logger
}

// NewEventsHandler creates a new EventsHandler
func NewEventsHandler(store *lifecycle.Store, log zerolog.Logger) *EventsHandler {
	return &EventsHandler{
		store: store,
		log:   log.With().Str("handler", "events").Logger(),
	}
}

// Stream handles GET /v1/admin/events as Server-Sent Events. Changes that
// arrive while the client is slow are dropped; a client only needs to know
// that something changed.
func (h *EventsHandler) Stream(c *gin.Context) {
	ctx := c.Request.Context()

	// The server write timeout would cut the stream off
	if err := http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{}); err != nil {
		h.log.Debug().Err(err).Msg("Write deadline not cleared")
	}

	changes := make(chan notify.Change, eventBuffer)
	unsubscribe := h.store.Subscribe(func(ch notify.Change) {
		select {
		case changes <- ch:
		default:
		}
	})
	defer unsubscribe()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	c.SSEvent("ready", gin.H{"at": time.Now().UTC()})
	c.Writer.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			h.log.Debug().Msg("Event stream closed")
			return
		case ch := <-changes:
			c.SSEvent("change", ch)
			c.Writer.Flush()
		case t := <-heartbeat.C:
			c.SSEvent("ping", gin.H{"at": t.UTC()})
			c.Writer.Flush()
		}
	}
}
