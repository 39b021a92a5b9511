package handler

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"mini-pos/internal/model"
	"mini-pos/internal/notify"

	"github.com/rs/zerolog"
)

const keepAliveInterval = 25 * time.Second

// EventsHandler streams stock events to connected clients as Server-Sent Events.
type EventsHandler struct {
	subscriber notify.Subscriber
	keepAlive  time.Duration
	done       chan struct{}
	closeOnce  sync.Once
	logger     zerolog.Logger
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(subscriber notify.Subscriber, logger zerolog.Logger) *EventsHandler {
	return &EventsHandler{
		subscriber: subscriber,
		keepAlive:  keepAliveInterval,
		done:       make(chan struct{}),
		logger:     logger.With().Str("handler", "events").Logger(),
	}
}

// Close ends every open stream. It is registered as a server shutdown hook,
// since open streams would otherwise keep Shutdown waiting.
func (h *EventsHandler) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// Stream handles GET /api/events requests. The response stays open until
// the client disconnects or the subscription ends.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)

	// The server's write timeout would otherwise cut the stream.
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		h.logger.Debug().Err(err).Msg("write deadline not supported")
	}

	messages, err := h.subscriber.Subscribe(r.Context(), model.TopicStockUpdated, model.TopicLowStockAlert)
	if err != nil {
		respondError(w, fmt.Errorf("failed to subscribe: %w", err), h.logger)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		h.logger.Error().Err(err).Msg("streaming not supported")
		return
	}

	h.logger.Debug().Str("remote_addr", r.RemoteAddr).Msg("event stream opened")

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			h.logger.Debug().Str("remote_addr", r.RemoteAddr).Msg("event stream closed")
			return

		case <-h.done:
			return

		case msg, ok := <-messages:
			if !ok {
				return
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Topic, msg.Payload); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}

		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}
