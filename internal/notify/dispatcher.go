package notify

import (
	"context"
	"time"

	"mini-pos/internal/model"

	"github.com/rs/zerolog"
)

// DefaultPublishTimeout bounds each publish made by the dispatcher.
const DefaultPublishTimeout = 2 * time.Second

// Dispatcher queues events and publishes them on a single worker goroutine so
// that request handlers never wait on the broker.
type Dispatcher struct {
	publisher Publisher
	queue     chan model.Event
	timeout   time.Duration
	logger    zerolog.Logger
}

// NewDispatcher creates a dispatcher with a queue of queueSize events.
func NewDispatcher(publisher Publisher, queueSize int, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		publisher: publisher,
		queue:     make(chan model.Event, queueSize),
		timeout:   DefaultPublishTimeout,
		logger:    logger.With().Str("component", "dispatcher").Logger(),
	}
}

// Emit enqueues events. When the queue is full the event is dropped.
func (d *Dispatcher) Emit(events ...model.Event) {
	for _, e := range events {
		select {
		case d.queue <- e:
		default:
			d.logger.Warn().Str("topic", e.Topic).Msg("event queue full, dropping event")
		}
	}
}

// Run publishes queued events until ctx is done, then flushes whatever is
// still queued.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.logger.Info().Int("queue_size", cap(d.queue)).Msg("dispatcher started")

	for {
		select {
		case <-ctx.Done():
			d.flush()
			d.logger.Info().Msg("dispatcher stopped")
			return nil
		case e := <-d.queue:
			d.publish(context.Background(), e)
		}
	}
}

func (d *Dispatcher) flush() {
	for {
		select {
		case e := <-d.queue:
			d.publish(context.Background(), e)
		default:
			return
		}
	}
}

func (d *Dispatcher) publish(parent context.Context, e model.Event) {
	ctx, cancel := context.WithTimeout(parent, d.timeout)
	defer cancel()

	if err := d.publisher.Publish(ctx, e.Topic, e.Payload); err != nil {
		d.logger.Warn().Err(err).Str("topic", e.Topic).Msg("failed to publish event")
		return
	}

	d.logger.Debug().Str("topic", e.Topic).Msg("event published")
}
