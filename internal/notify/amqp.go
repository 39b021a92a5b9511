package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

const (
	ExchangeName = "pos_events"
	ExchangeType = "topic"
)

// AMQPBroker publishes to a RabbitMQ topic exchange with the topic as routing
// key. Each subscription gets its own channel and exclusive queue.
type AMQPBroker struct {
	conn   *amqp.Connection
	mu     sync.Mutex // guards ch; amqp channels are not safe for concurrent publishing
	ch     *amqp.Channel
	logger zerolog.Logger
}

// DialAMQP connects to RabbitMQ and declares the events exchange.
func DialAMQP(url string, logger zerolog.Logger) (*AMQPBroker, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("could not connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("could not open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		ExchangeName, // name
		ExchangeType, // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("could not declare exchange: %w", err)
	}

	return &AMQPBroker{
		conn:   conn,
		ch:     ch,
		logger: logger.With().Str("component", "amqp-broker").Logger(),
	}, nil
}

// Publish encodes payload as JSON and publishes it with routing key topic.
func (b *AMQPBroker) Publish(ctx context.Context, topic string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", topic, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	err = b.ch.PublishWithContext(ctx,
		ExchangeName, // exchange
		topic,        // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Timestamp:   time.Now(),
			Body:        body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", topic, err)
	}

	return nil
}

// Subscribe binds a temporary exclusive queue to the exchange for topics.
func (b *AMQPBroker) Subscribe(ctx context.Context, topics ...string) (<-chan Message, error) {
	ch, err := b.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("could not open channel: %w", err)
	}

	q, err := ch.QueueDeclare(
		"",    // random name
		false, // non-durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("could not declare queue: %w", err)
	}

	for _, topic := range topics {
		if err := ch.QueueBind(q.Name, topic, ExchangeName, false, nil); err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("could not bind queue to %s: %w", topic, err)
		}
	}

	deliveries, err := ch.Consume(
		q.Name, // queue
		"",     // consumer tag
		true,   // auto-ack
		false,  // exclusive
		false,  // no-local
		false,  // no-wait
		nil,    // args
	)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("could not start consume: %w", err)
	}

	out := make(chan Message, subscriptionBuffer)
	go func() {
		defer close(out)
		defer ch.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				select {
				case out <- Message{Topic: d.RoutingKey, Payload: d.Body}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	b.logger.Debug().Str("queue", q.Name).Strs("topics", topics).Msg("subscribed")

	return out, nil
}

// Close closes the publishing channel and the connection.
func (b *AMQPBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.ch.Close(); err != nil && err != amqp.ErrClosed {
		b.logger.Warn().Err(err).Msg("failed to close channel")
	}
	return b.conn.Close()
}
