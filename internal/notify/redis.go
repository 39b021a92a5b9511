package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const subscriptionBuffer = 16

// RedisBroker publishes and subscribes over Redis pub/sub. Topic t maps to
// channel prefix+t.
type RedisBroker struct {
	client *redis.Client
	prefix string
	logger zerolog.Logger
}

// NewRedisBroker creates a Redis pub/sub broker.
func NewRedisBroker(client *redis.Client, prefix string, logger zerolog.Logger) *RedisBroker {
	return &RedisBroker{
		client: client,
		prefix: prefix,
		logger: logger.With().Str("component", "redis-broker").Logger(),
	}
}

func (b *RedisBroker) channel(topic string) string {
	return b.prefix + topic
}

// Publish encodes payload as JSON and publishes it on the topic's channel.
func (b *RedisBroker) Publish(ctx context.Context, topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", topic, err)
	}

	if err := b.client.Publish(ctx, b.channel(topic), data).Err(); err != nil {
		return fmt.Errorf("failed to publish %s: %w", topic, err)
	}

	return nil
}

// Subscribe opens a Redis subscription for topics.
func (b *RedisBroker) Subscribe(ctx context.Context, topics ...string) (<-chan Message, error) {
	channels := make([]string, len(topics))
	for i, t := range topics {
		channels[i] = b.channel(t)
	}

	ps := b.client.Subscribe(ctx, channels...)
	// Wait for the subscription confirmation so callers see errors up front.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	out := make(chan Message, subscriptionBuffer)
	go func() {
		defer close(out)
		defer ps.Close()

		in := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-in:
				if !ok {
					return
				}
				m := Message{
					Topic:   strings.TrimPrefix(msg.Channel, b.prefix),
					Payload: []byte(msg.Payload),
				}
				select {
				case out <- m:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	b.logger.Debug().Strs("channels", channels).Msg("subscribed")

	return out, nil
}

// Close is a no-op; the Redis client is owned by the caller.
func (b *RedisBroker) Close() error {
	return nil
}
