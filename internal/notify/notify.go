// Package notify carries stock events from the request path to connected
// clients and background consumers. Delivery is best effort and at most once.
package notify

import (
	"context"

	"mini-pos/internal/model"
)

// Publisher sends one JSON-encoded payload on a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) error
	Close() error
}

// Message is a payload received from a topic.
type Message struct {
	Topic   string
	Payload []byte
}

// Subscriber streams messages for a set of topics.
type Subscriber interface {
	// Subscribe delivers messages on the returned channel until ctx is done.
	// The channel is closed once the subscription ends.
	Subscribe(ctx context.Context, topics ...string) (<-chan Message, error)
}

// Broker is a transport that can both publish and subscribe.
type Broker interface {
	Publisher
	Subscriber
}

// Emitter hands events to the notification channel without blocking.
type Emitter interface {
	Emit(events ...model.Event)
}
