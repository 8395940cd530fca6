package interfaces

import (
	"context"
	"time"
)

// The types below narrow the Pub/Sub v2 client to what the reminder
// publisher and consumer call, so both can be tested without an emulator.

type MessageInterface interface {
	ID() string
	Data() []byte
	Attributes() map[string]string
	Ack()
	Nack()
}

type SubscriberInterface interface {
	Receive(ctx context.Context, f func(context.Context, MessageInterface)) error
	SetMaxExtension(d time.Duration)
}

// PubSubClientInterface is the consuming side of *pubsub.Client.
type PubSubClientInterface interface {
	Subscriber(subscription string) SubscriberInterface
	Close() error
}

type PublisherInterface interface {
	Publish(ctx context.Context, data []byte, attributes map[string]string) (string, error)
}

// PubSubPublisherClientInterface is the publishing side of *pubsub.Client.
type PubSubPublisherClientInterface interface {
	Publisher(topic string) PublisherInterface
	Close() error
}
