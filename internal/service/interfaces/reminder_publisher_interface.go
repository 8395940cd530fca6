package interfaces

import "context"

// ReminderPublisher is implemented by pubsub.PubSubPublisher.
type ReminderPublisher interface {
	PublishJSON(ctx context.Context, eventType string, v any) (string, error)
}
