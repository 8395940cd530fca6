package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Heethjain14/loan-management-system/internal/pkg/log_messages"
	"github.com/Heethjain14/loan-management-system/internal/pkg/logger"
	"github.com/Heethjain14/loan-management-system/internal/service/interfaces"

	"cloud.google.com/go/pubsub/v2"
	"go.uber.org/zap"
)

// PubSubPublisherClientFactory makes new clients (mockable in tests).
type PubSubPublisherClientFactory interface {
	NewPubSubPublisherClient(ctx context.Context, projectID string) (interfaces.PubSubPublisherClientInterface, error)
}

type defaultPubSubPublisherClientFactory struct{}

func (f *defaultPubSubPublisherClientFactory) NewPubSubPublisherClient(ctx context.Context,
	projectID string) (interfaces.PubSubPublisherClientInterface, error) {
	sdkClient, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return &pubSubPublisherClientAdapter{client: sdkClient}, nil
}

type pubSubPublisherClientAdapter struct {
	client *pubsub.Client
}

func (c *pubSubPublisherClientAdapter) Publisher(topic string) interfaces.PublisherInterface {
	return &publisherAdapter{publisher: c.client.Publisher(topic)}
}

func (c *pubSubPublisherClientAdapter) Close() error {
	return c.client.Close()
}

type publisherAdapter struct {
	publisher *pubsub.Publisher
}

func (p *publisherAdapter) Publish(ctx context.Context, data []byte, attributes map[string]string) (string, error) {
	result := p.publisher.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: attributes,
	})
	return result.Get(ctx)
}

// PubSubPublisher publishes JSON events to a single topic.
type PubSubPublisher struct {
	client interfaces.PubSubPublisherClientInterface
	topic  string
}

func NewPubSubPublisher(ctx context.Context, projectID, topic string) (*PubSubPublisher, error) {
	return NewPubSubPublisherWithFactory(ctx, projectID, topic, &defaultPubSubPublisherClientFactory{})
}

func NewPubSubPublisherWithFactory(ctx context.Context, projectID, topic string,
	factory PubSubPublisherClientFactory) (*PubSubPublisher, error) {
	client, err := factory.NewPubSubPublisherClient(ctx, projectID)
	if err != nil {
		logger.CtxError(ctx, log_messages.FailureInPubsubPublisherCreate, err, zap.String("project", projectID))
		return nil, err
	}
	return &PubSubPublisher{client: client, topic: topic}, nil
}

// PublishJSON marshals v and publishes it with an eventType attribute. It
// returns the server-assigned message id.
func (p *PubSubPublisher) PublishJSON(ctx context.Context, eventType string, v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf(log_messages.ErrorMarshallingMessage, err)
	}
	id, err := p.client.Publisher(p.topic).Publish(ctx, data, map[string]string{"eventType": eventType})
	if err != nil {
		logger.CtxError(ctx, log_messages.PubsubPublishFailed, err, zap.String("topic", p.topic))
		return "", fmt.Errorf(log_messages.ErrorInMessagePublishing, err)
	}
	logger.CtxInfo(ctx, log_messages.SuccessPubSubPublisher,
		zap.String("topic", p.topic), zap.String("message_id", id), zap.String("event_type", eventType))
	return id, nil
}

func (p *PubSubPublisher) Close(ctx context.Context) error {
	if p == nil || p.client == nil {
		return nil
	}
	return p.client.Close()
}
