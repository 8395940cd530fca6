package pubsub

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/Heethjain14/loan-management-system/internal/pkg/log_messages"
	"github.com/Heethjain14/loan-management-system/internal/pkg/logger"
	"github.com/Heethjain14/loan-management-system/internal/service/interfaces"

	"cloud.google.com/go/pubsub/v2"
	"go.uber.org/zap"
)

// ErrDiscard marks a message that can never be processed. Handlers wrap it
// and the consumer acks instead of nacking so it is not redelivered.
var ErrDiscard = errors.New("discard message")

// Handler processes one message payload.
type Handler func(ctx context.Context, data []byte, attributes map[string]string) error

// PubSubClientFactory makes new clients (mockable in tests).
type PubSubClientFactory interface {
	NewPubSubClient(ctx context.Context, projectID string) (interfaces.PubSubClientInterface, error)
}

type defaultPubSubClientFactory struct{}

func (f *defaultPubSubClientFactory) NewPubSubClient(ctx context.Context,
	projectID string) (interfaces.PubSubClientInterface, error) {
	sdkClient, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return &pubSubClientAdapter{client: sdkClient}, nil
}

type pubSubClientAdapter struct {
	client *pubsub.Client
}

func (c *pubSubClientAdapter) Subscriber(subscription string) interfaces.SubscriberInterface {
	return &subscriberAdapter{sub: c.client.Subscriber(subscription)}
}

func (c *pubSubClientAdapter) Close() error {
	return c.client.Close()
}

type subscriberAdapter struct {
	sub *pubsub.Subscriber
}

func (s *subscriberAdapter) Receive(ctx context.Context, f func(context.Context, interfaces.MessageInterface)) error {
	return s.sub.Receive(ctx, func(ctx context.Context, m *pubsub.Message) {
		f(ctx, &messageAdapter{msg: m})
	})
}

func (s *subscriberAdapter) SetMaxExtension(d time.Duration) {
	s.sub.ReceiveSettings.MaxExtension = d
}

type messageAdapter struct {
	msg *pubsub.Message
}

func (m *messageAdapter) ID() string                    { return m.msg.ID }
func (m *messageAdapter) Data() []byte                  { return m.msg.Data }
func (m *messageAdapter) Attributes() map[string]string { return m.msg.Attributes }
func (m *messageAdapter) Ack()                          { m.msg.Ack() }
func (m *messageAdapter) Nack()                         { m.msg.Nack() }

// PubSubConsumer receives from one subscription until its context ends.
type PubSubConsumer struct {
	client       interfaces.PubSubClientInterface
	subscription string
	retryDelay   time.Duration
	ctx          context.Context
	cancel       context.CancelFunc
	done         chan struct{}
	started      atomic.Bool
}

func NewPubSubConsumer(ctx context.Context, projectID, subscription string) (*PubSubConsumer, error) {
	return NewPubSubConsumerWithFactory(ctx, projectID, subscription, &defaultPubSubClientFactory{})
}

func NewPubSubConsumerWithFactory(ctx context.Context, projectID, subscription string,
	factory PubSubClientFactory) (*PubSubConsumer, error) {
	client, err := factory.NewPubSubClient(ctx, projectID)
	if err != nil {
		logger.CtxError(ctx, log_messages.FailureInPubsubConsumerCreation, err, zap.String("project", projectID))
		return nil, err
	}
	consumerCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	return &PubSubConsumer{
		client:       client,
		subscription: subscription,
		retryDelay:   5 * time.Second,
		ctx:          consumerCtx,
		cancel:       cancel,
		done:         make(chan struct{}),
	}, nil
}

// Consume runs one Receive call. Messages are acked on success or ErrDiscard
// and nacked on any other handler error.
func (c *PubSubConsumer) Consume(ctx context.Context, handler Handler) error {
	sub := c.client.Subscriber(c.subscription)
	sub.SetMaxExtension(-1)
	return sub.Receive(ctx, func(ctx context.Context, m interfaces.MessageInterface) {
		err := handler(ctx, m.Data(), m.Attributes())
		switch {
		case err == nil:
			m.Ack()
		case errors.Is(err, ErrDiscard):
			logger.CtxWarn(ctx, log_messages.ErrorUnmarshalingPubsubMessage,
				zap.String("message_id", m.ID()), zap.Error(err))
			m.Ack()
		default:
			logger.CtxError(ctx, log_messages.PubsubErrorConsuming, err, zap.String("message_id", m.ID()))
			m.Nack()
		}
	})
}

// Start consumes in the background, restarting Receive after errors until Close.
func (c *PubSubConsumer) Start(handler Handler) {
	c.started.Store(true)
	go func() {
		defer close(c.done)
		logger.CtxInfo(c.ctx, log_messages.PubsubConsumerStarting, zap.String("subscription", c.subscription))
		for c.ctx.Err() == nil {
			if err := c.Consume(c.ctx, handler); err != nil {
				logger.CtxError(c.ctx, log_messages.PubsubConsumeRetrying, err,
					zap.String("subscription", c.subscription), zap.Duration("delay", c.retryDelay))
			}
			select {
			case <-c.ctx.Done():
			case <-time.After(c.retryDelay):
			}
		}
		logger.CtxInfo(c.ctx, log_messages.PubsubConsumerExiting, zap.String("subscription", c.subscription))
	}()
}

// Close stops Start's loop, waits for it if it was running and closes the client.
func (c *PubSubConsumer) Close(ctx context.Context) error {
	if c == nil {
		return nil
	}
	c.cancel()
	if c.started.Load() {
		select {
		case <-c.done:
		case <-ctx.Done():
		}
	}
	return c.client.Close()
}
