package pubsub

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Heethjain14/loan-management-system/internal/service/interfaces"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockClient struct {
	subscriber *mockSubscriber
	mu         sync.Mutex
	closed     bool
}

func (m *mockClient) Subscriber(string) interfaces.SubscriberInterface { return m.subscriber }

func (m *mockClient) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

type mockSubscriber struct {
	messages     [][]byte
	recvErr      error
	produced     []*mockMessage
	maxExtension time.Duration
	block        bool
}

func (s *mockSubscriber) Receive(ctx context.Context, f func(ctx context.Context, m interfaces.MessageInterface)) error {
	if s.recvErr != nil {
		return s.recvErr
	}
	for i, msg := range s.messages {
		mm := &mockMessage{id: fmt.Sprint(i), data: msg}
		s.produced = append(s.produced, mm)
		f(ctx, mm)
	}
	if s.block {
		<-ctx.Done()
	}
	return nil
}

func (s *mockSubscriber) SetMaxExtension(d time.Duration) { s.maxExtension = d }

type mockMessage struct {
	id     string
	data   []byte
	acked  bool
	nacked bool
}

func (m *mockMessage) ID() string                    { return m.id }
func (m *mockMessage) Data() []byte                  { return m.data }
func (m *mockMessage) Attributes() map[string]string { return nil }
func (m *mockMessage) Ack()                          { m.acked = true }
func (m *mockMessage) Nack()                         { m.nacked = true }

type mockFactory struct {
	client interfaces.PubSubClientInterface
	err    error
}

func (m *mockFactory) NewPubSubClient(context.Context, string) (interfaces.PubSubClientInterface, error) {
	return m.client, m.err
}

func TestNewPubSubConsumerWithFactoryError(t *testing.T) {
	consumer, err := NewPubSubConsumerWithFactory(context.Background(), "proj", "sub", &mockFactory{err: errors.New("fail")})
	assert.Error(t, err)
	assert.Nil(t, consumer)
}

func TestConsumeAckNackDiscard(t *testing.T) {
	subscriber := &mockSubscriber{messages: [][]byte{[]byte("ok"), []byte("bad"), []byte("retry")}}
	client := &mockClient{subscriber: subscriber}
	consumer, err := NewPubSubConsumerWithFactory(context.Background(), "proj", "sub", &mockFactory{client: client})
	require.NoError(t, err)

	err = consumer.Consume(context.Background(), func(_ context.Context, data []byte, _ map[string]string) error {
		switch string(data) {
		case "bad":
			return fmt.Errorf("decode reminder: %w", ErrDiscard)
		case "retry":
			return errors.New("redis down")
		}
		return nil
	})
	require.NoError(t, err)
	require.Len(t, subscriber.produced, 3)

	assert.True(t, subscriber.produced[0].acked)
	assert.True(t, subscriber.produced[1].acked)
	assert.False(t, subscriber.produced[1].nacked)
	assert.True(t, subscriber.produced[2].nacked)
	assert.Equal(t, time.Duration(-1), subscriber.maxExtension)
}

func TestStartAndClose(t *testing.T) {
	subscriber := &mockSubscriber{messages: [][]byte{[]byte("x")}, block: true}
	client := &mockClient{subscriber: subscriber}
	consumer, err := NewPubSubConsumerWithFactory(context.Background(), "proj", "sub", &mockFactory{client: client})
	require.NoError(t, err)

	handled := make(chan struct{}, 1)
	consumer.Start(func(context.Context, []byte, map[string]string) error {
		handled <- struct{}{}
		return nil
	})

	select {
	case <-handled:
	case <-time.After(time.Second):
		t.Fatal("handler not called")
	}

	require.NoError(t, consumer.Close(context.Background()))
	client.mu.Lock()
	defer client.mu.Unlock()
	assert.True(t, client.closed)
}

func TestCloseWithoutStart(t *testing.T) {
	client := &mockClient{subscriber: &mockSubscriber{}}
	consumer, err := NewPubSubConsumerWithFactory(context.Background(), "proj", "sub", &mockFactory{client: client})
	require.NoError(t, err)
	assert.NoError(t, consumer.Close(context.Background()))
}
