package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Heethjain14/loan-management-system/internal/pkg/config"
	"github.com/Heethjain14/loan-management-system/internal/pkg/log_messages"
	"github.com/Heethjain14/loan-management-system/internal/pkg/logger"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.uber.org/zap"
)

const deliveryTimeout = 10 * time.Second

// ProducerInterface defines the interface for Kafka producer operations.
type ProducerInterface interface {
	Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error
	Flush(timeoutMs int) int
	Close()
}

// KafkaProducer publishes keyed JSON events to one topic.
type KafkaProducer struct {
	producer ProducerInterface
	topic    string
}

func NewKafkaProducer(cfg config.KafkaConfig) (*KafkaProducer, error) {
	kafkaConfig := &kafka.ConfigMap{
		"bootstrap.servers": cfg.Server,
		"security.protocol": cfg.SecurityProtocol,
		"client.id":         cfg.ClientID,
	}
	if cfg.SASLMechanism != "" {
		_ = kafkaConfig.SetKey("sasl.mechanisms", cfg.SASLMechanism)
		_ = kafkaConfig.SetKey("sasl.username", cfg.SASLUsername)
		_ = kafkaConfig.SetKey("sasl.password", cfg.SASLPassword)
	}

	producer, err := kafka.NewProducer(kafkaConfig)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", log_messages.FailedKafkaProducerCreate, err)
	}
	logger.Info(log_messages.KafkaProducerCreated, zap.String("topic", cfg.PaymentTopic))

	return NewKafkaProducerWithProducer(producer, cfg.PaymentTopic), nil
}

func NewKafkaProducerWithProducer(producer ProducerInterface, topic string) *KafkaProducer {
	return &KafkaProducer{producer: producer, topic: topic}
}

// Publish sends value under key and waits for the delivery report.
func (kp *KafkaProducer) Publish(ctx context.Context, key string, value []byte, headers map[string]string) error {
	// buffered and never closed: a late report after a timeout must not panic
	deliveryChan := make(chan kafka.Event, 1)

	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &kp.topic, Partition: kafka.PartitionAny},
		Key:            []byte(key),
		Value:          value,
	}
	for k, v := range headers {
		msg.Headers = append(msg.Headers, kafka.Header{Key: k, Value: []byte(v)})
	}

	if err := kp.producer.Produce(msg, deliveryChan); err != nil {
		logger.CtxError(ctx, log_messages.FailedKafkaPublish, err, zap.String("topic", kp.topic))
		return err
	}

	timer := time.NewTimer(deliveryTimeout)
	defer timer.Stop()
	select {
	case ev := <-deliveryChan:
		m, ok := ev.(*kafka.Message)
		if !ok {
			return fmt.Errorf("unexpected kafka event %T", ev)
		}
		if m.TopicPartition.Error != nil {
			return fmt.Errorf("delivery failed: %w", m.TopicPartition.Error)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("timeout waiting for Kafka delivery report")
	}
}

// PublishEvent marshals event as JSON and publishes it with an event-type header.
func (kp *KafkaProducer) PublishEvent(ctx context.Context, eventType, key string, event any) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%s: %w", log_messages.ErrorMarshallingJSON, err)
	}
	return kp.Publish(ctx, key, value, map[string]string{"event-type": eventType})
}

// Close flushes and closes the Kafka producer.
func (kp *KafkaProducer) Close(ctx context.Context) error {
	if kp == nil || kp.producer == nil {
		return nil
	}
	if remaining := kp.producer.Flush(5000); remaining > 0 {
		logger.CtxWarn(ctx, log_messages.KafkaUndelivered, zap.Int("remaining", remaining))
	}
	kp.producer.Close()
	return nil
}
