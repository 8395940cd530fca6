package interfaces

import (
	"context"

	"github.com/Heethjain14/loan-management-system/internal/pkg/stripeclient"

	"github.com/stripe/stripe-go/v76"
)

// PaymentGateway is implemented by stripeclient.Client.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, in stripeclient.IntentParams) (*stripe.PaymentIntent, error)
	GetIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error)
	Refund(ctx context.Context, in stripeclient.RefundParams) (*stripe.Refund, error)
	SearchByBorrower(ctx context.Context, borrowerID string) ([]*stripe.PaymentIntent, error)
}

// EventPublisher is implemented by kafka.KafkaProducer.
type EventPublisher interface {
	PublishEvent(ctx context.Context, eventType, key string, event any) error
}

// ReceiptArchiver is implemented by gcs.GCSClient.
type ReceiptArchiver interface {
	UploadJSON(ctx context.Context, name string, v any) (string, error)
}
