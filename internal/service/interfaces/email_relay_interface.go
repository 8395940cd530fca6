package interfaces

import (
	"context"

	"github.com/Heethjain14/loan-management-system/internal/pkg/downstream"
)

// EmailRelay is implemented by downstream.NotificationClient.
type EmailRelay interface {
	SendEmail(ctx context.Context, in downstream.EmailRequest) (*downstream.EmailResult, error)
}
