package interfaces

import (
	"context"

	"github.com/Heethjain14/loan-management-system/internal/pkg/email"
	"github.com/Heethjain14/loan-management-system/internal/pkg/queue"
	"github.com/Heethjain14/loan-management-system/internal/pkg/store/models"
)

// EmailSender is implemented by email.Client.
type EmailSender interface {
	Send(ctx context.Context, msg email.Message) (string, error)
}

// SMSSender is implemented by sms.Client.
type SMSSender interface {
	Send(ctx context.Context, to, body string) (string, error)
}

// JobQueue is implemented by queue.Queue.
type JobQueue interface {
	Add(ctx context.Context, name string, data any) (*queue.Job, error)
	GetJob(ctx context.Context, id string) (*queue.Job, error)
}

// NotificationHistory is implemented by notificationhistory.NotificationHistoryRepository.
type NotificationHistory interface {
	Record(ctx context.Context, record *models.NotificationRecord) error
	Recent(ctx context.Context, limit int64) ([]models.NotificationRecord, error)
}
