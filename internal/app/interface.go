package app

import (
	"context"

	"github.com/Heethjain14/loan-management-system/internal/pkg/downstream"
	pkgmodels "github.com/Heethjain14/loan-management-system/internal/pkg/models"
	"github.com/Heethjain14/loan-management-system/internal/pkg/queue"
	"github.com/Heethjain14/loan-management-system/internal/pkg/store/models"
	"github.com/Heethjain14/loan-management-system/internal/service/loans"
	"github.com/Heethjain14/loan-management-system/internal/service/notifications"
	"github.com/Heethjain14/loan-management-system/internal/service/payments"
)

type LoanService interface {
	CreateApplication(ctx context.Context, terms loans.Terms) (*models.Application, error)
	ListApplications(ctx context.Context, query string) ([]models.Application, error)
	GetApplication(ctx context.Context, id string) (*models.Application, error)
	UpdateApplication(ctx context.Context, id string, terms loans.Terms) (*models.Application, error)
	DeleteApplication(ctx context.Context, id string) error
	ChangeStatus(ctx context.Context, id string, to models.ApplicationStatus) (*loans.TransitionResult, error)

	ListBorrowers(ctx context.Context, query string) ([]models.Borrower, error)
	GetBorrower(ctx context.Context, id string) (*models.Borrower, error)
	DeleteBorrower(ctx context.Context, id string) error
	AddPayment(ctx context.Context, borrowerID string, in loans.PaymentInput) (*models.Payment, error)
	ListPayments(ctx context.Context, borrowerID string) ([]models.Payment, error)
	DeletePayment(ctx context.Context, borrowerID, paymentID string) error
	Summary(ctx context.Context, borrowerID string) (*loans.BorrowerSummary, error)

	Dashboard(ctx context.Context) (*loans.Dashboard, error)
	SendReminder(ctx context.Context, borrowerID string, req loans.ReminderRequest) (string, *pkgmodels.PaymentReminder, error)
	Notify(ctx context.Context, req loans.NotifyRequest) (*downstream.EmailResult, error)
}

type NotificationService interface {
	SendEmail(ctx context.Context, req notifications.EmailRequest) (*notifications.SendResult, error)
	SendSMS(ctx context.Context, req notifications.SMSRequest) (*notifications.SendResult, error)
	QueueEmail(ctx context.Context, req notifications.EmailRequest) (string, error)
	QueueSMS(ctx context.Context, req notifications.SMSRequest) (string, error)
	SendPaymentReminder(ctx context.Context, r pkgmodels.PaymentReminder) ([]notifications.ReminderResult, error)
	GetJob(ctx context.Context, id string) (*queue.Job, error)
	History(ctx context.Context, limit int) ([]models.NotificationRecord, error)
}

type PaymentService interface {
	Process(ctx context.Context, req payments.ProcessRequest) (*payments.ProcessResult, error)
	Validate(req payments.ValidateRequest) payments.ValidationResult
	Refund(ctx context.Context, req payments.RefundRequest) (*payments.RefundResult, error)
	CreateIntent(ctx context.Context, req payments.IntentRequest) (*payments.IntentResult, error)
	Get(ctx context.Context, paymentID string) (*payments.Payment, error)
	History(ctx context.Context, borrowerID string) ([]payments.Payment, error)
}
