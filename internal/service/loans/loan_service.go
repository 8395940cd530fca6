package loans

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Heethjain14/loan-management-system/internal/pkg/consts"
	"github.com/Heethjain14/loan-management-system/internal/pkg/downstream"
	"github.com/Heethjain14/loan-management-system/internal/pkg/log_messages"
	"github.com/Heethjain14/loan-management-system/internal/pkg/logger"
	"github.com/Heethjain14/loan-management-system/internal/pkg/money"
	pkgmodels "github.com/Heethjain14/loan-management-system/internal/pkg/models"
	"github.com/Heethjain14/loan-management-system/internal/pkg/store/models"
	"github.com/Heethjain14/loan-management-system/internal/pkg/utils/dates"
	"github.com/Heethjain14/loan-management-system/internal/service/interfaces"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrRemindersDisabled = errors.New("payment reminders are not configured")
	ErrRelayDisabled     = errors.New("notification service is not configured")
	ErrNothingDue        = errors.New("borrower has no amount due")
)

const defaultFanout = 8

// LoanService owns applications, borrowers and their payments.
type LoanService struct {
	store     interfaces.LoanStore
	reminders interfaces.ReminderPublisher
	relay     interfaces.EmailRelay
	fanout    int
	now       func() time.Time
	newID     func() string
}

// NewLoanService wires the service. reminders and relay may be nil, in which
// case SendReminder and Notify report that they are not configured.
func NewLoanService(store interfaces.LoanStore, reminders interfaces.ReminderPublisher, relay interfaces.EmailRelay) *LoanService {
	return &LoanService{
		store:     store,
		reminders: reminders,
		relay:     relay,
		fanout:    defaultFanout,
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
	}
}

func (s *LoanService) CreateApplication(ctx context.Context, terms Terms) (*models.Application, error) {
	app := &models.Application{}
	if err := terms.Apply(app); err != nil {
		return nil, err
	}

	snNo, err := s.store.NextSequence(ctx, consts.ApplicationCounter)
	if err != nil {
		return nil, fmt.Errorf("allocating application number: %w", err)
	}

	now := s.now().UTC()
	app.ID = s.newID()
	app.SnNo = snNo
	app.Status = models.StatusPending
	app.CreatedAt = now
	app.UpdatedAt = now

	if err := s.store.CreateApplication(ctx, app); err != nil {
		return nil, err
	}
	logger.CtxInfo(ctx, log_messages.ApplicationCreated,
		zap.String("application_id", app.ID), zap.Int64("sn_no", app.SnNo))
	return app, nil
}

// ListApplications returns every application, filtered by a case-insensitive
// name substring when query is non-empty.
func (s *LoanService) ListApplications(ctx context.Context, query string) ([]models.Application, error) {
	apps, err := s.store.ListApplications(ctx)
	if err != nil {
		return nil, err
	}
	if query == "" {
		return apps, nil
	}
	out := make([]models.Application, 0, len(apps))
	for _, a := range apps {
		if nameMatches(a.Name, query) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *LoanService) GetApplication(ctx context.Context, id string) (*models.Application, error) {
	return s.store.GetApplication(ctx, id)
}

func (s *LoanService) UpdateApplication(ctx context.Context, id string, terms Terms) (*models.Application, error) {
	app, err := s.store.GetApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := terms.Apply(app); err != nil {
		return nil, err
	}
	app.UpdatedAt = s.now().UTC()

	if err := s.store.UpdateApplication(ctx, app); err != nil {
		return nil, err
	}
	logger.CtxInfo(ctx, log_messages.ApplicationUpdated, zap.String("application_id", id))
	return app, nil
}

func (s *LoanService) DeleteApplication(ctx context.Context, id string) error {
	return s.store.DeleteApplication(ctx, id)
}

// ChangeStatus applies Transition and persists its result. On approval the
// borrower gets the next borrower number; a number drawn for a write that
// then fails is not reused.
func (s *LoanService) ChangeStatus(ctx context.Context, id string, to models.ApplicationStatus) (*TransitionResult, error) {
	current, err := s.store.GetApplication(ctx, id)
	if err != nil {
		return nil, err
	}

	res, err := Transition(*current, to, s.now().UTC())
	if err != nil {
		return nil, err
	}

	if res.Borrower != nil {
		n, err := s.store.NextSequence(ctx, consts.BorrowerCounter)
		if err != nil {
			return nil, fmt.Errorf("allocating borrower number: %w", err)
		}
		res.Borrower.NumericID = n
		res.Borrower.ID = strconv.FormatInt(n, 10)
	}

	if err := s.store.CommitTransition(ctx, current.Status, &res.Application, res.Borrower); err != nil {
		return nil, err
	}

	logger.CtxInfo(ctx, log_messages.ApplicationTransition,
		zap.String("application_id", id), zap.String("status", string(to)))
	if res.Borrower != nil {
		logger.CtxInfo(ctx, log_messages.BorrowerCreated,
			zap.String("borrower_id", res.Borrower.ID), zap.String("application_id", id))
	}
	return &res, nil
}

func (s *LoanService) ListBorrowers(ctx context.Context, query string) ([]models.Borrower, error) {
	borrowers, err := s.store.ListBorrowers(ctx)
	if err != nil {
		return nil, err
	}
	if query == "" {
		return borrowers, nil
	}
	out := make([]models.Borrower, 0, len(borrowers))
	for _, b := range borrowers {
		if nameMatches(b.Name, query) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *LoanService) GetBorrower(ctx context.Context, id string) (*models.Borrower, error) {
	return s.store.GetBorrower(ctx, id)
}

// DeleteBorrower removes the borrower together with its payments.
func (s *LoanService) DeleteBorrower(ctx context.Context, id string) error {
	return s.store.DeleteBorrower(ctx, id)
}

// PaymentInput is a repayment entered by staff.
type PaymentInput struct {
	Amount float64 `json:"amount" validate:"gt=0"`
	Date   string  `json:"date" validate:"required"`
}

func (s *LoanService) AddPayment(ctx context.Context, borrowerID string, in PaymentInput) (*models.Payment, error) {
	date, err := dates.Parse(in.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: date %q", ErrInvalidDates, in.Date)
	}

	p := &models.Payment{
		ID:         s.newID(),
		BorrowerID: borrowerID,
		Amount:     in.Amount,
		Date:       date.Format(consts.DateLayout),
		CreatedAt:  s.now().UTC(),
	}
	if err := s.store.AddPayment(ctx, borrowerID, p); err != nil {
		return nil, err
	}
	logger.CtxInfo(ctx, log_messages.PaymentRecorded,
		zap.String("borrower_id", borrowerID), zap.String("payment_id", p.ID), zap.Float64("amount", p.Amount))
	return p, nil
}

// ListPayments returns the borrower's payments, oldest date first.
func (s *LoanService) ListPayments(ctx context.Context, borrowerID string) ([]models.Payment, error) {
	return s.store.ListPayments(ctx, borrowerID)
}

func (s *LoanService) DeletePayment(ctx context.Context, borrowerID, paymentID string) error {
	return s.store.DeletePayment(ctx, borrowerID, paymentID)
}

type BorrowerSummary struct {
	BorrowerID string  `json:"borrowerId"`
	TotalPaid  float64 `json:"totalPaid"`
	Remaining  float64 `json:"remaining"`
	DueAmount  float64 `json:"dueAmount"`
	DueDate    string  `json:"dueDate"`
	Payments   int     `json:"payments"`
}

// Summary reports what a borrower has paid. Remaining is measured against
// the principal, DueAmount against the total with interest.
func (s *LoanService) Summary(ctx context.Context, borrowerID string) (*BorrowerSummary, error) {
	b, err := s.store.GetBorrower(ctx, borrowerID)
	if err != nil {
		return nil, err
	}
	payments, err := s.store.ListPayments(ctx, borrowerID)
	if err != nil {
		return nil, err
	}
	return summarize(b, payments), nil
}

func summarize(b *models.Borrower, payments []models.Payment) *BorrowerSummary {
	paid := sumPayments(payments)
	return &BorrowerSummary{
		BorrowerID: b.ID,
		TotalPaid:  paid,
		Remaining:  money.Sub(b.LoanAmount, paid),
		DueAmount:  money.Due(b.TotalAmount, paid),
		DueDate:    dueDate(b),
		Payments:   len(payments),
	}
}

// ReminderRequest names the contact details a reminder goes to.
type ReminderRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone,omitempty"`
	SendEmail *bool  `json:"sendEmail,omitempty"`
	SendSMS   *bool  `json:"sendSMS,omitempty"`
}

// SendReminder publishes a payment-reminder event for the borrower's current
// due amount and returns the Pub/Sub message id.
func (s *LoanService) SendReminder(ctx context.Context, borrowerID string, req ReminderRequest) (string, *pkgmodels.PaymentReminder, error) {
	if s.reminders == nil {
		return "", nil, ErrRemindersDisabled
	}
	b, err := s.store.GetBorrower(ctx, borrowerID)
	if err != nil {
		return "", nil, err
	}
	payments, err := s.store.ListPayments(ctx, borrowerID)
	if err != nil {
		return "", nil, err
	}
	summary := summarize(b, payments)
	if summary.DueAmount <= 0 {
		return "", nil, ErrNothingDue
	}

	reminder := &pkgmodels.PaymentReminder{
		BorrowerName:  b.Name,
		BorrowerEmail: req.Email,
		BorrowerPhone: req.Phone,
		DueAmount:     summary.DueAmount,
		DueDate:       summary.DueDate,
		SendEmail:     req.SendEmail,
		SendSMS:       req.SendSMS,
	}
	msgID, err := s.reminders.PublishJSON(ctx, consts.PaymentReminderEvent, reminder)
	if err != nil {
		return "", nil, err
	}
	logger.CtxInfo(ctx, log_messages.ReminderPublished,
		zap.String("borrower_id", borrowerID), zap.String("message_id", msgID))
	return msgID, reminder, nil
}

type NotifyRequest struct {
	To      string `json:"to" validate:"required,email"`
	Subject string `json:"subject" validate:"required,min=1"`
	Body    string `json:"body" validate:"required,min=1"`
}

// Notify relays an email through the notification service.
func (s *LoanService) Notify(ctx context.Context, req NotifyRequest) (*downstream.EmailResult, error) {
	if s.relay == nil {
		return nil, ErrRelayDisabled
	}
	return s.relay.SendEmail(ctx, downstream.EmailRequest{To: req.To, Subject: req.Subject, Body: req.Body})
}

func sumPayments(payments []models.Payment) float64 {
	amounts := make([]float64, len(payments))
	for i, p := range payments {
		amounts[i] = p.Amount
	}
	return money.Sum(amounts...)
}

func dueDate(b *models.Borrower) string {
	if b.DueDate != "" {
		return b.DueDate
	}
	return b.EndDate
}

func nameMatches(name, query string) bool {
	return strings.Contains(strings.ToLower(name), strings.ToLower(strings.TrimSpace(query)))
}
