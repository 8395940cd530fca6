package payments

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/Heethjain14/loan-management-system/internal/pkg/consts"
	"github.com/Heethjain14/loan-management-system/internal/pkg/log_messages"
	"github.com/Heethjain14/loan-management-system/internal/pkg/logger"
	"github.com/Heethjain14/loan-management-system/internal/pkg/models"
	"github.com/Heethjain14/loan-management-system/internal/pkg/money"
	"github.com/Heethjain14/loan-management-system/internal/pkg/stripeclient"
	"github.com/Heethjain14/loan-management-system/internal/pkg/utils/dates"
	"github.com/Heethjain14/loan-management-system/internal/service/interfaces"

	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

const (
	MethodCard  = "card"
	MethodACH   = "ach"
	MethodCash  = "cash"
	MethodCheck = "check"

	defaultCurrency = "usd"
)

var ErrPaymentMethodRequired = errors.New("Payment method ID is required for card/ACH payments")

type ProcessRequest struct {
	BorrowerID      string            `json:"borrowerId" validate:"required,min=1"`
	Amount          float64           `json:"amount" validate:"gt=0"`
	Currency        string            `json:"currency,omitempty"`
	PaymentMethod   string            `json:"paymentMethod" validate:"required,oneof=card ach cash check"`
	PaymentMethodID string            `json:"paymentMethodId,omitempty"`
	Description     string            `json:"description,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

type ProcessResult struct {
	PaymentID     string    `json:"paymentId"`
	Status        string    `json:"status"`
	Amount        float64   `json:"amount"`
	Method        string    `json:"method"`
	TransactionID string    `json:"transactionId,omitempty"`
	ProcessedAt   time.Time `json:"processedAt"`
}

// ValidateRequest only requires presence of amount and dueAmount; the
// business rules in Validate report the rest.
type ValidateRequest struct {
	BorrowerID  string   `json:"borrowerId"`
	Amount      *float64 `json:"amount" validate:"required"`
	DueAmount   *float64 `json:"dueAmount" validate:"required,gte=0"`
	PaymentDate string   `json:"paymentDate,omitempty"`
}

type ValidationResult struct {
	IsValid  bool     `json:"isValid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

type RefundRequest struct {
	PaymentID string   `json:"paymentId" validate:"required,min=1"`
	Amount    *float64 `json:"amount,omitempty" validate:"omitempty,gt=0"`
	Reason    string   `json:"reason,omitempty"`
}

type RefundResult struct {
	RefundID    string    `json:"refundId"`
	Amount      float64   `json:"amount"`
	Status      string    `json:"status"`
	ProcessedAt time.Time `json:"processedAt"`
}

type IntentRequest struct {
	Amount     float64           `json:"amount" validate:"gt=0"`
	Currency   string            `json:"currency,omitempty"`
	BorrowerID string            `json:"borrowerId" validate:"required,min=1"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

type IntentResult struct {
	ClientSecret    string  `json:"clientSecret"`
	PaymentIntentID string  `json:"paymentIntentId"`
	Amount          float64 `json:"amount"`
}

// Payment is the public view of a Stripe PaymentIntent. Amount is in major units.
type Payment struct {
	ID       string            `json:"id"`
	Amount   float64           `json:"amount"`
	Currency string            `json:"currency"`
	Status   string            `json:"status"`
	Metadata map[string]string `json:"metadata"`
	Created  time.Time         `json:"created"`
}

type PaymentService struct {
	gateway  interfaces.PaymentGateway
	events   interfaces.EventPublisher
	receipts interfaces.ReceiptArchiver
	now      func() time.Time
	offline  func(time.Time) string
}

// NewPaymentService wires the gateway. events and receipts may be nil.
func NewPaymentService(gateway interfaces.PaymentGateway, events interfaces.EventPublisher, receipts interfaces.ReceiptArchiver) *PaymentService {
	return &PaymentService{
		gateway:  gateway,
		events:   events,
		receipts: receipts,
		now:      time.Now,
		offline:  offlinePaymentID,
	}
}

func (s *PaymentService) Process(ctx context.Context, req ProcessRequest) (*ProcessResult, error) {
	if req.Amount <= 0 {
		return nil, errors.New("Payment amount must be greater than zero")
	}

	var (
		res *ProcessResult
		err error
	)
	switch req.PaymentMethod {
	case MethodCard, MethodACH:
		res, err = s.processCard(ctx, req)
	case MethodCash, MethodCheck:
		res = s.processOffline(req)
	default:
		err = fmt.Errorf("Unsupported payment method: %s", req.PaymentMethod)
	}
	if err != nil {
		logger.CtxError(ctx, log_messages.PaymentFailed, err,
			zap.String("borrower_id", req.BorrowerID), zap.String("method", req.PaymentMethod))
		return nil, err
	}

	logger.CtxInfo(ctx, log_messages.PaymentProcessed,
		zap.String("payment_id", res.PaymentID), zap.String("status", res.Status), zap.String("method", res.Method))
	s.emit(ctx, res.PaymentID, models.PaymentEvent{
		Type:          consts.PaymentProcessedEvent,
		PaymentID:     res.PaymentID,
		BorrowerID:    req.BorrowerID,
		Amount:        res.Amount,
		Currency:      currencyOrDefault(req.Currency),
		Method:        res.Method,
		Status:        res.Status,
		TransactionID: res.TransactionID,
		Metadata:      req.Metadata,
		OccurredAt:    res.ProcessedAt,
	})
	return res, nil
}

func (s *PaymentService) processCard(ctx context.Context, req ProcessRequest) (*ProcessResult, error) {
	if req.PaymentMethodID == "" {
		return nil, ErrPaymentMethodRequired
	}
	description := req.Description
	if description == "" {
		description = "Payment for borrower " + req.BorrowerID
	}

	pi, err := s.gateway.CreateIntent(ctx, stripeclient.IntentParams{
		AmountMinor:     money.ToMinorUnits(req.Amount),
		Currency:        currencyOrDefault(req.Currency),
		PaymentMethodID: req.PaymentMethodID,
		Description:     description,
		Confirm:         true,
		Metadata:        withBorrower(req.Metadata, req.BorrowerID),
	})
	if err != nil {
		return nil, providerError("Payment processing failed", err)
	}

	return &ProcessResult{
		PaymentID:     pi.ID,
		Status:        string(pi.Status),
		Amount:        req.Amount,
		Method:        req.PaymentMethod,
		TransactionID: pi.ID,
		ProcessedAt:   s.now().UTC(),
	}, nil
}

func (s *PaymentService) processOffline(req ProcessRequest) *ProcessResult {
	now := s.now().UTC()
	return &ProcessResult{
		PaymentID:   s.offline(now),
		Status:      string(stripe.PaymentIntentStatusSucceeded),
		Amount:      req.Amount,
		Method:      req.PaymentMethod,
		ProcessedAt: now,
	}
}

// Validate applies the business rules without calling the provider.
func (s *PaymentService) Validate(req ValidateRequest) ValidationResult {
	res := ValidationResult{Errors: []string{}, Warnings: []string{}}
	amount, due := deref(req.Amount), deref(req.DueAmount)

	if amount <= 0 {
		res.Errors = append(res.Errors, "Payment amount must be greater than zero")
	}
	if money.ExceedsDueMargin(amount, due) {
		res.Warnings = append(res.Warnings, "Payment amount exceeds due amount by more than 10%")
	}
	if req.PaymentDate != "" {
		paid, err := dates.Parse(req.PaymentDate)
		switch {
		case err != nil:
			res.Errors = append(res.Errors, "Payment date must be a valid date")
		case paid.After(dates.StartOfDay(s.now().UTC())):
			res.Warnings = append(res.Warnings, "Payment date is in the future")
		}
	}
	if strings.TrimSpace(req.BorrowerID) == "" {
		res.Errors = append(res.Errors, "Borrower ID is required")
	}

	res.IsValid = len(res.Errors) == 0
	return res
}

func (s *PaymentService) Refund(ctx context.Context, req RefundRequest) (*RefundResult, error) {
	pi, err := s.gateway.GetIntent(ctx, req.PaymentID)
	if err != nil {
		return nil, s.refundFailed(ctx, req, err)
	}

	params := stripeclient.RefundParams{PaymentIntentID: req.PaymentID, Reason: req.Reason}
	if req.Amount != nil {
		params.AmountMinor = money.ToMinorUnits(*req.Amount)
	}
	refund, err := s.gateway.Refund(ctx, params)
	if err != nil {
		return nil, s.refundFailed(ctx, req, err)
	}

	amount := money.FromMinorUnits(refund.Amount)
	if refund.Amount == 0 {
		if req.Amount != nil {
			amount = *req.Amount
		} else {
			amount = money.FromMinorUnits(pi.Amount)
		}
	}

	res := &RefundResult{
		RefundID:    refund.ID,
		Amount:      amount,
		Status:      string(refund.Status),
		ProcessedAt: s.now().UTC(),
	}
	logger.CtxInfo(ctx, log_messages.RefundProcessed,
		zap.String("payment_id", req.PaymentID), zap.String("refund_id", res.RefundID), zap.Float64("amount", res.Amount))

	var borrowerID string
	if pi.Metadata != nil {
		borrowerID = pi.Metadata["borrowerId"]
	}
	s.emit(ctx, res.RefundID, models.PaymentEvent{
		Type:       consts.PaymentRefundedEvent,
		PaymentID:  req.PaymentID,
		RefundID:   res.RefundID,
		BorrowerID: borrowerID,
		Amount:     res.Amount,
		Currency:   string(pi.Currency),
		Status:     res.Status,
		OccurredAt: res.ProcessedAt,
	})
	return res, nil
}

func (s *PaymentService) refundFailed(ctx context.Context, req RefundRequest, err error) error {
	logger.CtxError(ctx, log_messages.RefundFailed, err, zap.String("payment_id", req.PaymentID))
	return providerError("Refund processing failed", err)
}

// CreateIntent creates an unconfirmed intent for client-side confirmation.
func (s *PaymentService) CreateIntent(ctx context.Context, req IntentRequest) (*IntentResult, error) {
	pi, err := s.gateway.CreateIntent(ctx, stripeclient.IntentParams{
		AmountMinor: money.ToMinorUnits(req.Amount),
		Currency:    currencyOrDefault(req.Currency),
		Metadata:    withBorrower(req.Metadata, req.BorrowerID),
	})
	if err != nil {
		return nil, providerError("Failed to create payment intent", err)
	}
	logger.CtxInfo(ctx, log_messages.PaymentIntentCreated, zap.String("payment_intent_id", pi.ID))
	return &IntentResult{
		ClientSecret:    pi.ClientSecret,
		PaymentIntentID: pi.ID,
		Amount:          req.Amount,
	}, nil
}

// Get returns stripeclient.ErrPaymentNotFound for an unknown id.
func (s *PaymentService) Get(ctx context.Context, paymentID string) (*Payment, error) {
	pi, err := s.gateway.GetIntent(ctx, paymentID)
	if err != nil {
		switch {
		case errors.Is(err, stripeclient.ErrPaymentNotFound):
			return nil, stripeclient.ErrPaymentNotFound
		case errors.Is(err, stripeclient.ErrNotConfigured):
			return nil, err
		}
		logger.CtxWarn(ctx, log_messages.PaymentLookupFailed, zap.String("payment_id", paymentID), zap.Error(err))
		return nil, err
	}
	p := toPayment(pi)
	return &p, nil
}

// History lists the borrower's intents straight from Stripe. Without a
// configured gateway it returns an empty list.
func (s *PaymentService) History(ctx context.Context, borrowerID string) ([]Payment, error) {
	intents, err := s.gateway.SearchByBorrower(ctx, borrowerID)
	if err != nil {
		if errors.Is(err, stripeclient.ErrNotConfigured) {
			return []Payment{}, nil
		}
		logger.CtxError(ctx, log_messages.PaymentHistoryFailure, err, zap.String("borrower_id", borrowerID))
		return nil, err
	}
	out := make([]Payment, 0, len(intents))
	for _, pi := range intents {
		out = append(out, toPayment(pi))
	}
	return out, nil
}

// emit publishes the event and archives the receipt. Failures are logged only.
func (s *PaymentService) emit(ctx context.Context, key string, event models.PaymentEvent) {
	if s.events != nil {
		if err := s.events.PublishEvent(ctx, event.Type, key, event); err != nil {
			logger.CtxWarn(ctx, log_messages.PaymentEventFailed, zap.String("key", key), zap.Error(err))
		}
	}
	if s.receipts != nil {
		if _, err := s.receipts.UploadJSON(ctx, key, event); err != nil {
			logger.CtxWarn(ctx, log_messages.PaymentReceiptFailed, zap.String("key", key), zap.Error(err))
		}
	}
}

func toPayment(pi *stripe.PaymentIntent) Payment {
	md := pi.Metadata
	if md == nil {
		md = map[string]string{}
	}
	return Payment{
		ID:       pi.ID,
		Amount:   money.FromMinorUnits(pi.Amount),
		Currency: string(pi.Currency),
		Status:   string(pi.Status),
		Metadata: md,
		Created:  time.Unix(pi.Created, 0).UTC(),
	}
}

// providerError prefixes provider failures. Not-configured and not-found
// errors keep their own message.
func providerError(prefix string, err error) error {
	if errors.Is(err, stripeclient.ErrNotConfigured) {
		return err
	}
	if errors.Is(err, stripeclient.ErrPaymentNotFound) {
		return stripeclient.ErrPaymentNotFound
	}
	return fmt.Errorf("%s: %w", prefix, err)
}

func withBorrower(md map[string]string, borrowerID string) map[string]string {
	out := make(map[string]string, len(md)+1)
	out["borrowerId"] = borrowerID
	for k, v := range md {
		out[k] = v
	}
	return out
}

func currencyOrDefault(c string) string {
	if c == "" {
		return defaultCurrency
	}
	return strings.ToLower(c)
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// offlinePaymentID returns offline_<unixMillis>_<9 base36 chars>.
func offlinePaymentID(now time.Time) string {
	suffix := make([]byte, 9)
	for i := range suffix {
		suffix[i] = base36[rand.IntN(len(base36))]
	}
	return "offline_" + strconv.FormatInt(now.UnixMilli(), 10) + "_" + string(suffix)
}
