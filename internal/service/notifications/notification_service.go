package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Heethjain14/loan-management-system/internal/pkg/consts"
	"github.com/Heethjain14/loan-management-system/internal/pkg/email"
	"github.com/Heethjain14/loan-management-system/internal/pkg/log_messages"
	"github.com/Heethjain14/loan-management-system/internal/pkg/logger"
	"github.com/Heethjain14/loan-management-system/internal/pkg/models"
	"github.com/Heethjain14/loan-management-system/internal/pkg/pubsub"
	"github.com/Heethjain14/loan-management-system/internal/pkg/queue"
	"github.com/Heethjain14/loan-management-system/internal/pkg/sms"
	storemodels "github.com/Heethjain14/loan-management-system/internal/pkg/store/models"
	"github.com/Heethjain14/loan-management-system/internal/pkg/validation"
	"github.com/Heethjain14/loan-management-system/internal/service/interfaces"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 200
)

type EmailRequest struct {
	To      string `json:"to" validate:"required,email"`
	Subject string `json:"subject" validate:"required,min=1"`
	Body    string `json:"body" validate:"required,min=1"`
	HTML    string `json:"html,omitempty"`
	From    string `json:"from,omitempty" validate:"omitempty,email"`
}

type SMSRequest struct {
	To      string `json:"to" validate:"required,min=10"`
	Message string `json:"message" validate:"required,min=1,max=1600"`
}

type SendResult struct {
	MessageID string    `json:"messageId"`
	SentAt    time.Time `json:"sentAt"`
}

type ReminderResult struct {
	Type      string    `json:"type"`
	MessageID string    `json:"messageId"`
	SentAt    time.Time `json:"sentAt"`
}

// NotificationService sends email and SMS now or through the job queue.
type NotificationService struct {
	email   interfaces.EmailSender
	sms     interfaces.SMSSender
	jobs    interfaces.JobQueue
	history interfaces.NotificationHistory
	now     func() time.Time
}

// NewNotificationService wires the senders and queue. history may be nil.
func NewNotificationService(
	emailSender interfaces.EmailSender,
	smsSender interfaces.SMSSender,
	jobs interfaces.JobQueue,
	history interfaces.NotificationHistory,
) *NotificationService {
	return &NotificationService{
		email:   emailSender,
		sms:     smsSender,
		jobs:    jobs,
		history: history,
		now:     time.Now,
	}
}

func (s *NotificationService) SendEmail(ctx context.Context, req EmailRequest) (*SendResult, error) {
	return s.sendEmail(ctx, req, "")
}

func (s *NotificationService) sendEmail(ctx context.Context, req EmailRequest, jobID string) (*SendResult, error) {
	html := req.HTML
	if html == "" {
		html = strings.ReplaceAll(req.Body, "\n", "<br>")
	}

	id, err := s.email.Send(ctx, email.Message{
		From:    req.From,
		To:      req.To,
		Subject: req.Subject,
		Text:    req.Body,
		HTML:    html,
	})
	if err != nil {
		if errors.Is(err, email.ErrNotConfigured) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", log_messages.EmailSendFailed, err)
	}

	res := &SendResult{MessageID: id, SentAt: s.now().UTC()}
	s.record(ctx, consts.NotificationTypeEmail, req.To, req.Subject, res, jobID)
	return res, nil
}

func (s *NotificationService) SendSMS(ctx context.Context, req SMSRequest) (*SendResult, error) {
	return s.sendSMS(ctx, req, "")
}

func (s *NotificationService) sendSMS(ctx context.Context, req SMSRequest, jobID string) (*SendResult, error) {
	id, err := s.sms.Send(ctx, req.To, req.Message)
	if err != nil {
		if errors.Is(err, sms.ErrNotConfigured) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", log_messages.SMSSendFailed, err)
	}

	res := &SendResult{MessageID: id, SentAt: s.now().UTC()}
	s.record(ctx, consts.NotificationTypeSMS, req.To, "", res, jobID)
	return res, nil
}

func (s *NotificationService) record(ctx context.Context, kind, to, subject string, res *SendResult, jobID string) {
	if s.history == nil {
		return
	}
	err := s.history.Record(ctx, &storemodels.NotificationRecord{
		ID:        uuid.New().String(),
		Type:      kind,
		To:        to,
		Subject:   subject,
		MessageID: res.MessageID,
		Status:    "sent",
		JobID:     jobID,
		SentAt:    res.SentAt,
	})
	if err != nil {
		logger.CtxWarn(ctx, log_messages.HistoryWriteErr, zap.String("type", kind), zap.Error(err))
	}
}

// QueueEmail enqueues a send-email job and returns its id.
func (s *NotificationService) QueueEmail(ctx context.Context, req EmailRequest) (string, error) {
	return s.enqueue(ctx, consts.SendEmailJob, req)
}

// QueueSMS enqueues a send-sms job and returns its id.
func (s *NotificationService) QueueSMS(ctx context.Context, req SMSRequest) (string, error) {
	return s.enqueue(ctx, consts.SendSMSJob, req)
}

func (s *NotificationService) enqueue(ctx context.Context, name string, data any) (string, error) {
	job, err := s.jobs.Add(ctx, name, data)
	if err != nil {
		return "", err
	}
	return job.ID, nil
}

// SendPaymentReminder sends the reminder email and, when asked for and a
// phone number is present, the reminder SMS. It stops at the first failure.
func (s *NotificationService) SendPaymentReminder(ctx context.Context, r models.PaymentReminder) ([]ReminderResult, error) {
	results := []ReminderResult{}
	if r.WantsEmail() {
		res, err := s.SendEmail(ctx, reminderEmail(r))
		if err != nil {
			return nil, err
		}
		results = append(results, ReminderResult{Type: consts.NotificationTypeEmail, MessageID: res.MessageID, SentAt: res.SentAt})
	}
	if r.WantsSMS() {
		res, err := s.SendSMS(ctx, reminderSMSRequest(r))
		if err != nil {
			return nil, err
		}
		results = append(results, ReminderResult{Type: consts.NotificationTypeSMS, MessageID: res.MessageID, SentAt: res.SentAt})
	}
	return results, nil
}

// QueuePaymentReminder renders the reminder and enqueues one job per channel.
func (s *NotificationService) QueuePaymentReminder(ctx context.Context, r models.PaymentReminder) ([]string, error) {
	var ids []string
	if r.WantsEmail() {
		id, err := s.QueueEmail(ctx, reminderEmail(r))
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	if r.WantsSMS() {
		id, err := s.QueueSMS(ctx, reminderSMSRequest(r))
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// HandleReminderMessage is the Pub/Sub handler for payment-reminder events.
// Undecodable or invalid reminders are discarded; enqueue failures are
// returned so the message is redelivered.
func (s *NotificationService) HandleReminderMessage(ctx context.Context, data []byte, attributes map[string]string) error {
	if et := attributes["eventType"]; et != "" && et != consts.PaymentReminderEvent {
		return fmt.Errorf("%w: unexpected event type %q", pubsub.ErrDiscard, et)
	}

	var r models.PaymentReminder
	if err := json.Unmarshal(data, &r); err != nil {
		return fmt.Errorf("%w: %v", pubsub.ErrDiscard, err)
	}
	if err := validation.Struct(r); err != nil {
		return fmt.Errorf("%w: %v", pubsub.ErrDiscard, err)
	}

	ids, err := s.QueuePaymentReminder(ctx, r)
	if err != nil {
		return err
	}
	logger.CtxInfo(ctx, log_messages.ReminderQueued, zap.Strings("job_ids", ids))
	return nil
}

// RegisterJobHandlers binds the send-email and send-sms jobs to w.
func (s *NotificationService) RegisterJobHandlers(w *queue.Worker) {
	w.Register(consts.SendEmailJob, s.handleEmailJob)
	w.Register(consts.SendSMSJob, s.handleSMSJob)
}

func (s *NotificationService) handleEmailJob(ctx context.Context, job *queue.Job) (any, error) {
	var req EmailRequest
	if err := job.Decode(&req); err != nil {
		return nil, err
	}
	res, err := s.sendEmail(ctx, req, job.ID)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *NotificationService) handleSMSJob(ctx context.Context, job *queue.Job) (any, error) {
	var req SMSRequest
	if err := job.Decode(&req); err != nil {
		return nil, err
	}
	res, err := s.sendSMS(ctx, req, job.ID)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *NotificationService) GetJob(ctx context.Context, id string) (*queue.Job, error) {
	return s.jobs.GetJob(ctx, id)
}

// History returns the most recent sends, newest first. limit is clamped to
// 1..MaxHistoryLimit.
func (s *NotificationService) History(ctx context.Context, limit int) ([]storemodels.NotificationRecord, error) {
	if s.history == nil {
		return []storemodels.NotificationRecord{}, nil
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	limit = min(limit, MaxHistoryLimit)

	records, err := s.history.Recent(ctx, int64(limit))
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []storemodels.NotificationRecord{}
	}
	return records, nil
}
