package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/Heethjain14/loan-management-system/internal/pkg/config"
	"github.com/Heethjain14/loan-management-system/internal/pkg/log_messages"
	"github.com/Heethjain14/loan-management-system/internal/pkg/logger"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

var ErrNotConfigured = errors.New("SendGrid API key not configured")

// Sender is the part of *sendgrid.Client used here.
type Sender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

type Message struct {
	From    string
	To      string
	Subject string
	Text    string
	HTML    string
}

type Client struct {
	sender      Sender
	defaultFrom string
}

// NewClient returns a client whose sends fail with ErrNotConfigured when no API key is set.
func NewClient(cfg config.SendGridConfig) *Client {
	var sender Sender
	if cfg.APIKey != "" {
		sender = sendgrid.NewSendClient(cfg.APIKey)
	}
	return NewClientWithSender(sender, cfg.FromEmail)
}

func NewClientWithSender(sender Sender, defaultFrom string) *Client {
	return &Client{sender: sender, defaultFrom: defaultFrom}
}

func (c *Client) Configured() bool {
	return c != nil && c.sender != nil
}

// Send delivers msg and returns SendGrid's X-Message-Id.
func (c *Client) Send(ctx context.Context, msg Message) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	from := msg.From
	if from == "" {
		from = c.defaultFrom
	}

	contents := []*mail.Content{mail.NewContent("text/plain", msg.Text)}
	if msg.HTML != "" {
		contents = append(contents, mail.NewContent("text/html", msg.HTML))
	}
	m := mail.NewV3MailInit(mail.NewEmail("", from), msg.Subject, mail.NewEmail("", msg.To), contents...)

	resp, err := c.sender.SendWithContext(ctx, m)
	if err != nil {
		logger.CtxError(ctx, log_messages.EmailSendFailed, err, zap.String("to", msg.To))
		return "", err
	}
	if resp.StatusCode >= 300 {
		err := fmt.Errorf("sendgrid responded %d: %s", resp.StatusCode, resp.Body)
		logger.CtxError(ctx, log_messages.EmailSendFailed, err, zap.String("to", msg.To))
		return "", err
	}

	messageID := header(resp.Headers, "X-Message-Id")
	logger.CtxInfo(ctx, log_messages.EmailSent, zap.String("to", msg.To), zap.String("message_id", messageID))
	return messageID, nil
}

func header(headers map[string][]string, key string) string {
	if v := headers[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}
