package sms

import (
	"context"
	"errors"

	"github.com/Heethjain14/loan-management-system/internal/pkg/config"
	"github.com/Heethjain14/loan-management-system/internal/pkg/log_messages"
	"github.com/Heethjain14/loan-management-system/internal/pkg/logger"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

var ErrNotConfigured = errors.New("Twilio not configured")

// MessageCreator is satisfied by twilio's *openapi.ApiService.
type MessageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

type Client struct {
	api  MessageCreator
	from string
}

func NewClient(cfg config.TwilioConfig) *Client {
	if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.PhoneNumber == "" {
		return &Client{}
	}
	rc := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return NewClientWithCreator(rc.Api, cfg.PhoneNumber)
}

func NewClientWithCreator(api MessageCreator, from string) *Client {
	return &Client{api: api, from: from}
}

func (c *Client) Configured() bool {
	return c != nil && c.api != nil && c.from != ""
}

// Send returns the Twilio message SID.
func (c *Client) Send(ctx context.Context, to, body string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(c.from)
	params.SetBody(body)

	resp, err := c.api.CreateMessage(params)
	if err != nil {
		logger.CtxError(ctx, log_messages.SMSSendFailed, err, zap.String("to", to))
		return "", err
	}

	var sid string
	if resp != nil && resp.Sid != nil {
		sid = *resp.Sid
	}
	logger.CtxInfo(ctx, log_messages.SMSSent, zap.String("to", to), zap.String("sid", sid))
	return sid, nil
}
