package stripeclient

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Heethjain14/loan-management-system/internal/pkg/config"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

var (
	ErrNotConfigured   = errors.New("Stripe is not configured")
	ErrPaymentNotFound = errors.New("Payment not found")
)

// Error carries the provider message of a failed Stripe call.
type Error struct {
	Code       string
	Message    string
	StatusCode int
	err        error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.err }

// IntentParams describes a PaymentIntent to create. Amounts are in minor units.
type IntentParams struct {
	AmountMinor     int64
	Currency        string
	PaymentMethodID string
	Description     string
	Confirm         bool
	Metadata        map[string]string
}

// RefundParams refunds the whole intent when AmountMinor is zero.
type RefundParams struct {
	PaymentIntentID string
	AmountMinor     int64
	Reason          string
}

type Client struct {
	api *client.API
}

// NewClient returns a client whose calls fail with ErrNotConfigured when no secret key is set.
func NewClient(cfg config.StripeConfig) *Client {
	if cfg.SecretKey == "" {
		return &Client{}
	}
	return NewClientWithBackends(cfg.SecretKey, nil)
}

// NewClientWithBackends builds a client against explicit backends; nil uses Stripe's defaults.
func NewClientWithBackends(secretKey string, backends *stripe.Backends) *Client {
	return &Client{api: client.New(secretKey, backends)}
}

func (c *Client) Configured() bool {
	return c != nil && c.api != nil
}

func (c *Client) CreateIntent(ctx context.Context, in IntentParams) (*stripe.PaymentIntent, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(in.AmountMinor),
		Currency: stripe.String(in.Currency),
		Metadata: in.Metadata,
	}
	params.Context = ctx
	if in.Description != "" {
		params.Description = stripe.String(in.Description)
	}
	if in.PaymentMethodID != "" {
		params.PaymentMethod = stripe.String(in.PaymentMethodID)
	}
	if in.Confirm {
		params.Confirm = stripe.Bool(true)
		// server-side confirmation cannot follow a redirect
		params.AutomaticPaymentMethods = &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		}
	}

	pi, err := c.api.PaymentIntents.New(params)
	if err != nil {
		return nil, wrap(err)
	}
	return pi, nil
}

func (c *Client) GetIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := c.api.PaymentIntents.Get(id, params)
	if err != nil {
		return nil, wrap(err)
	}
	return pi, nil
}

func (c *Client) Refund(ctx context.Context, in RefundParams) (*stripe.Refund, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	params := &stripe.RefundParams{PaymentIntent: stripe.String(in.PaymentIntentID)}
	params.Context = ctx
	if in.AmountMinor > 0 {
		params.Amount = stripe.Int64(in.AmountMinor)
	}
	if in.Reason != "" {
		params.Reason = stripe.String(in.Reason)
	}

	r, err := c.api.Refunds.New(params)
	if err != nil {
		return nil, wrap(err)
	}
	return r, nil
}

// SearchByBorrower lists the intents whose metadata carries borrowerID.
func (c *Client) SearchByBorrower(ctx context.Context, borrowerID string) ([]*stripe.PaymentIntent, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	params := &stripe.PaymentIntentSearchParams{}
	params.Context = ctx
	params.Query = fmt.Sprintf("metadata['borrowerId']:'%s'", strings.ReplaceAll(borrowerID, "'", `\'`))

	var out []*stripe.PaymentIntent
	iter := c.api.PaymentIntents.Search(params)
	for iter.Next() {
		out = append(out, iter.PaymentIntent())
	}
	if err := iter.Err(); err != nil {
		return nil, wrap(err)
	}
	return out, nil
}

func wrap(err error) error {
	var se *stripe.Error
	if !errors.As(err, &se) {
		return err
	}
	msg := se.Msg
	if msg == "" {
		msg = string(se.Code)
	}
	if se.Code == stripe.ErrorCodeResourceMissing {
		return fmt.Errorf("%w: %s", ErrPaymentNotFound, msg)
	}
	return &Error{Code: string(se.Code), Message: msg, StatusCode: se.HTTPStatusCode, err: se}
}
