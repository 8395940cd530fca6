package downstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Heethjain14/loan-management-system/internal/pkg/logger"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const emailPath = "/api/v1/notifications/email"

type EmailRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	HTML    string `json:"html,omitempty"`
}

type EmailResult struct {
	MessageID string `json:"messageId"`
	SentAt    string `json:"sentAt"`
}

type envelope struct {
	Success   bool            `json:"success"`
	MessageID string          `json:"messageId"`
	SentAt    string          `json:"sentAt"`
	Error     json.RawMessage `json:"error"`
}

// NotificationClient calls the notification service over HTTP.
type NotificationClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewNotificationClient(baseURL string, timeout time.Duration) *NotificationClient {
	return NewNotificationClientWithHTTPClient(baseURL, &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	})
}

func NewNotificationClientWithHTTPClient(baseURL string, httpClient *http.Client) *NotificationClient {
	return &NotificationClient{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// SendEmail posts to the synchronous email endpoint. Non-2xx answers are
// returned as errors carrying the service's error message.
func (c *NotificationClient) SendEmail(ctx context.Context, in EmailRequest) (*EmailResult, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+emailPath, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if id := logger.RequestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = res.Body.Close()
	}()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	var env envelope
	decodeErr := json.Unmarshal(body, &env)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("notification service responded %d: %s", res.StatusCode, errorMessage(env.Error, body, decodeErr))
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decoding notification service response: %w", decodeErr)
	}
	return &EmailResult{MessageID: env.MessageID, SentAt: env.SentAt}, nil
}

func errorMessage(raw json.RawMessage, body []byte, decodeErr error) string {
	if decodeErr != nil || len(raw) == 0 {
		return strings.TrimSpace(string(body))
	}
	var msg string
	if err := json.Unmarshal(raw, &msg); err == nil {
		return msg
	}
	return string(raw)
}
