package models

import "time"

// PaymentEvent is published to Kafka and archived as a receipt after a
// payment or refund succeeds.
type PaymentEvent struct {
	Type          string            `json:"type"`
	PaymentID     string            `json:"paymentId"`
	RefundID      string            `json:"refundId,omitempty"`
	BorrowerID    string            `json:"borrowerId,omitempty"`
	Amount        float64           `json:"amount"`
	Currency      string            `json:"currency,omitempty"`
	Method        string            `json:"method,omitempty"`
	Status        string            `json:"status"`
	TransactionID string            `json:"transactionId,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	OccurredAt    time.Time         `json:"occurredAt"`
}
