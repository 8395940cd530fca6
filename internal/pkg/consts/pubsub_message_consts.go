package consts

const (
	PaymentReminderEvent = "payment-reminder"

	PaymentProcessedEvent = "payment.processed"
	PaymentRefundedEvent  = "payment.refunded"
)
