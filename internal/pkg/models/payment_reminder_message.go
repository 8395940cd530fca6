package models

// PaymentReminder asks the notification service to remind a borrower of an
// upcoming payment. It is both the HTTP request body and the Pub/Sub payload.
type PaymentReminder struct {
	BorrowerName  string  `json:"borrowerName" validate:"required,min=1"`
	BorrowerEmail string  `json:"borrowerEmail" validate:"required,email"`
	BorrowerPhone string  `json:"borrowerPhone,omitempty"`
	DueAmount     float64 `json:"dueAmount" validate:"gt=0"`
	DueDate       string  `json:"dueDate" validate:"required"`
	SendEmail     *bool   `json:"sendEmail,omitempty"`
	SendSMS       *bool   `json:"sendSMS,omitempty"`
}

// WantsEmail defaults to true.
func (r PaymentReminder) WantsEmail() bool {
	return r.SendEmail == nil || *r.SendEmail
}

// WantsSMS defaults to false and needs a phone number.
func (r PaymentReminder) WantsSMS() bool {
	return r.SendSMS != nil && *r.SendSMS && r.BorrowerPhone != ""
}
