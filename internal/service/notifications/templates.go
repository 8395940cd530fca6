package notifications

import (
	"fmt"
	"math"

	"github.com/Heethjain14/loan-management-system/internal/pkg/models"
	"github.com/Heethjain14/loan-management-system/internal/pkg/utils/dates"

	"github.com/dustin/go-humanize"
)

const reminderHTML = `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #2563eb;">Payment Reminder</h2>
  <p>Hello %[1]s,</p>
  <p>This is a friendly reminder that you have a payment due.</p>
  <div style="background-color: #f3f4f6; padding: 20px; border-radius: 8px; margin: 20px 0;">
    <p style="margin: 0;"><strong>Due Amount:</strong> %[2]s</p>
    <p style="margin: 10px 0 0 0;"><strong>Due Date:</strong> %[3]s</p>
  </div>
  <p>Please make a payment at your earliest convenience.</p>
  <p>Thank you for your business.</p>
  <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 30px 0;">
  <p style="color: #6b7280; font-size: 12px;">This is an automated message. Please do not reply to this email.</p>
</div>`

const reminderText = "Hello %[1]s,\n\nThis is a friendly reminder that your due amount is %[2]s with a due date of %[3]s. " +
	"Please make a payment at your earliest convenience.\n\nThank you."

const reminderSMS = "Hi %[1]s, payment reminder: %[2]s due on %[3]s. Please make payment soon. Thank you!"

// FormatUSD renders 1234.5 as "$1,234.50".
func FormatUSD(amount float64) string {
	s := "$" + humanize.FormatFloat("#,###.##", math.Abs(amount))
	if amount < 0 {
		return "-" + s
	}
	return s
}

// FormatDueDate renders a YYYY-MM-DD or RFC 3339 date as M/D/YYYY and
// returns anything else unchanged.
func FormatDueDate(s string) string {
	t, err := dates.Parse(s)
	if err != nil {
		return s
	}
	return t.Format("1/2/2006")
}

func reminderEmail(r models.PaymentReminder) EmailRequest {
	amount, date := FormatUSD(r.DueAmount), FormatDueDate(r.DueDate)
	return EmailRequest{
		To:      r.BorrowerEmail,
		Subject: "Payment Due Reminder for " + r.BorrowerName,
		Body:    fmt.Sprintf(reminderText, r.BorrowerName, amount, date),
		HTML:    fmt.Sprintf(reminderHTML, r.BorrowerName, amount, date),
	}
}

func reminderSMSRequest(r models.PaymentReminder) SMSRequest {
	return SMSRequest{
		To:      r.BorrowerPhone,
		Message: fmt.Sprintf(reminderSMS, r.BorrowerName, FormatUSD(r.DueAmount), FormatDueDate(r.DueDate)),
	}
}
