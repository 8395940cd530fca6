package consts

const (
	SendEmailJob = "send-email"
	SendSMSJob   = "send-sms"
)

const (
	NotificationTypeEmail = "email"
	NotificationTypeSMS   = "sms"
)
