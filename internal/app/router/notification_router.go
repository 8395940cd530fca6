package router

import (
	"github.com/Heethjain14/loan-management-system/internal/app"
	"github.com/Heethjain14/loan-management-system/internal/app/handlers"

	"github.com/gin-gonic/gin"
)

func SetupNotificationRouter(serviceName string, allowedOrigins []string, service app.NotificationService) *gin.Engine {
	r := newEngine(serviceName, allowedOrigins)
	notificationHandler := handlers.NewNotificationHandler(service)

	notifications := r.Group("/api/v1/notifications")
	notifications.POST("/email", notificationHandler.SendEmail)
	notifications.POST("/email/async", notificationHandler.QueueEmail)
	notifications.POST("/sms", notificationHandler.SendSMS)
	notifications.POST("/sms/async", notificationHandler.QueueSMS)
	notifications.POST("/payment-reminder", notificationHandler.PaymentReminder)
	notifications.GET("/jobs/:jobId", notificationHandler.GetJob)
	notifications.GET("/history", notificationHandler.History)

	return r
}
