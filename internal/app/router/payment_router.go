package router

import (
	"github.com/Heethjain14/loan-management-system/internal/app"
	"github.com/Heethjain14/loan-management-system/internal/app/handlers"

	"github.com/gin-gonic/gin"
)

func SetupPaymentRouter(serviceName string, allowedOrigins []string, service app.PaymentService) *gin.Engine {
	r := newEngine(serviceName, allowedOrigins)
	paymentHandler := handlers.NewPaymentHandler(service)

	payments := r.Group("/api/v1/payments")
	payments.POST("/process", paymentHandler.Process)
	payments.POST("/validate", paymentHandler.Validate)
	payments.POST("/refund", paymentHandler.Refund)
	payments.POST("/create-intent", paymentHandler.CreateIntent)
	payments.GET("/history/:borrowerId", paymentHandler.History)
	payments.GET("/:paymentId", paymentHandler.GetPayment)

	return r
}
