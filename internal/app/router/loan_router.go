package router

import (
	"github.com/Heethjain14/loan-management-system/internal/app"
	"github.com/Heethjain14/loan-management-system/internal/app/handlers"

	"github.com/gin-gonic/gin"
)

func SetupLoanRouter(serviceName string, allowedOrigins []string, service app.LoanService) *gin.Engine {
	r := newEngine(serviceName, allowedOrigins)
	loanHandler := handlers.NewLoanHandler(service)

	v1 := r.Group("/api/v1")

	applications := v1.Group("/applications")
	applications.POST("", loanHandler.CreateApplication)
	applications.GET("", loanHandler.ListApplications)
	applications.GET("/:id", loanHandler.GetApplication)
	applications.PUT("/:id", loanHandler.UpdateApplication)
	applications.DELETE("/:id", loanHandler.DeleteApplication)
	applications.POST("/:id/status", loanHandler.ChangeStatus)

	borrowers := v1.Group("/borrowers")
	borrowers.GET("", loanHandler.ListBorrowers)
	borrowers.GET("/:id", loanHandler.GetBorrower)
	borrowers.DELETE("/:id", loanHandler.DeleteBorrower)
	borrowers.GET("/:id/payments", loanHandler.ListPayments)
	borrowers.POST("/:id/payments", loanHandler.AddPayment)
	borrowers.DELETE("/:id/payments/:paymentId", loanHandler.DeletePayment)
	borrowers.GET("/:id/summary", loanHandler.Summary)
	borrowers.POST("/:id/reminders", loanHandler.SendReminder)

	v1.GET("/dashboard", loanHandler.Dashboard)
	v1.POST("/notify", loanHandler.Notify)

	return r
}
