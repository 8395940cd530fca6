package handlers

import (
	"net/http"

	"github.com/Heethjain14/loan-management-system/internal/app"
	"github.com/Heethjain14/loan-management-system/internal/app/response"
	"github.com/Heethjain14/loan-management-system/internal/service/payments"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	service app.PaymentService
}

func NewPaymentHandler(service app.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

func (h *PaymentHandler) Process(c *gin.Context) {
	var req payments.ProcessRequest
	if !response.Bind(c, &req) {
		return
	}
	res, err := h.service.Process(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"paymentId":     res.PaymentID,
		"status":        res.Status,
		"amount":        res.Amount,
		"method":        res.Method,
		"transactionId": res.TransactionID,
		"processedAt":   res.ProcessedAt,
	})
}

func (h *PaymentHandler) Validate(c *gin.Context) {
	var req payments.ValidateRequest
	if !response.Bind(c, &req) {
		return
	}
	res := h.service.Validate(req)
	response.Success(c, http.StatusOK, gin.H{
		"isValid":  res.IsValid,
		"errors":   res.Errors,
		"warnings": res.Warnings,
	})
}

func (h *PaymentHandler) Refund(c *gin.Context) {
	var req payments.RefundRequest
	if !response.Bind(c, &req) {
		return
	}
	res, err := h.service.Refund(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"refundId":    res.RefundID,
		"amount":      res.Amount,
		"status":      res.Status,
		"processedAt": res.ProcessedAt,
	})
}

func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	var req payments.IntentRequest
	if !response.Bind(c, &req) {
		return
	}
	res, err := h.service.CreateIntent(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"clientSecret":    res.ClientSecret,
		"paymentIntentId": res.PaymentIntentID,
		"amount":          res.Amount,
	})
}

func (h *PaymentHandler) GetPayment(c *gin.Context) {
	payment, err := h.service.Get(c.Request.Context(), c.Param("paymentId"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"data": payment})
}

func (h *PaymentHandler) History(c *gin.Context) {
	borrowerID := c.Param("borrowerId")
	history, err := h.service.History(c.Request.Context(), borrowerID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"borrowerId": borrowerID, "data": history})
}
