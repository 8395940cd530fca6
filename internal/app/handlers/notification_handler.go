package handlers

import (
	"net/http"
	"strconv"

	"github.com/Heethjain14/loan-management-system/internal/app"
	"github.com/Heethjain14/loan-management-system/internal/app/response"
	"github.com/Heethjain14/loan-management-system/internal/pkg/models"
	"github.com/Heethjain14/loan-management-system/internal/service/notifications"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	service app.NotificationService
}

func NewNotificationHandler(service app.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

func (h *NotificationHandler) SendEmail(c *gin.Context) {
	var req notifications.EmailRequest
	if !response.Bind(c, &req) {
		return
	}
	res, err := h.service.SendEmail(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"messageId": res.MessageID, "sentAt": res.SentAt})
}

func (h *NotificationHandler) QueueEmail(c *gin.Context) {
	var req notifications.EmailRequest
	if !response.Bind(c, &req) {
		return
	}
	id, err := h.service.QueueEmail(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	queued(c, id)
}

func (h *NotificationHandler) SendSMS(c *gin.Context) {
	var req notifications.SMSRequest
	if !response.Bind(c, &req) {
		return
	}
	res, err := h.service.SendSMS(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"messageId": res.MessageID, "sentAt": res.SentAt})
}

func (h *NotificationHandler) QueueSMS(c *gin.Context) {
	var req notifications.SMSRequest
	if !response.Bind(c, &req) {
		return
	}
	id, err := h.service.QueueSMS(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	queued(c, id)
}

func (h *NotificationHandler) PaymentReminder(c *gin.Context) {
	var req models.PaymentReminder
	if !response.Bind(c, &req) {
		return
	}
	results, err := h.service.SendPaymentReminder(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"results": results})
}

func (h *NotificationHandler) GetJob(c *gin.Context) {
	job, err := h.service.GetJob(c.Request.Context(), c.Param("jobId"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"job": gin.H{
		"id":           job.ID,
		"name":         job.Name,
		"state":        job.State,
		"attemptsMade": job.AttemptsMade,
		"failedReason": job.FailedReason,
	}})
}

func (h *NotificationHandler) History(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.Error(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	records, err := h.service.History(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"data": records})
}

func queued(c *gin.Context, jobID string) {
	response.Success(c, http.StatusOK, gin.H{"jobId": jobID, "status": "queued"})
}
