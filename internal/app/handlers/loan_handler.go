package handlers

import (
	"net/http"

	"github.com/Heethjain14/loan-management-system/internal/app"
	"github.com/Heethjain14/loan-management-system/internal/app/response"
	"github.com/Heethjain14/loan-management-system/internal/pkg/store/models"
	"github.com/Heethjain14/loan-management-system/internal/service/loans"

	"github.com/gin-gonic/gin"
)

type statusRequest struct {
	Status models.ApplicationStatus `json:"status" validate:"required,oneof=Pending Approved Rejected"`
}

type LoanHandler struct {
	service app.LoanService
}

func NewLoanHandler(service app.LoanService) *LoanHandler {
	return &LoanHandler{service: service}
}

func (h *LoanHandler) CreateApplication(c *gin.Context) {
	var terms loans.Terms
	if !response.Bind(c, &terms) {
		return
	}
	application, err := h.service.CreateApplication(c.Request.Context(), terms)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"data": application})
}

func (h *LoanHandler) ListApplications(c *gin.Context) {
	applications, err := h.service.ListApplications(c.Request.Context(), c.Query("q"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"data": applications})
}

func (h *LoanHandler) GetApplication(c *gin.Context) {
	application, err := h.service.GetApplication(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"data": application})
}

func (h *LoanHandler) UpdateApplication(c *gin.Context) {
	var terms loans.Terms
	if !response.Bind(c, &terms) {
		return
	}
	application, err := h.service.UpdateApplication(c.Request.Context(), c.Param("id"), terms)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"data": application})
}

func (h *LoanHandler) DeleteApplication(c *gin.Context) {
	if err := h.service.DeleteApplication(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, nil)
}

// ChangeStatus applies a status transition. Approval answers with the new
// borrower as well.
func (h *LoanHandler) ChangeStatus(c *gin.Context) {
	var req statusRequest
	if !response.Bind(c, &req) {
		return
	}
	res, err := h.service.ChangeStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	payload := gin.H{"data": res.Application}
	if res.Borrower != nil {
		payload["borrower"] = res.Borrower
	}
	response.Success(c, http.StatusOK, payload)
}

func (h *LoanHandler) ListBorrowers(c *gin.Context) {
	borrowers, err := h.service.ListBorrowers(c.Request.Context(), c.Query("q"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"data": borrowers})
}

func (h *LoanHandler) GetBorrower(c *gin.Context) {
	borrower, err := h.service.GetBorrower(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"data": borrower})
}

func (h *LoanHandler) DeleteBorrower(c *gin.Context) {
	if err := h.service.DeleteBorrower(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, nil)
}

func (h *LoanHandler) ListPayments(c *gin.Context) {
	list, err := h.service.ListPayments(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"data": list})
}

func (h *LoanHandler) AddPayment(c *gin.Context) {
	var in loans.PaymentInput
	if !response.Bind(c, &in) {
		return
	}
	payment, err := h.service.AddPayment(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"data": payment})
}

func (h *LoanHandler) DeletePayment(c *gin.Context) {
	if err := h.service.DeletePayment(c.Request.Context(), c.Param("id"), c.Param("paymentId")); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, nil)
}

func (h *LoanHandler) Summary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"data": summary})
}

func (h *LoanHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"data": dashboard})
}

func (h *LoanHandler) SendReminder(c *gin.Context) {
	var req loans.ReminderRequest
	if !response.Bind(c, &req) {
		return
	}
	msgID, reminder, err := h.service.SendReminder(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusAccepted, gin.H{"messageId": msgID, "reminder": reminder})
}

// Notify relays an email through the notification service.
func (h *LoanHandler) Notify(c *gin.Context) {
	var req loans.NotifyRequest
	if !response.Bind(c, &req) {
		return
	}
	res, err := h.service.Notify(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"messageId": res.MessageID, "sentAt": res.SentAt})
}
