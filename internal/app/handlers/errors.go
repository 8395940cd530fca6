package handlers

import (
	"errors"
	"net/http"

	"github.com/Heethjain14/loan-management-system/internal/app/response"
	"github.com/Heethjain14/loan-management-system/internal/pkg/logger"
	"github.com/Heethjain14/loan-management-system/internal/pkg/queue"
	"github.com/Heethjain14/loan-management-system/internal/pkg/store"
	"github.com/Heethjain14/loan-management-system/internal/pkg/stripeclient"
	"github.com/Heethjain14/loan-management-system/internal/service/loans"

	"github.com/gin-gonic/gin"
)

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, stripeclient.ErrPaymentNotFound),
		errors.Is(err, queue.ErrJobNotFound):
		return http.StatusNotFound
	case errors.Is(err, loans.ErrInvalidTransition),
		errors.Is(err, store.ErrStatusChanged),
		errors.Is(err, store.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, loans.ErrInvalidDates),
		errors.Is(err, loans.ErrNothingDue):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.CtxError(c.Request.Context(), c.Request.Method+" "+c.FullPath(), err)
	}
	response.Error(c, status, err.Error())
}
