package response

import (
	"errors"
	"net/http"

	"github.com/Heethjain14/loan-management-system/internal/pkg/validation"

	"github.com/gin-gonic/gin"
)

// Success writes {"success": true, ...payload}.
func Success(c *gin.Context, status int, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

// Error writes {"success": false, "error": message}.
func Error(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "error": message})
}

// ValidationFailed writes a 400 with the field-level violations.
func ValidationFailed(c *gin.Context, errs validation.Errors) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": errs})
}

// Bind decodes and validates the request body into req. On failure it writes
// the 400 response and returns false.
func Bind(c *gin.Context, req any) bool {
	err := validation.DecodeAndValidate(c.Request.Body, req)
	if err == nil {
		return true
	}
	var errs validation.Errors
	if errors.As(err, &errs) {
		ValidationFailed(c, errs)
		return false
	}
	Error(c, http.StatusBadRequest, err.Error())
	return false
}
