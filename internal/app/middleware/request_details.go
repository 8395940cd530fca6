package middleware

import (
	"strings"
	"time"

	"github.com/Heethjain14/loan-management-system/internal/pkg/log_messages"
	"github.com/Heethjain14/loan-management-system/internal/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const RequestIDHeader = "X-Request-ID"

var sensitiveHeaders = []string{"authorization", "cookie", "x-api-key", "stripe-signature"}

// AttachRequestDetails tags each request with an ID, propagates it through the
// request context and logs one access line when the handler returns.
func AttachRequestDetails() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now().UTC()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		ctx := logger.WithRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Header(RequestIDHeader, requestID)

		c.Next()

		fields := []zap.Field{
			zap.String("http_method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("route", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Int64("latency_ms", time.Since(start).Milliseconds()),
			zap.String("ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
			zap.Any("headers", maskHeaders(c.Request.Header)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		logger.CtxInfo(ctx, log_messages.RequestCompleted, fields...)
	}
}

func maskHeaders(headers map[string][]string) map[string]string {
	out := make(map[string]string, len(headers))
	for key, values := range headers {
		if len(values) == 0 {
			continue
		}
		if isSensitive(key) {
			out[key] = "*****"
			continue
		}
		out[key] = values[0]
	}
	return out
}

func isSensitive(key string) bool {
	for _, s := range sensitiveHeaders {
		if strings.EqualFold(s, key) {
			return true
		}
	}
	return false
}
