package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthCheckHandler struct {
	service string
	now     func() time.Time
}

func NewHealthCheckHandler(service string) *HealthCheckHandler {
	return &HealthCheckHandler{service: service, now: time.Now}
}

func (h *HealthCheckHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   h.service,
		"timestamp": h.now().UTC().Format(time.RFC3339Nano),
	})
}
