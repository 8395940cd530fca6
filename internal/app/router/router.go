package router

import (
	"net/http"
	"time"

	"github.com/Heethjain14/loan-management-system/internal/app/handlers"
	"github.com/Heethjain14/loan-management-system/internal/app/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
)

// newEngine builds the engine shared by every service: recovery, tracing,
// metrics, request ids, CORS and the health route.
func newEngine(serviceName string, allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	meter := otel.Meter(serviceName)
	r.Use(otelgin.Middleware(serviceName))
	r.Use(middleware.NewMetricMiddleware(meter))
	r.Use(middleware.AttachRequestDetails())
	r.Use(cors.New(corsConfig(allowedOrigins)))

	healthCheckHandler := handlers.NewHealthCheckHandler(serviceName)
	r.GET("/health", healthCheckHandler.HealthCheck)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Not found"})
	})
	return r
}

func corsConfig(allowedOrigins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(allowedOrigins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowedOrigins
	}
	return cfg
}
