package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// NewMetricMiddleware records per-route latency and request counts. Failed
// requests are split into client (4xx) and server (5xx) errors.
func NewMetricMiddleware(meter metric.Meter) gin.HandlerFunc {
	latency, _ := meter.Float64Histogram(
		"http.server.duration",
		metric.WithUnit("ms"),
		metric.WithDescription("Duration of handled API requests."),
	)
	requests, _ := meter.Int64Counter(
		"api.requests_total",
		metric.WithDescription("Handled API requests."),
	)
	failures, _ := meter.Int64Counter(
		"api.failed_requests_total",
		metric.WithDescription("API requests answered with a 4xx or 5xx status."),
	)
	bodySize, _ := meter.Int64Histogram(
		"api.request_body_bytes",
		metric.WithUnit("By"),
		metric.WithDescription("Size of JSON request bodies."),
	)

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		ctx := c.Request.Context()
		attrs := metric.WithAttributes(
			semconv.HTTPRouteKey.String(route),
			semconv.HTTPMethodKey.String(c.Request.Method),
			semconv.HTTPStatusCodeKey.Int(status),
		)

		latency.Record(ctx, float64(time.Since(start).Microseconds())/1000, attrs)
		requests.Add(ctx, 1, attrs)
		if c.Request.ContentLength > 0 {
			bodySize.Record(ctx, c.Request.ContentLength, attrs)
		}
		if status >= 400 {
			class := "client"
			if status >= 500 {
				class = "server"
			}
			failures.Add(ctx, 1, metric.WithAttributes(
				semconv.HTTPRouteKey.String(route),
				attribute.String("error.class", class),
			))
		}
	}
}
