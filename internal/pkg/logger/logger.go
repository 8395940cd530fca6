package logger

import (
	"context"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type contextKey string

const requestIDKey contextKey = "request_id"

var (
	mu          sync.RWMutex
	log         *zap.Logger
	serviceName string
)

func init() {
	log = build(zap.InfoLevel)
}

// WithRequestID returns a new context carrying the given request ID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestID returns the request ID stored in ctx, or "" when absent.
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// Init replaces the global logger with a JSON logger at the given level.
func Init(service, level string) {
	l := build(parseLevel(level))
	mu.Lock()
	log = l
	serviceName = service
	mu.Unlock()
}

// Replace swaps the global logger and returns a func restoring the previous one.
func Replace(l *zap.Logger) func() {
	mu.Lock()
	prev := log
	log = l
	mu.Unlock()
	return func() {
		mu.Lock()
		log = prev
		mu.Unlock()
	}
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zap.DebugLevel
	case "warn", "warning":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

func build(level zapcore.Level) *zap.Logger {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(level)
	config.Encoding = "json"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.LevelKey = "log_level"
	config.EncoderConfig.MessageKey = "message"
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.StacktraceKey = ""
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	config.OutputPaths = []string{"stdout"}

	l, err := config.Build(zap.AddCallerSkip(2))
	if err != nil {
		return zap.NewNop()
	}
	return l
}

func current() (*zap.Logger, string) {
	mu.RLock()
	defer mu.RUnlock()
	return log, serviceName
}

func contextFields(ctx context.Context, service string, fields []zap.Field) []zap.Field {
	if ctx != nil {
		if reqID := RequestID(ctx); reqID != "" {
			fields = append(fields, zap.String("request_id", reqID))
		}
		if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
			fields = append(fields, zap.String("trace_id", sc.TraceID().String()))
		}
	}
	if service != "" {
		fields = append(fields, zap.String("service_name", service))
	}
	return fields
}

func write(ctx context.Context, level zapcore.Level, msg string, fields []zap.Field) {
	l, service := current()
	if ce := l.Check(level, msg); ce != nil {
		ce.Write(contextFields(ctx, service, fields)...)
	}
}

func CtxInfo(ctx context.Context, msg string, fields ...zap.Field) {
	write(ctx, zap.InfoLevel, msg, fields)
}

func CtxDebug(ctx context.Context, msg string, fields ...zap.Field) {
	write(ctx, zap.DebugLevel, msg, fields)
}

func CtxWarn(ctx context.Context, msg string, fields ...zap.Field) {
	write(ctx, zap.WarnLevel, msg, fields)
}

// CtxError logs msg at error level with err attached under "error".
func CtxError(ctx context.Context, msg string, err error, fields ...zap.Field) {
	write(ctx, zap.ErrorLevel, msg, append(fields, zap.Error(err)))
}

func Info(msg string, fields ...zap.Field) {
	write(context.Background(), zap.InfoLevel, msg, fields)
}

func Debug(msg string, fields ...zap.Field) {
	write(context.Background(), zap.DebugLevel, msg, fields)
}

func Warn(msg string, fields ...zap.Field) {
	write(context.Background(), zap.WarnLevel, msg, fields)
}

func Error(msg string, err error, fields ...zap.Field) {
	write(context.Background(), zap.ErrorLevel, msg, append(fields, zap.Error(err)))
}

// Sync flushes buffered entries.
func Sync() {
	l, _ := current()
	_ = l.Sync()
}
