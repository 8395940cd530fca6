package cleanup

import (
	"context"
	"net/http"
	"time"

	"github.com/Heethjain14/loan-management-system/internal/pkg/log_messages"
	"github.com/Heethjain14/loan-management-system/internal/pkg/logger"

	"go.uber.org/zap"
)

// Resource is a named dependency released during shutdown.
type Resource struct {
	Name  string
	Close func(ctx context.Context) error
}

// CleanupResources stops the HTTP server first, then releases resources in
// the order given. All of it shares one timeout, detached from ctx's cancellation.
func CleanupResources(ctx context.Context, server *http.Server, timeout time.Duration, resources ...Resource) {
	logger.CtxInfo(ctx, log_messages.CleanupStarted)

	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if server != nil {
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.CtxError(ctx, log_messages.ServerShutdownFailed, err)
		} else {
			logger.CtxInfo(ctx, log_messages.ServerShutdownCompleted)
		}
	}

	for _, r := range resources {
		if r.Close == nil {
			continue
		}
		if err := r.Close(shutdownCtx); err != nil {
			logger.CtxError(ctx, log_messages.ResourceCloseFailed, err, zap.String("resource", r.Name))
			continue
		}
		logger.CtxInfo(ctx, log_messages.ResourceClosed, zap.String("resource", r.Name))
	}

	logger.CtxInfo(ctx, log_messages.CleanupCompleted)
}
