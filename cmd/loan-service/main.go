package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Heethjain14/loan-management-system/internal/app/router"
	"github.com/Heethjain14/loan-management-system/internal/pkg/cleanup"
	"github.com/Heethjain14/loan-management-system/internal/pkg/config"
	"github.com/Heethjain14/loan-management-system/internal/pkg/downstream"
	"github.com/Heethjain14/loan-management-system/internal/pkg/log_messages"
	"github.com/Heethjain14/loan-management-system/internal/pkg/logger"
	"github.com/Heethjain14/loan-management-system/internal/pkg/otel"
	"github.com/Heethjain14/loan-management-system/internal/pkg/pubsub"
	"github.com/Heethjain14/loan-management-system/internal/pkg/store/driver"
	"github.com/Heethjain14/loan-management-system/internal/service/interfaces"
	"github.com/Heethjain14/loan-management-system/internal/service/loans"

	"go.uber.org/zap"
)

const defaultConfigPath = "configs/loan-service.yaml"

// setupServices loads configuration and wires the loan service with its
// store and optional reminder publisher. Resources are returned in close order.
func setupServices(ctx context.Context) (*config.AppConfig, *loans.LoanService, []cleanup.Resource, error) {
	cfg, err := config.LoadFromConfig(defaultConfigPath)
	if err != nil {
		logger.CtxError(ctx, log_messages.FailedLoadingConfiguration, err)
		return nil, nil, nil, err
	}
	logger.Init(cfg.Server.ServiceName, cfg.Logging.LogLevel)

	shutdownTracing, err := otel.Setup(ctx, cfg.Server.ServiceName, cfg.Otel.CollectorURL)
	if err != nil {
		return nil, nil, nil, err
	}

	resources := []cleanup.Resource{{Name: "otel", Close: shutdownTracing}}

	loanStore, storeResource, err := driver.OpenLoanStore(ctx, cfg)
	if err != nil {
		return nil, nil, resources, err
	}
	resources = append([]cleanup.Resource{storeResource}, resources...)

	var reminders interfaces.ReminderPublisher
	if cfg.PubSub.ProjectID != "" {
		publisher, err := pubsub.NewPubSubPublisher(ctx, cfg.PubSub.ProjectID, cfg.PubSub.ReminderTopic)
		if err != nil {
			logger.CtxError(ctx, log_messages.FailureInPubsubPublisherCreate, err)
			return nil, nil, resources, err
		}
		reminders = publisher
		resources = append([]cleanup.Resource{{Name: "pubsub-publisher", Close: publisher.Close}}, resources...)
	} else {
		logger.CtxWarn(ctx, log_messages.ReminderPublisherDisabled)
	}

	relay := downstream.NewNotificationClient(cfg.Services.NotificationServiceURL, cfg.Services.Timeout)

	return cfg, loans.NewLoanService(loanStore, reminders, relay), resources, nil
}

// startHTTPServer starts the HTTP server in a goroutine
func startHTTPServer(ctx context.Context, cfg config.ServerConfig, engine http.Handler) *http.Server {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	go func() {
		logger.CtxInfo(ctx, log_messages.ServerListening, zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.CtxError(ctx, log_messages.ServerStartFailure, err)
		}
	}()

	return srv
}

// waitForShutdownSignal waits for shutdown signals and returns when received
func waitForShutdownSignal() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer logger.Sync()

	cfg, service, resources, err := setupServices(ctx)
	if err != nil {
		cleanup.CleanupResources(ctx, nil, 0, resources...)
		return
	}

	engine := router.SetupLoanRouter(cfg.Server.ServiceName, cfg.Server.AllowedOrigins, service)
	server := startHTTPServer(ctx, cfg.Server, engine)

	waitForShutdownSignal()

	logger.CtxInfo(ctx, log_messages.ServerShutdown)
	cancel()
	cleanup.CleanupResources(ctx, server, cfg.Server.ShutdownTimeout, resources...)

	logger.CtxInfo(ctx, log_messages.ServerExiting)
}
