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
	"github.com/Heethjain14/loan-management-system/internal/pkg/gcs"
	"github.com/Heethjain14/loan-management-system/internal/pkg/kafka"
	"github.com/Heethjain14/loan-management-system/internal/pkg/log_messages"
	"github.com/Heethjain14/loan-management-system/internal/pkg/logger"
	"github.com/Heethjain14/loan-management-system/internal/pkg/otel"
	"github.com/Heethjain14/loan-management-system/internal/pkg/stripeclient"
	"github.com/Heethjain14/loan-management-system/internal/service/interfaces"
	"github.com/Heethjain14/loan-management-system/internal/service/payments"

	"go.uber.org/zap"
)

const defaultConfigPath = "configs/payment-service.yaml"

// setupServices loads configuration and wires the payment service. Kafka
// events and GCS receipts are only enabled when configured.
func setupServices(ctx context.Context) (*config.AppConfig, *payments.PaymentService, []cleanup.Resource, error) {
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

	gateway := stripeclient.NewClient(cfg.Stripe)
	if !gateway.Configured() {
		logger.CtxWarn(ctx, log_messages.StripeNotConfigured)
	}

	var events interfaces.EventPublisher
	if cfg.Kafka.Server != "" {
		producer, err := kafka.NewKafkaProducer(cfg.Kafka)
		if err != nil {
			logger.CtxError(ctx, log_messages.FailedKafkaProducerCreate, err)
			return nil, nil, resources, err
		}
		events = producer
		resources = append([]cleanup.Resource{{Name: "kafka", Close: producer.Close}}, resources...)
	}

	var receipts interfaces.ReceiptArchiver
	if cfg.GCS.BucketName != "" {
		bucket, err := gcs.NewGCSClient(ctx, cfg.GCS.BucketName, cfg.GCS.FolderName)
		if err != nil {
			return nil, nil, resources, err
		}
		receipts = bucket
		resources = append([]cleanup.Resource{{Name: "gcs", Close: bucket.Close}}, resources...)
	}

	return cfg, payments.NewPaymentService(gateway, events, receipts), resources, nil
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

	engine := router.SetupPaymentRouter(cfg.Server.ServiceName, cfg.Server.AllowedOrigins, service)
	server := startHTTPServer(ctx, cfg.Server, engine)

	waitForShutdownSignal()

	logger.CtxInfo(ctx, log_messages.ServerShutdown)
	cancel()
	cleanup.CleanupResources(ctx, server, cfg.Server.ShutdownTimeout, resources...)

	logger.CtxInfo(ctx, log_messages.ServerExiting)
}
