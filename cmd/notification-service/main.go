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
	mongodb "github.com/Heethjain14/loan-management-system/internal/pkg/db/mongo"
	redisdb "github.com/Heethjain14/loan-management-system/internal/pkg/db/redis"
	"github.com/Heethjain14/loan-management-system/internal/pkg/email"
	"github.com/Heethjain14/loan-management-system/internal/pkg/log_messages"
	"github.com/Heethjain14/loan-management-system/internal/pkg/logger"
	"github.com/Heethjain14/loan-management-system/internal/pkg/otel"
	"github.com/Heethjain14/loan-management-system/internal/pkg/pubsub"
	"github.com/Heethjain14/loan-management-system/internal/pkg/queue"
	"github.com/Heethjain14/loan-management-system/internal/pkg/sms"
	notificationhistory "github.com/Heethjain14/loan-management-system/internal/pkg/store/impl/notification_history"
	"github.com/Heethjain14/loan-management-system/internal/service/interfaces"
	"github.com/Heethjain14/loan-management-system/internal/service/notifications"

	"go.uber.org/zap"
)

const defaultConfigPath = "configs/notification-service.yaml"

type services struct {
	cfg       *config.AppConfig
	notifier  *notifications.NotificationService
	worker    *queue.Worker
	consumer  *pubsub.PubSubConsumer
	resources []cleanup.Resource
}

// setupServices initializes configuration, logger, and core services
func setupServices(ctx context.Context) (*services, error) {
	cfg, err := config.LoadFromConfig(defaultConfigPath)
	if err != nil {
		logger.CtxError(ctx, log_messages.FailedLoadingConfiguration, err)
		return nil, err
	}
	logger.Init(cfg.Server.ServiceName, cfg.Logging.LogLevel)
	s := &services{cfg: cfg}

	shutdownTracing, err := otel.Setup(ctx, cfg.Server.ServiceName, cfg.Otel.CollectorURL)
	if err != nil {
		return s, err
	}
	s.resources = append(s.resources, cleanup.Resource{Name: "otel", Close: shutdownTracing})

	redisClient, err := redisdb.ConnectToRedis(ctx, cfg.Redis, nil)
	if err != nil {
		logger.CtxError(ctx, log_messages.FailedConnectingRedis, err)
		return s, err
	}
	s.resources = prepend(s.resources, cleanup.Resource{Name: "redis", Close: redisClient.Close})

	jobs := queue.New(redisClient.Client, cfg.Queue.Name, queue.Options{
		Attempts:      cfg.Queue.Attempts,
		BackoffDelay:  cfg.Queue.BackoffDelay,
		LeaseDuration: cfg.Queue.LeaseDuration,
	})

	var history interfaces.NotificationHistory
	if cfg.Mongo.URI != "" {
		mongoClient, err := mongodb.ConnectToMongoDB(ctx, cfg.Mongo)
		if err != nil {
			logger.CtxError(ctx, log_messages.FailedConnectingMongo, err)
			return s, err
		}
		history = notificationhistory.NewNotificationHistoryRepository(mongoClient)
		s.resources = prepend(s.resources, cleanup.Resource{Name: "mongo", Close: mongoClient.Close})
	} else {
		logger.CtxWarn(ctx, log_messages.HistoryDisabled)
	}

	s.notifier = notifications.NewNotificationService(
		email.NewClient(cfg.SendGrid),
		sms.NewClient(cfg.Twilio),
		jobs,
		history,
	)
	s.worker = queue.NewWorker(jobs, cfg.Queue.Concurrency, cfg.Queue.PollInterval)
	s.notifier.RegisterJobHandlers(s.worker)

	if cfg.PubSub.ProjectID != "" {
		consumer, err := pubsub.NewPubSubConsumer(ctx, cfg.PubSub.ProjectID, cfg.PubSub.ReminderSubscription)
		if err != nil {
			return s, err
		}
		s.consumer = consumer
	} else {
		logger.CtxWarn(ctx, log_messages.ReminderConsumerDisabled)
	}

	return s, nil
}

func prepend(resources []cleanup.Resource, r cleanup.Resource) []cleanup.Resource {
	return append([]cleanup.Resource{r}, resources...)
}

// startWorker runs the job worker until its context ends. The returned
// resource stops it and waits for in-flight jobs.
func startWorker(ctx context.Context, w *queue.Worker) cleanup.Resource {
	workerCtx, stop := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(workerCtx)
	}()

	return cleanup.Resource{Name: "queue-worker", Close: func(ctx context.Context) error {
		stop()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}}
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

	s, err := setupServices(ctx)
	if err != nil {
		if s != nil {
			cleanup.CleanupResources(ctx, nil, 0, s.resources...)
		}
		return
	}

	// consumer, then worker, then the stores the worker writes to
	resources := prepend(s.resources, startWorker(ctx, s.worker))
	if s.consumer != nil {
		s.consumer.Start(s.notifier.HandleReminderMessage)
		resources = prepend(resources, cleanup.Resource{Name: "pubsub-consumer", Close: s.consumer.Close})
	}

	engine := router.SetupNotificationRouter(s.cfg.Server.ServiceName, s.cfg.Server.AllowedOrigins, s.notifier)
	server := startHTTPServer(ctx, s.cfg.Server, engine)

	waitForShutdownSignal()

	logger.CtxInfo(ctx, log_messages.ServerShutdown)
	cancel()
	cleanup.CleanupResources(ctx, server, s.cfg.Server.ShutdownTimeout, resources...)

	logger.CtxInfo(ctx, log_messages.ServerExiting)
}
