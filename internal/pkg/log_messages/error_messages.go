package log_messages

const (
	FailedLoadingConfiguration      = "Failed to load configuration"
	ServerStartFailure              = "failed to start server"
	ServerShutdown                  = "Shutting down server..."
	ServerExiting                   = "Server exiting"
	CleanupStarted                  = "Starting cleanup of resources..."
	CleanupCompleted                = "All resources cleaned up successfully"
	FailureInPubsubConsumerCreation = "failed to create Pubsub consumer"
	FailureInPubsubPublisherCreate  = "failed to create Pubsub publisher"
	PubsubErrorConsuming            = "pubsub consumer error in consuming"
	ErrorMarshallingMessage         = "error marshalling message: %w"
	ErrorInMessagePublishing        = "error publishing message: %w"
	ErrorUnmarshalingPubsubMessage  = "error unmarshaling Pubsub message"
	TopicDoesNotExists              = "topic %s does not exist"
	SuccessPubSubPublisher          = "Message published to Pubsub"

	KafkaProducerCreated      = "Kafka producer created"
	FailedKafkaProducerCreate = "failed to create Kafka producer"
	FailedKafkaPublish        = "failed to publish Kafka event"

	ErrorMarshallingJSON      = "error marshalling JSON"
	ErrorUploadingToGCSBucket = "error uploading object to GCS bucket"
	ErrorClosingGCSWriter     = "error closing GCS writer"
	ErrorClosingGCSClient     = "error closing GCS client"
	UploadedToGCSBucket       = "Uploaded object to GCS bucket"

	FailedConnectingMongo     = "failed to connect to MongoDB"
	FailedConnectingRedis     = "failed to connect to Redis"
	FailedConnectingFirestore = "failed to connect to Firestore"

	JobEnqueued          = "Job enqueued"
	JobCompleted         = "Job completed"
	JobFailedRetrying    = "Job failed, retry scheduled"
	JobFailedExhausted   = "Job failed after all attempts"
	JobStalledRequeued   = "Stalled job returned to queue"
	JobHandlerMissing    = "no handler registered for job"
	QueueWorkerStarted   = "Queue worker started"
	QueueWorkerStopped   = "Queue worker stopped"
	QueuePromotionFailed = "failed to promote delayed jobs"

	EmailSent       = "Email sent"
	EmailSendFailed = "Failed to send email"
	SMSSent         = "SMS sent"
	SMSSendFailed   = "Failed to send SMS"
	HistoryWriteErr = "failed to record notification history"

	PaymentProcessed      = "Payment processed"
	PaymentFailed         = "Payment processing failed"
	RefundProcessed       = "Refund processed"
	RefundFailed          = "Refund failed"
	PaymentIntentCreated  = "Payment intent created"
	PaymentLookupFailed   = "Payment lookup failed"
	PaymentEventFailed    = "failed to publish payment event"
	PaymentReceiptFailed  = "failed to archive payment receipt"
	PaymentHistoryFailure = "failed to search payment history"

	ApplicationCreated     = "Application created"
	ApplicationUpdated     = "Application updated"
	ApplicationTransition  = "Application status changed"
	ApplicationMigrated    = "Application moved to numeric id"
	ApplicationMigrateSkip = "Application migration skipped"
	BorrowerCreated        = "Borrower created"
	PaymentRecorded        = "Payment recorded"
	ReminderPublished      = "Payment reminder published"

	ServerListening         = "HTTP server listening"
	ServerShutdownFailed    = "Failed to shutdown HTTP server"
	ServerShutdownCompleted = "HTTP server shutdown successfully"
	ResourceCloseFailed     = "Failed to close resource"
	ResourceClosed          = "Resource closed"
	RequestCompleted        = "HTTP request completed"
	TracingDisabled         = "OTLP collector not configured, tracing disabled"
	OtlpConnectionFailed    = "OTLP connection error"

	HistoryDisabled           = "MongoDB not configured, notification history disabled"
	ReminderConsumerDisabled  = "PubSub project not configured, reminder consumer disabled"
	ReminderPublisherDisabled = "PubSub project not configured, payment reminders disabled"
	StripeNotConfigured       = "Stripe secret key not set, card payments will fail"
	ReminderQueued            = "Payment reminder queued"

	PubsubPublishFailed    = "pubsub publish failed"
	PubsubConsumerStarting = "PubSub consumer starting"
	PubsubConsumeRetrying  = "Error consuming messages, retrying"
	PubsubConsumerExiting  = "PubSub consumer loop exiting"
	KafkaUndelivered       = "Kafka producer closed with undelivered messages"

	QueuePollFailed         = "queue poll failed"
	QueueStalledCheckFailed = "stalled job check failed"

	UnknownStoreDriver      = "unknown store driver"
	ApplicationNotFound     = "application not found"
	ApplicationFetchFailed  = "failed to fetch application"
	ApplicationInsertFailed = "failed to insert application"
	BorrowerNotFound        = "borrower not found"
	BorrowerInsertFailed    = "failed to insert borrower"
	PaymentInsertFailed     = "failed to insert payment"
	TransitionRevertFailed  = "failed to revert application status"
)
