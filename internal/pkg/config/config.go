package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Heethjain14/loan-management-system/internal/pkg/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	StoreDriverFirestore = "firestore"
	StoreDriverMongo     = "mongo"
)

// ServerConfig holds server-level config
type ServerConfig struct {
	ServiceName       string        `yaml:"service_name"`
	Port              int           `yaml:"port"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins    []string      `yaml:"allowed_origins"`
}

type LogConfig struct {
	LogLevel string `yaml:"level"`
}

type MongoConfig struct {
	URI             string        `yaml:"uri"`
	Username        string        `yaml:"username"`
	Password        string        `yaml:"password"`
	DBName          string        `yaml:"db_name"`
	MaxPoolSize     uint64        `yaml:"max_pool_size"`
	MinPoolSize     uint64        `yaml:"min_pool_size"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout"`
}

type RedisConfig struct {
	Addr        string `yaml:"addr"`
	Password    string `yaml:"password"`
	DB          int    `yaml:"db"`
	EnableTLS   bool   `yaml:"enable_tls"`
	CertContent string `yaml:"cert_content"`
}

type FirestoreConfig struct {
	ProjectID  string `yaml:"project_id"`
	DatabaseID string `yaml:"database_id"`
}

// StoreConfig selects the document store backing the loan service.
type StoreConfig struct {
	Driver string `yaml:"driver"`
}

type PubSubConfig struct {
	ProjectID            string `yaml:"project_id"`
	ReminderTopic        string `yaml:"reminder_topic"`
	ReminderSubscription string `yaml:"reminder_subscription"`
}

type KafkaConfig struct {
	Server           string `yaml:"server"`
	SecurityProtocol string `yaml:"security_protocol"`
	SASLMechanism    string `yaml:"sasl_mechanism"`
	SASLUsername     string `yaml:"sasl_username"`
	SASLPassword     string `yaml:"sasl_password"`
	ClientID         string `yaml:"client_id"`
	PaymentTopic     string `yaml:"payment_topic"`
}

type GCSConfig struct {
	BucketName string `yaml:"bucket_name"`
	FolderName string `yaml:"folder_name"`
}

type OtelConfig struct {
	CollectorURL string `yaml:"collector_url"`
}

type SendGridConfig struct {
	APIKey    string `yaml:"api_key"`
	FromEmail string `yaml:"from_email"`
}

type TwilioConfig struct {
	AccountSID  string `yaml:"account_sid"`
	AuthToken   string `yaml:"auth_token"`
	PhoneNumber string `yaml:"phone_number"`
}

type StripeConfig struct {
	SecretKey string `yaml:"secret_key"`
}

// QueueConfig tunes the notification job queue.
type QueueConfig struct {
	Name          string        `yaml:"name"`
	Attempts      int           `yaml:"attempts"`
	BackoffDelay  time.Duration `yaml:"backoff_delay"`
	Concurrency   int           `yaml:"concurrency"`
	PollInterval  time.Duration `yaml:"poll_interval"`
	LeaseDuration time.Duration `yaml:"lease_duration"`
}

type ServicesConfig struct {
	NotificationServiceURL string        `yaml:"notification_service_url"`
	PaymentServiceURL      string        `yaml:"payment_service_url"`
	Timeout                time.Duration `yaml:"timeout"`
}

// AppConfig is the main config struct that holds all configs
type AppConfig struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LogConfig       `yaml:"logging"`
	Store     StoreConfig     `yaml:"store"`
	Mongo     MongoConfig     `yaml:"mongo"`
	Firestore FirestoreConfig `yaml:"firestore"`
	Redis     RedisConfig     `yaml:"redis"`
	PubSub    PubSubConfig    `yaml:"pubsub"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	GCS       GCSConfig       `yaml:"gcs"`
	Otel      OtelConfig      `yaml:"otel"`
	SendGrid  SendGridConfig  `yaml:"sendgrid"`
	Twilio    TwilioConfig    `yaml:"twilio"`
	Stripe    StripeConfig    `yaml:"stripe"`
	Queue     QueueConfig     `yaml:"queue"`
	Services  ServicesConfig  `yaml:"services"`
}

func assignDefaultConfigValues(cfg *AppConfig) {
	// server
	cfg.Server.ServiceName = GetEnvOrDefaultAsString("SERVICE_NAME", cfg.Server.ServiceName)
	cfg.Server.Port = GetEnvOrDefaultAsInt("SERVER_PORT", GetEnvOrDefaultAsInt("PORT", orInt(cfg.Server.Port, 8080)))
	cfg.Server.ReadHeaderTimeout = GetEnvOrDefaultAsDuration("SERVER_READ_HEADER_TIMEOUT",
		orDuration(cfg.Server.ReadHeaderTimeout, 5*time.Second))
	cfg.Server.ShutdownTimeout = GetEnvOrDefaultAsDuration("SERVER_SHUTDOWN_TIMEOUT",
		orDuration(cfg.Server.ShutdownTimeout, 8*time.Second))
	if origins, ok := os.LookupEnv("ALLOWED_ORIGINS"); ok {
		cfg.Server.AllowedOrigins = splitList(origins)
	}

	// logging
	cfg.Logging.LogLevel = GetEnvOrDefaultAsString("LOGGING_LEVEL", orString(cfg.Logging.LogLevel, "info"))

	// store
	cfg.Store.Driver = strings.ToLower(GetEnvOrDefaultAsString("STORE_DRIVER", orString(cfg.Store.Driver, StoreDriverFirestore)))

	// mongo
	cfg.Mongo.URI = GetEnvOrDefaultAsString("MONGO_URI", cfg.Mongo.URI)
	cfg.Mongo.Username = GetEnvOrDefaultAsString("MONGO_USERNAME", cfg.Mongo.Username)
	cfg.Mongo.Password = GetEnvOrDefaultAsString("MONGO_PASSWORD", cfg.Mongo.Password)
	cfg.Mongo.DBName = GetEnvOrDefaultAsString("MONGO_DB_NAME", orString(cfg.Mongo.DBName, "loan_management"))
	cfg.Mongo.MaxPoolSize = GetEnvOrDefaultAsUint64("MONGO_MAX_POOL_SIZE", orUint64(cfg.Mongo.MaxPoolSize, 50))
	cfg.Mongo.MinPoolSize = GetEnvOrDefaultAsUint64("MONGO_MIN_POOL_SIZE", cfg.Mongo.MinPoolSize)
	cfg.Mongo.MaxConnIdleTime = GetEnvOrDefaultAsDuration("MONGO_MAX_CONN_IDLE_TIME",
		orDuration(cfg.Mongo.MaxConnIdleTime, 5*time.Minute))
	cfg.Mongo.ConnectTimeout = GetEnvOrDefaultAsDuration("MONGO_CONNECT_TIMEOUT",
		orDuration(cfg.Mongo.ConnectTimeout, 10*time.Second))

	// firestore
	cfg.Firestore.ProjectID = GetEnvOrDefaultAsString("FIRESTORE_PROJECT_ID",
		GetEnvOrDefaultAsString("GOOGLE_CLOUD_PROJECT", cfg.Firestore.ProjectID))
	cfg.Firestore.DatabaseID = GetEnvOrDefaultAsString("FIRESTORE_DATABASE_ID", orString(cfg.Firestore.DatabaseID, "(default)"))

	// redis; REDIS_HOST/REDIS_PORT are kept for existing deployments
	addr := cfg.Redis.Addr
	if host, ok := os.LookupEnv("REDIS_HOST"); ok {
		addr = net.JoinHostPort(host, GetEnvOrDefaultAsString("REDIS_PORT", "6379"))
	}
	cfg.Redis.Addr = GetEnvOrDefaultAsString("REDIS_ADDR", orString(addr, "localhost:6379"))
	cfg.Redis.Password = GetEnvOrDefaultAsString("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = GetEnvOrDefaultAsInt("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.EnableTLS = GetEnvOrDefaultAsBool("REDIS_ENABLE_TLS", cfg.Redis.EnableTLS)
	cfg.Redis.CertContent = GetEnvOrDefaultAsString("REDIS_CERT_CONTENT", cfg.Redis.CertContent)

	// pubsub
	cfg.PubSub.ProjectID = GetEnvOrDefaultAsString("PROJECT_ID", cfg.PubSub.ProjectID)
	cfg.PubSub.ReminderTopic = GetEnvOrDefaultAsString("PUBSUB_REMINDER_TOPIC",
		orString(cfg.PubSub.ReminderTopic, "payment-reminders"))
	cfg.PubSub.ReminderSubscription = GetEnvOrDefaultAsString("PUBSUB_REMINDER_SUBSCRIPTION",
		orString(cfg.PubSub.ReminderSubscription, "payment-reminders-notification-service"))

	// kafka
	cfg.Kafka.Server = GetEnvOrDefaultAsString("KAFKA_SERVER", cfg.Kafka.Server)
	cfg.Kafka.SecurityProtocol = GetEnvOrDefaultAsString("KAFKA_SECURITY_PROTOCOL", orString(cfg.Kafka.SecurityProtocol, "PLAINTEXT"))
	cfg.Kafka.SASLMechanism = GetEnvOrDefaultAsString("KAFKA_SASL_MECHANISM", cfg.Kafka.SASLMechanism)
	cfg.Kafka.SASLUsername = GetEnvOrDefaultAsString("KAFKA_SASL_USERNAME", cfg.Kafka.SASLUsername)
	cfg.Kafka.SASLPassword = GetEnvOrDefaultAsString("KAFKA_SASL_PASSWORD", cfg.Kafka.SASLPassword)
	cfg.Kafka.ClientID = GetEnvOrDefaultAsString("KAFKA_CLIENT_ID", orString(cfg.Kafka.ClientID, cfg.Server.ServiceName))
	cfg.Kafka.PaymentTopic = GetEnvOrDefaultAsString("KAFKA_PAYMENT_TOPIC", orString(cfg.Kafka.PaymentTopic, "payment-events"))

	// gcs
	cfg.GCS.BucketName = GetEnvOrDefaultAsString("GCS_BUCKET_NAME", cfg.GCS.BucketName)
	cfg.GCS.FolderName = GetEnvOrDefaultAsString("GCS_FOLDER_NAME", orString(cfg.GCS.FolderName, "receipts"))

	// otel
	cfg.Otel.CollectorURL = GetEnvOrDefaultAsString("OTEL_URL", cfg.Otel.CollectorURL)

	// providers
	cfg.SendGrid.APIKey = GetEnvOrDefaultAsString("SENDGRID_API_KEY", cfg.SendGrid.APIKey)
	cfg.SendGrid.FromEmail = GetEnvOrDefaultAsString("FROM_EMAIL", orString(cfg.SendGrid.FromEmail, "noreply@loanmanagement.com"))
	cfg.Twilio.AccountSID = GetEnvOrDefaultAsString("TWILIO_ACCOUNT_SID", cfg.Twilio.AccountSID)
	cfg.Twilio.AuthToken = GetEnvOrDefaultAsString("TWILIO_AUTH_TOKEN", cfg.Twilio.AuthToken)
	cfg.Twilio.PhoneNumber = GetEnvOrDefaultAsString("TWILIO_PHONE_NUMBER", cfg.Twilio.PhoneNumber)
	cfg.Stripe.SecretKey = GetEnvOrDefaultAsString("STRIPE_SECRET_KEY", cfg.Stripe.SecretKey)

	// queue
	cfg.Queue.Name = GetEnvOrDefaultAsString("QUEUE_NAME", orString(cfg.Queue.Name, "notifications"))
	cfg.Queue.Attempts = GetEnvOrDefaultAsInt("QUEUE_ATTEMPTS", orInt(cfg.Queue.Attempts, 3))
	cfg.Queue.BackoffDelay = GetEnvOrDefaultAsDuration("QUEUE_BACKOFF_DELAY", orDuration(cfg.Queue.BackoffDelay, 2*time.Second))
	cfg.Queue.Concurrency = GetEnvOrDefaultAsInt("QUEUE_CONCURRENCY", orInt(cfg.Queue.Concurrency, 5))
	cfg.Queue.PollInterval = GetEnvOrDefaultAsDuration("QUEUE_POLL_INTERVAL", orDuration(cfg.Queue.PollInterval, 500*time.Millisecond))
	cfg.Queue.LeaseDuration = GetEnvOrDefaultAsDuration("QUEUE_LEASE_DURATION", orDuration(cfg.Queue.LeaseDuration, 30*time.Second))

	// downstream services
	cfg.Services.NotificationServiceURL = GetEnvOrDefaultAsString("NOTIFICATION_SERVICE_URL",
		orString(cfg.Services.NotificationServiceURL, "http://localhost:3001"))
	cfg.Services.PaymentServiceURL = GetEnvOrDefaultAsString("PAYMENT_SERVICE_URL",
		orString(cfg.Services.PaymentServiceURL, "http://localhost:3002"))
	cfg.Services.Timeout = GetEnvOrDefaultAsDuration("SERVICES_TIMEOUT", orDuration(cfg.Services.Timeout, 10*time.Second))
}

func validateConfig(cfg *AppConfig) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}
	if cfg.Store.Driver != StoreDriverFirestore && cfg.Store.Driver != StoreDriverMongo {
		return fmt.Errorf("invalid store driver %q: must be %q or %q", cfg.Store.Driver, StoreDriverFirestore, StoreDriverMongo)
	}
	if cfg.Mongo.MinPoolSize > cfg.Mongo.MaxPoolSize {
		return fmt.Errorf("mongo min_pool_size (%d) exceeds max_pool_size (%d)", cfg.Mongo.MinPoolSize, cfg.Mongo.MaxPoolSize)
	}
	if cfg.Queue.Attempts < 1 {
		return fmt.Errorf("queue attempts must be at least 1, got %d", cfg.Queue.Attempts)
	}
	if cfg.Queue.Concurrency < 1 {
		return fmt.Errorf("queue concurrency must be at least 1, got %d", cfg.Queue.Concurrency)
	}
	if cfg.Queue.BackoffDelay <= 0 {
		return fmt.Errorf("queue backoff_delay must be positive")
	}
	return nil
}

// LoadFromConfigFilePath loads and parses the config file into AppConfig.
func LoadFromConfigFilePath(configPath string) (*AppConfig, error) {
	// #nosec G304: path comes from CONFIG_PATH set by the operator
	data, err := os.ReadFile(configPath)
	if err != nil {
		logger.Error("Failed to read config file", err, zap.String("path", configPath))
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		logger.Error("Failed to unmarshal config", err)
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	assignDefaultConfigValues(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger.Info("Configuration loaded successfully", zap.String("path", configPath))
	return &cfg, nil
}

// LoadEnv loads variables from a .env file in the working directory, if any.
func LoadEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// LoadFromConfig loads .env, then the yaml file named by CONFIG_PATH (or defaultPath).
func LoadFromConfig(defaultPath string) (*AppConfig, error) {
	if err := LoadEnv(); err != nil {
		logger.Warn("Failed to load .env file", zap.Error(err))
	}

	configPath := GetEnvOrDefaultAsString("CONFIG_PATH", defaultPath)
	cfg, err := LoadFromConfigFilePath(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
	}
	return cfg, nil
}

func GetEnvOrDefaultAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.Atoi(strings.TrimSpace(valueStr))
	if err != nil {
		return defaultValue
	}
	return value
}

func GetEnvOrDefaultAsUint64(key string, defaultValue uint64) uint64 {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.ParseUint(strings.TrimSpace(valueStr), 10, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func GetEnvOrDefaultAsBool(key string, defaultValue bool) bool {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.ParseBool(strings.TrimSpace(valueStr))
	if err != nil {
		return defaultValue
	}
	return value
}

// GetEnvOrDefaultAsDuration accepts Go durations ("2s") or plain milliseconds ("2000").
func GetEnvOrDefaultAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueStr = strings.TrimSpace(valueStr)
	if ms, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// GetEnvOrDefaultAsString returns the value of the given env variable or the default value if not set.
func GetEnvOrDefaultAsString(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func orString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func orInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func orUint64(v, def uint64) uint64 {
	if v == 0 {
		return def
	}
	return v
}

func orDuration(v, def time.Duration) time.Duration {
	if v == 0 {
		return def
	}
	return v
}
