package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var baseValidConfig = AppConfig{
	Server: ServerConfig{ServiceName: "notification-service", Port: 3001},
	Store:  StoreConfig{Driver: StoreDriverMongo},
	Mongo: MongoConfig{
		URI:            "mongodb://localhost:27017",
		DBName:         "loans",
		MinPoolSize:    1,
		MaxPoolSize:    10,
		ConnectTimeout: 5 * time.Second,
	},
	Redis: RedisConfig{Addr: "localhost:6379"},
	Queue: QueueConfig{
		Name:         "notifications",
		Attempts:     3,
		BackoffDelay: 2 * time.Second,
		Concurrency:  2,
	},
}

func writeTempConfig(t *testing.T, content []byte) string {
	t.Helper()
	tmp := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(tmp, content, 0o600))
	return tmp
}

func TestLoadFromConfigFilePath(t *testing.T) {
	t.Run("loads yaml and keeps file values", func(t *testing.T) {
		data, err := yaml.Marshal(baseValidConfig)
		require.NoError(t, err)
		path := writeTempConfig(t, data)

		cfg, err := LoadFromConfigFilePath(path)
		require.NoError(t, err)
		assert.Equal(t, "notification-service", cfg.Server.ServiceName)
		assert.Equal(t, StoreDriverMongo, cfg.Store.Driver)
		assert.Equal(t, 3, cfg.Queue.Attempts)
		assert.Equal(t, 2*time.Second, cfg.Queue.BackoffDelay)
		assert.Equal(t, "noreply@loanmanagement.com", cfg.SendGrid.FromEmail)
	})

	t.Run("parses duration strings", func(t *testing.T) {
		path := writeTempConfig(t, []byte(`
server:
  port: 3002
queue:
  backoff_delay: 1500ms
  lease_duration: 1m
`))
		cfg, err := LoadFromConfigFilePath(path)
		require.NoError(t, err)
		assert.Equal(t, 1500*time.Millisecond, cfg.Queue.BackoffDelay)
		assert.Equal(t, time.Minute, cfg.Queue.LeaseDuration)
		assert.Equal(t, StoreDriverFirestore, cfg.Store.Driver)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFromConfigFilePath(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config file")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := writeTempConfig(t, []byte("server: [unclosed"))
		_, err := LoadFromConfigFilePath(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to unmarshal config")
	})
}

func TestEnvironmentOverrides(t *testing.T) {
	data, err := yaml.Marshal(baseValidConfig)
	require.NoError(t, err)
	path := writeTempConfig(t, data)

	t.Setenv("SERVER_PORT", "4000")
	t.Setenv("REDIS_HOST", "redis.internal")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("SENDGRID_API_KEY", "SG.key")
	t.Setenv("FROM_EMAIL", "loans@example.com")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")
	t.Setenv("QUEUE_BACKOFF_DELAY", "2000")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:3000, https://loans.example.com")

	cfg, err := LoadFromConfigFilePath(path)
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Server.Port)
	assert.Equal(t, "redis.internal:6380", cfg.Redis.Addr)
	assert.Equal(t, "SG.key", cfg.SendGrid.APIKey)
	assert.Equal(t, "loans@example.com", cfg.SendGrid.FromEmail)
	assert.Equal(t, "sk_test_123", cfg.Stripe.SecretKey)
	assert.Equal(t, 2*time.Second, cfg.Queue.BackoffDelay)
	assert.Equal(t, []string{"http://localhost:3000", "https://loans.example.com"}, cfg.Server.AllowedOrigins)
}

func TestLoadFromConfigUsesConfigPath(t *testing.T) {
	data, err := yaml.Marshal(baseValidConfig)
	require.NoError(t, err)
	path := writeTempConfig(t, data)
	t.Setenv("CONFIG_PATH", path)

	cfg, err := LoadFromConfig("does/not/exist.yaml")
	require.NoError(t, err)
	assert.Equal(t, "notification-service", cfg.Server.ServiceName)
}

func TestValidateConfigErrors(t *testing.T) {
	t.Run("port out of range", func(t *testing.T) {
		c := baseValidConfig
		c.Server.Port = 70000
		assert.ErrorContains(t, validateConfig(&c), "invalid server port")
	})

	t.Run("unknown store driver", func(t *testing.T) {
		c := baseValidConfig
		c.Store.Driver = "postgres"
		assert.ErrorContains(t, validateConfig(&c), "invalid store driver")
	})

	t.Run("pool sizes inverted", func(t *testing.T) {
		c := baseValidConfig
		c.Mongo.MinPoolSize = 20
		assert.ErrorContains(t, validateConfig(&c), "min_pool_size")
	})

	t.Run("zero attempts", func(t *testing.T) {
		c := baseValidConfig
		c.Queue.Attempts = 0
		assert.ErrorContains(t, validateConfig(&c), "attempts")
	})

	t.Run("valid", func(t *testing.T) {
		c := baseValidConfig
		assert.NoError(t, validateConfig(&c))
	})
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("CFG_INT", "12")
	t.Setenv("CFG_BAD_INT", "x")
	t.Setenv("CFG_BOOL", "true")
	t.Setenv("CFG_DUR", "3s")
	t.Setenv("CFG_UINT", "7")

	assert.Equal(t, 12, GetEnvOrDefaultAsInt("CFG_INT", 1))
	assert.Equal(t, 1, GetEnvOrDefaultAsInt("CFG_BAD_INT", 1))
	assert.Equal(t, 5, GetEnvOrDefaultAsInt("CFG_MISSING", 5))
	assert.True(t, GetEnvOrDefaultAsBool("CFG_BOOL", false))
	assert.Equal(t, 3*time.Second, GetEnvOrDefaultAsDuration("CFG_DUR", time.Second))
	assert.Equal(t, uint64(7), GetEnvOrDefaultAsUint64("CFG_UINT", 1))
	assert.Equal(t, "fallback", GetEnvOrDefaultAsString("CFG_MISSING", "fallback"))
}

func TestShippedConfigsLoad(t *testing.T) {
	for _, name := range []string{"loan-service", "notification-service", "payment-service"} {
		t.Run(name, func(t *testing.T) {
			cfg, err := LoadFromConfigFilePath(filepath.Join("..", "..", "..", "configs", name+".yaml"))
			require.NoError(t, err)
			assert.Equal(t, name, cfg.Server.ServiceName)
		})
	}
}
