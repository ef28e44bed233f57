package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/spf13/viper"
)

const VERSION = "1.0"

// Config is the complete process configuration, assembled once at startup
// from environment variables and an optional .env file.
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Provider    ProviderConfig
	Scheduler   SchedulerConfig
	Reconciler  ReconcilerConfig
	Campaign    CampaignConfig
	Environment string
	LogLevel    string
	Version     string
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port int
	Host string
}

// DatabaseConfig holds the Postgres connection settings. There is a single
// shared database; cross-DC replication and per-tenant isolation are out of
// scope.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds the connection settings backing the distributed rate
// limiter.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// ProviderConfig holds the outbound messaging carrier credentials.
type ProviderConfig struct {
	AccountSID     string
	AuthToken      string
	FromNumber     string
	RequestTimeout time.Duration
	// BaseURL overrides the provider's REST API base URL; empty means the
	// real API. Tests point it at an httptest server.
	BaseURL string
}

// SchedulerConfig holds the campaign scheduler's sweep settings.
type SchedulerConfig struct {
	PollInterval  time.Duration
	BatchSize     int
	MaxConcurrent int
}

// ReconcilerConfig holds the delivery-receipt reconciler's sweep settings.
type ReconcilerConfig struct {
	PollInterval time.Duration
	BatchSize    int
}

// CampaignConfig holds the Orchestrator's per-run dispatch settings.
type CampaignConfig struct {
	MaxProcessTime          time.Duration
	BatchSize               int
	ProgressLogInterval     time.Duration
	EnableCircuitBreaker    bool
	CircuitBreakerThreshold int
	CircuitBreakerCooldown  time.Duration
	DefaultTimezone         string
}

// LoadOptions contains options for loading configuration.
type LoadOptions struct {
	EnvFile string // Optional environment file to load (e.g., ".env", ".env.test")
}

// getDSN constructs the database connection string.
func getDSN(cfg *DatabaseConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}

	if cfg.Password == "" {
		return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.DBName, sslMode)
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, sslMode)
}

// DSN returns this config's Postgres connection string.
func (c *Config) DSN() string {
	return getDSN(&c.Database)
}

// Load loads the configuration with default options.
func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{EnvFile: ".env"})
}

// LoadWithOptions loads the configuration with the specified options.
func LoadWithOptions(opts LoadOptions) (*Config, error) {
	v := viper.New()

	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_HOST", "0.0.0.0")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "notifuse_campaigns")
	v.SetDefault("DB_SSLMODE", "require")

	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("PROVIDER_REQUEST_TIMEOUT", 10*time.Second)
	v.SetDefault("PROVIDER_BASE_URL", "")

	v.SetDefault("SCHEDULER_POLL_INTERVAL", 30*time.Second)
	v.SetDefault("SCHEDULER_BATCH_SIZE", 20)
	v.SetDefault("SCHEDULER_MAX_CONCURRENT", 5)

	v.SetDefault("RECONCILER_POLL_INTERVAL", 30*time.Second)
	v.SetDefault("RECONCILER_BATCH_SIZE", 100)

	v.SetDefault("CAMPAIGN_MAX_PROCESS_TIME", 50*time.Second)
	v.SetDefault("CAMPAIGN_BATCH_SIZE", 100)
	v.SetDefault("CAMPAIGN_PROGRESS_LOG_INTERVAL", 5*time.Second)
	v.SetDefault("CAMPAIGN_ENABLE_CIRCUIT_BREAKER", true)
	v.SetDefault("CAMPAIGN_CIRCUIT_BREAKER_THRESHOLD", 5)
	v.SetDefault("CAMPAIGN_CIRCUIT_BREAKER_COOLDOWN", time.Minute)
	v.SetDefault("CAMPAIGN_DEFAULT_TIMEZONE", "UTC")

	v.SetDefault("ENVIRONMENT", "production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("VERSION", VERSION)

	if opts.EnvFile != "" {
		v.SetConfigName(opts.EnvFile)
		v.SetConfigType("env")

		currentPath, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("error getting current directory: %w", err)
		}
		v.AddConfigPath(currentPath)

		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if v.GetString("PROVIDER_ACCOUNT_SID") == "" || v.GetString("PROVIDER_AUTH_TOKEN") == "" {
		return nil, fmt.Errorf("PROVIDER_ACCOUNT_SID and PROVIDER_AUTH_TOKEN must be set")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetInt("SERVER_PORT"),
			Host: v.GetString("SERVER_HOST"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Provider: ProviderConfig{
			AccountSID:     v.GetString("PROVIDER_ACCOUNT_SID"),
			AuthToken:      v.GetString("PROVIDER_AUTH_TOKEN"),
			FromNumber:     v.GetString("PROVIDER_FROM_NUMBER"),
			RequestTimeout: v.GetDuration("PROVIDER_REQUEST_TIMEOUT"),
			BaseURL:        v.GetString("PROVIDER_BASE_URL"),
		},
		Scheduler: SchedulerConfig{
			PollInterval:  v.GetDuration("SCHEDULER_POLL_INTERVAL"),
			BatchSize:     v.GetInt("SCHEDULER_BATCH_SIZE"),
			MaxConcurrent: v.GetInt("SCHEDULER_MAX_CONCURRENT"),
		},
		Reconciler: ReconcilerConfig{
			PollInterval: v.GetDuration("RECONCILER_POLL_INTERVAL"),
			BatchSize:    v.GetInt("RECONCILER_BATCH_SIZE"),
		},
		Campaign: CampaignConfig{
			MaxProcessTime:          v.GetDuration("CAMPAIGN_MAX_PROCESS_TIME"),
			BatchSize:               v.GetInt("CAMPAIGN_BATCH_SIZE"),
			ProgressLogInterval:     v.GetDuration("CAMPAIGN_PROGRESS_LOG_INTERVAL"),
			EnableCircuitBreaker:    v.GetBool("CAMPAIGN_ENABLE_CIRCUIT_BREAKER"),
			CircuitBreakerThreshold: v.GetInt("CAMPAIGN_CIRCUIT_BREAKER_THRESHOLD"),
			CircuitBreakerCooldown:  v.GetDuration("CAMPAIGN_CIRCUIT_BREAKER_COOLDOWN"),
			DefaultTimezone:         v.GetString("CAMPAIGN_DEFAULT_TIMEZONE"),
		},
		Environment: v.GetString("ENVIRONMENT"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		Version:     v.GetString("VERSION"),
	}

	return cfg, nil
}

// IsDevelopment returns true if the environment is set to development.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if the environment is set to production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
