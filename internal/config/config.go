package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// Kaggle CLI
	KaggleCommand        string        `envconfig:"KAGGLE_COMMAND" default:"kaggle"`
	KagglePageSize       int           `envconfig:"KAGGLE_PAGE_SIZE" default:"200"`
	KaggleTimeout        time.Duration `envconfig:"KAGGLE_TIMEOUT" default:"60s"`
	KaggleMaxOutputBytes int64         `envconfig:"KAGGLE_MAX_OUTPUT_BYTES" default:"10485760"` // 10MB

	// Database
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"datasprint"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"datasprint_user"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" required:"true"`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Redis (sync-completion notifications; optional)
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	NotifyEnabled bool   `envconfig:"NOTIFY_ENABLED" default:"true"`
	NotifyChannel string `envconfig:"NOTIFY_CHANNEL" default:"leaderboard.sync"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Scheduler
	EnableScheduler    bool   `envconfig:"ENABLE_SCHEDULER" default:"true"`
	InitialSyncEnabled bool   `envconfig:"INITIAL_SYNC_ENABLED" default:"false"`
	SyncCron           string `envconfig:"SYNC_CRON" default:"*/5 * * * *"`
	SyncTimezone       string `envconfig:"SYNC_TIMEZONE" default:"Asia/Kolkata"`

	// Delay between competitions in one batch, to stay under the external
	// tool's rate limits.
	SyncDelay time.Duration `envconfig:"SYNC_DELAY" default:"2s"`

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if in development mode
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.DatabasePassword == "" {
		return fmt.Errorf("DATABASE_PASSWORD is required")
	}

	if c.KaggleCommand == "" {
		return fmt.Errorf("KAGGLE_COMMAND must not be empty")
	}

	if c.KagglePageSize <= 0 {
		return fmt.Errorf("KAGGLE_PAGE_SIZE must be positive, got %d", c.KagglePageSize)
	}

	if c.KaggleTimeout <= 0 {
		return fmt.Errorf("KAGGLE_TIMEOUT must be positive, got %s", c.KaggleTimeout)
	}

	if _, err := time.LoadLocation(c.SyncTimezone); err != nil {
		return fmt.Errorf("invalid SYNC_TIMEZONE %q: %w", c.SyncTimezone, err)
	}

	return nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DatabaseHost,
		c.DatabasePort,
		c.DatabaseUser,
		c.DatabasePassword,
		c.DatabaseName,
		c.DatabaseSSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// Timezone returns the scheduler timezone. Validate has already checked that
// the name resolves.
func (c *Config) Timezone() *time.Location {
	loc, err := time.LoadLocation(c.SyncTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// MustLoad loads configuration or panics on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
