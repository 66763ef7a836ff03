package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store drivers
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

// Config holds all configuration for the application
type Config struct {
	Environment string `mapstructure:"ENVIRONMENT"`
	Port        string `mapstructure:"PORT"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`
	Timezone    string `mapstructure:"TIMEZONE"`

	// Workflow tables, staff directory and templates
	WorkflowConfigPath string `mapstructure:"WORKFLOW_CONFIG_PATH"`

	// Store configuration
	StoreDriver      string `mapstructure:"STORE_DRIVER"`
	DatabaseURL      string `mapstructure:"DATABASE_URL"`
	DatabaseHost     string `mapstructure:"DB_HOST"`
	DatabasePort     string `mapstructure:"DB_PORT"`
	DatabaseUser     string `mapstructure:"DB_USER"`
	DatabasePassword string `mapstructure:"DB_PASSWORD"`
	DatabaseName     string `mapstructure:"DB_NAME"`
	DatabaseSSLMode  string `mapstructure:"DB_SSL_MODE"`

	// Dashboard authentication
	JWTSecret         string        `mapstructure:"JWT_SECRET"`
	JWTTTL            time.Duration `mapstructure:"JWT_TTL"`
	AdminUsername     string        `mapstructure:"ADMIN_USERNAME"`
	AdminPasswordHash string        `mapstructure:"ADMIN_PASSWORD_HASH"`

	// CORS configuration
	AllowedOrigins []string `mapstructure:"ALLOWED_ORIGINS"`

	// LINE staff channel (inbound webhook and staff pushes)
	LineAPIBaseURL         string `mapstructure:"LINE_API_BASE_URL"`
	LineStaffChannelSecret string `mapstructure:"LINE_STAFF_CHANNEL_SECRET"`
	LineStaffAccessToken   string `mapstructure:"LINE_STAFF_ACCESS_TOKEN"`
	LineStaffChannelID     string `mapstructure:"LINE_STAFF_CHANNEL_ID"`

	// LINE customer channel (push only; the secret is used for client-credential tokens)
	LineCustomerChannelSecret string `mapstructure:"LINE_CUSTOMER_CHANNEL_SECRET"`
	LineCustomerAccessToken   string `mapstructure:"LINE_CUSTOMER_ACCESS_TOKEN"`
	LineCustomerChannelID     string `mapstructure:"LINE_CUSTOMER_CHANNEL_ID"`

	// Admin channel: LINE push, Slack webhook and/or Gmail
	AdminLineID       string `mapstructure:"ADMIN_LINE_ID"`
	SlackWebhookURL   string `mapstructure:"SLACK_WEBHOOK_URL"`
	SlackChannel      string `mapstructure:"SLACK_CHANNEL"`
	GmailClientID     string `mapstructure:"GMAIL_CLIENT_ID"`
	GmailClientSecret string `mapstructure:"GMAIL_CLIENT_SECRET"`
	GmailRefreshToken string `mapstructure:"GMAIL_REFRESH_TOKEN"`
	AdminEmail        string `mapstructure:"ADMIN_EMAIL"`

	// Notification dispatcher
	DispatchMaxAttempts    int           `mapstructure:"DISPATCH_MAX_ATTEMPTS"`
	DispatchBaseBackoff    time.Duration `mapstructure:"DISPATCH_BASE_BACKOFF"`
	DispatchMaxBackoff     time.Duration `mapstructure:"DISPATCH_MAX_BACKOFF"`
	DispatchJitter         time.Duration `mapstructure:"DISPATCH_JITTER"`
	DispatchAttemptTimeout time.Duration `mapstructure:"DISPATCH_ATTEMPT_TIMEOUT"`
	DispatchWorkers        int           `mapstructure:"DISPATCH_WORKERS"`
	DispatchQueueSize      int           `mapstructure:"DISPATCH_QUEUE_SIZE"`

	// Inbound event processing
	InboundWorkers   int           `mapstructure:"INBOUND_WORKERS"`
	InboundQueueSize int           `mapstructure:"INBOUND_QUEUE_SIZE"`
	DedupWindow      int           `mapstructure:"DEDUP_WINDOW"`
	DedupTTL         time.Duration `mapstructure:"DEDUP_TTL"`
	RedisURL         string        `mapstructure:"REDIS_URL"`
	WebhookRateLimit string        `mapstructure:"WEBHOOK_RATE_LIMIT"`
}

// Load reads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Set default values
	setDefaults(v)

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Override with environment variables
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// ALLOWED_ORIGINS arrives as a comma separated string from the environment
	config.AllowedOrigins = splitAndTrim(strings.Join(config.AllowedOrigins, ","))

	// Build database URL if not provided
	if config.DatabaseURL == "" {
		config.DatabaseURL = buildDatabaseURL(&config)
	}

	// Validate required fields
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("PORT", "7008")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("TIMEZONE", "Asia/Tokyo")
	v.SetDefault("WORKFLOW_CONFIG_PATH", "config/workflow.yaml")

	// Store defaults
	v.SetDefault("STORE_DRIVER", StoreMemory)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "staff_absence")
	v.SetDefault("DB_SSL_MODE", "disable")

	// Auth defaults
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_TTL", time.Hour)
	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("ADMIN_PASSWORD_HASH", "")

	// CORS defaults
	v.SetDefault("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:8080"})

	// LINE defaults
	v.SetDefault("LINE_API_BASE_URL", "https://api.line.me")
	v.SetDefault("LINE_STAFF_CHANNEL_SECRET", "")
	v.SetDefault("LINE_STAFF_ACCESS_TOKEN", "")
	v.SetDefault("LINE_STAFF_CHANNEL_ID", "")
	v.SetDefault("LINE_CUSTOMER_CHANNEL_SECRET", "")
	v.SetDefault("LINE_CUSTOMER_ACCESS_TOKEN", "")
	v.SetDefault("LINE_CUSTOMER_CHANNEL_ID", "")

	// Admin channel defaults
	v.SetDefault("ADMIN_LINE_ID", "")
	v.SetDefault("SLACK_WEBHOOK_URL", "")
	v.SetDefault("SLACK_CHANNEL", "#staff-absence")
	v.SetDefault("GMAIL_CLIENT_ID", "")
	v.SetDefault("GMAIL_CLIENT_SECRET", "")
	v.SetDefault("GMAIL_REFRESH_TOKEN", "")
	v.SetDefault("ADMIN_EMAIL", "")

	// Dispatcher defaults
	v.SetDefault("DISPATCH_MAX_ATTEMPTS", 3)
	v.SetDefault("DISPATCH_BASE_BACKOFF", 500*time.Millisecond)
	v.SetDefault("DISPATCH_MAX_BACKOFF", 5*time.Second)
	v.SetDefault("DISPATCH_JITTER", 250*time.Millisecond)
	v.SetDefault("DISPATCH_ATTEMPT_TIMEOUT", 10*time.Second)
	v.SetDefault("DISPATCH_WORKERS", 4)
	v.SetDefault("DISPATCH_QUEUE_SIZE", 256)

	// Inbound defaults
	v.SetDefault("INBOUND_WORKERS", 4)
	v.SetDefault("INBOUND_QUEUE_SIZE", 256)
	v.SetDefault("DEDUP_WINDOW", 1024)
	v.SetDefault("DEDUP_TTL", 24*time.Hour)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("WEBHOOK_RATE_LIMIT", "300-M")
}

func buildDatabaseURL(config *Config) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		config.DatabaseUser,
		config.DatabasePassword,
		config.DatabaseHost,
		config.DatabasePort,
		config.DatabaseName,
		config.DatabaseSSLMode,
	)
}

func validate(config *Config) error {
	if config.Environment == "production" {
		if config.JWTSecret == defaultJWTSecret {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if config.LineStaffChannelSecret == "" {
			return fmt.Errorf("LINE_STAFF_CHANNEL_SECRET must be set in production")
		}
	}

	switch config.StoreDriver {
	case StoreMemory:
	case StorePostgres:
		if config.DatabaseName == "" && config.DatabaseURL == "" {
			return fmt.Errorf("database name is required")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", config.StoreDriver)
	}

	if config.DispatchMaxAttempts < 1 {
		return fmt.Errorf("DISPATCH_MAX_ATTEMPTS must be at least 1")
	}
	if config.DispatchWorkers < 0 {
		return fmt.Errorf("DISPATCH_WORKERS must not be negative")
	}
	if config.InboundWorkers < 1 {
		return fmt.Errorf("INBOUND_WORKERS must be at least 1")
	}

	if _, err := time.LoadLocation(config.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	return nil
}

// Location returns the workflow clock's time zone
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// IsDevelopment returns true if the environment is development
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if the environment is production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
