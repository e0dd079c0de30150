package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every setting of the API, the notifier worker and the admin
// CLI. Values come from an optional YAML file (PFM_CONFIG_FILE) and are then
// overridden by environment variables.
type Config struct {
	// HTTP Server
	Port               string `yaml:"port"`
	RateLimitPerMinute int    `yaml:"rate_limit_per_minute"`
	MetricsEnabled     bool   `yaml:"metrics_enabled"`
	LogLevel           string `yaml:"log_level"`

	// Database
	SQLiteDBPath string `yaml:"sqlite_db_path"`

	// Auth
	JWTSecret string        `yaml:"jwt_secret"`
	JWTTTL    time.Duration `yaml:"jwt_ttl"`

	// AMQP, optional. Without it notifications are delivered in-process.
	AMQPURL      string `yaml:"amqp_url"`
	AMQPExchange string `yaml:"amqp_exchange"`
	AMQPQueue    string `yaml:"amqp_queue"`

	// Notifications
	SMTPHost            string `yaml:"smtp_host"`
	SMTPPort            int    `yaml:"smtp_port"`
	SMTPUsername        string `yaml:"smtp_username"`
	SMTPPassword        string `yaml:"smtp_password"`
	SMTPFrom            string `yaml:"smtp_from"`
	TelegramBotToken    string `yaml:"telegram_bot_token"`
	NotifyRatePerMinute int    `yaml:"notify_rate_per_minute"`

	// SMTPTimeout bounds one mail session, dial included.
	SMTPTimeout time.Duration `yaml:"smtp_timeout"`
	// NotifyQueueSize bounds in-process notifications waiting for delivery.
	NotifyQueueSize int `yaml:"notify_queue_size"`

	// Report cache. Without Redis an in-process LRU is used.
	RedisAddr      string        `yaml:"redis_addr"`
	ReportCacheTTL time.Duration `yaml:"report_cache_ttl"`

	// Background milestone sweep; zero disables it.
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

func defaults() *Config {
	return &Config{
		Port:               "8081",
		RateLimitPerMinute: 120,
		MetricsEnabled:     true,
		LogLevel:           "info",

		SQLiteDBPath: "./data/pfm.db",

		JWTTTL: 24 * time.Hour,

		AMQPExchange: "pfm",
		AMQPQueue:    "notifications",

		SMTPPort:            587,
		NotifyRatePerMinute: 30,
		SMTPTimeout:         10 * time.Second,
		NotifyQueueSize:     256,

		ReportCacheTTL: 5 * time.Minute,
	}
}

// Load builds the configuration from defaults, the YAML file named by
// PFM_CONFIG_FILE (if any) and the environment, in that order.
func Load() (*Config, error) {
	cfg := defaults()
	if path := os.Getenv("PFM_CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.RateLimitPerMinute = getEnvInt("RATE_LIMIT_PER_MINUTE", c.RateLimitPerMinute)
	c.MetricsEnabled = getEnvBool("METRICS_ENABLED", c.MetricsEnabled)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	c.SQLiteDBPath = getEnv("SQLITE_DB_PATH", c.SQLiteDBPath)

	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.JWTTTL = getEnvDuration("JWT_TTL", c.JWTTTL)

	c.AMQPURL = getEnv("AMQP_URL", c.AMQPURL)
	c.AMQPExchange = getEnv("AMQP_EXCHANGE", c.AMQPExchange)
	c.AMQPQueue = getEnv("AMQP_QUEUE", c.AMQPQueue)

	c.SMTPHost = getEnv("SMTP_HOST", c.SMTPHost)
	c.SMTPPort = getEnvInt("SMTP_PORT", c.SMTPPort)
	c.SMTPUsername = getEnv("SMTP_USERNAME", c.SMTPUsername)
	c.SMTPPassword = getEnv("SMTP_PASSWORD", c.SMTPPassword)
	c.SMTPFrom = getEnv("SMTP_FROM", c.SMTPFrom)
	c.TelegramBotToken = getEnv("TELEGRAM_BOT_TOKEN", c.TelegramBotToken)
	c.NotifyRatePerMinute = getEnvInt("NOTIFY_RATE_PER_MINUTE", c.NotifyRatePerMinute)
	c.SMTPTimeout = getEnvDuration("SMTP_TIMEOUT", c.SMTPTimeout)
	c.NotifyQueueSize = getEnvInt("NOTIFY_QUEUE_SIZE", c.NotifyQueueSize)

	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.ReportCacheTTL = getEnvDuration("REPORT_CACHE_TTL", c.ReportCacheTTL)

	c.SweepInterval = getEnvDuration("SWEEP_INTERVAL", c.SweepInterval)
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else {
		// Check if directory exists or can be created
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if len(c.JWTSecret) < 16 {
		errors = append(errors, "JWT secret must be at least 16 characters")
	}
	if c.JWTTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid JWT TTL %v: must be at least 1 minute", c.JWTTTL))
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.SMTPHost != "" {
		if c.SMTPPort < 1 || c.SMTPPort > 65535 {
			errors = append(errors, fmt.Sprintf("invalid SMTP port %d: must be between 1 and 65535", c.SMTPPort))
		}
		if c.SMTPFrom == "" {
			errors = append(errors, "SMTP from address is required when SMTP host is provided")
		}
		if c.SMTPTimeout <= 0 {
			errors = append(errors, fmt.Sprintf("invalid SMTP timeout %v: must be positive", c.SMTPTimeout))
		}
	}
	if c.NotifyQueueSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid notify queue size %d: must be at least 1", c.NotifyQueueSize))
	}

	if c.NotifyRatePerMinute < 0 {
		errors = append(errors, fmt.Sprintf("invalid notify rate %d: cannot be negative", c.NotifyRatePerMinute))
	}
	if c.RateLimitPerMinute < 0 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: cannot be negative", c.RateLimitPerMinute))
	}
	if c.ReportCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid report cache TTL %v: cannot be negative", c.ReportCacheTTL))
	}
	if c.SweepInterval != 0 && c.SweepInterval < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid sweep interval %v: must be 0 or at least 1 minute", c.SweepInterval))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
