// Package config loads server and worker settings from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	AutoSettleInline = "inline"
	AutoSettleAsync  = "async"
)

type Config struct {
	// HTTP server
	Port string

	// Database
	DBPath string

	// Auth
	JWTSecret string
	TokenTTL  time.Duration

	LogLevel string

	// AutoSettleMode is inline or async. Async publishes group changes to AMQP
	// and leaves reciprocal settlement to the settle worker.
	AutoSettleMode string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Redis locks; in-process locks when RedisAddr is empty
	RedisAddr string
	LockTTL   time.Duration
}

// LoadEnvFile reads .env into the environment when present. Variables that are
// already set win.
func LoadEnvFile(filenames ...string) {
	_ = godotenv.Load(filenames...)
}

func Load() *Config {
	return &Config{
		Port:   getEnv("PORT", "8080"),
		DBPath: getEnv("DB_PATH", "./data/monies.db"),

		JWTSecret: getEnv("JWT_SECRET", ""),
		TokenTTL:  getEnvDuration("TOKEN_TTL", 24*time.Hour),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		AutoSettleMode: strings.ToLower(getEnv("AUTO_SETTLE_MODE", AutoSettleInline)),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "monies"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "group_changed"),

		RedisAddr: getEnv("REDIS_ADDR", ""),
		LockTTL:   getEnvDuration("LOCK_TTL", 10*time.Second),
	}
}

// Validate reports every invalid server setting at once.
func (c *Config) Validate() error {
	errs := c.sharedErrors()

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if len(c.JWTSecret) < 16 {
		errs = append(errs, "JWT_SECRET must be at least 16 characters")
	}
	if c.TokenTTL < time.Minute {
		errs = append(errs, fmt.Sprintf("invalid token TTL %v: must be at least 1 minute", c.TokenTTL))
	}

	switch c.AutoSettleMode {
	case AutoSettleInline:
	case AutoSettleAsync:
		if c.AMQPURL == "" {
			errs = append(errs, "AMQP_URL is required when AUTO_SETTLE_MODE is async")
		}
	default:
		errs = append(errs, fmt.Sprintf("invalid auto-settle mode '%s': must be inline or async", c.AutoSettleMode))
	}

	return joinErrors(errs)
}

// ValidateWorker checks the settings the settle worker needs. It has no HTTP
// surface, so port and token settings are ignored and AMQP is mandatory.
func (c *Config) ValidateWorker() error {
	errs := c.sharedErrors()
	if c.AMQPURL == "" {
		errs = append(errs, "AMQP_URL is required by the settle worker")
	}
	return joinErrors(errs)
}

func (c *Config) sharedErrors() []string {
	var errs []string

	if c.DBPath == "" {
		errs = append(errs, "DB_PATH cannot be empty")
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}

	if c.AMQPURL != "" {
		if u, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL: %v", err))
		} else if u.Scheme != "amqp" && u.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", u.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.LockTTL < time.Second {
		errs = append(errs, fmt.Sprintf("invalid lock TTL %v: must be at least 1 second", c.LockTTL))
	}

	return errs
}

func joinErrors(errs []string) error {
	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
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
