package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	SQLiteDBPath string

	// AMQP (optional; empty URL disables messaging)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Engine tuning
	ScoringPreset   string
	ForecastHorizon int
	CorrelationTopN int

	// Derived-result memoization
	CacheSize int
	CacheTTL  time.Duration

	// Worker
	UpcomingWindowDays int
	DigestInterval     time.Duration
}

func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8082"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/finpulse.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "finpulse"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_refresh"),

		ScoringPreset:   getEnv("SCORING_PRESET", "four_pillar"),
		ForecastHorizon: getEnvInt("FORECAST_HORIZON_MONTHS", 6),
		CorrelationTopN: getEnvInt("CORRELATION_TOP_N", 8),

		CacheSize: getEnvInt("CACHE_SIZE", 64),
		CacheTTL:  getEnvDuration("CACHE_TTL", 5*time.Minute),

		UpcomingWindowDays: getEnvInt("UPCOMING_WINDOW_DAYS", 7),
		DigestInterval:     getEnvDuration("DIGEST_INTERVAL", 24*time.Hour),
	}
}

// Validate checks the configuration and returns one combined error listing
// every problem found.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SQLiteDBPath == "" {
		errs = append(errs, "SQLite database path cannot be empty")
	} else {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errs = append(errs, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	switch c.ScoringPreset {
	case "four_pillar", "grades":
	default:
		errs = append(errs, fmt.Sprintf("invalid scoring preset '%s': must be 'four_pillar' or 'grades'", c.ScoringPreset))
	}

	if c.ForecastHorizon < 1 || c.ForecastHorizon > 24 {
		errs = append(errs, fmt.Sprintf("invalid forecast horizon %d: must be between 1 and 24 months", c.ForecastHorizon))
	}

	if c.CorrelationTopN < 2 || c.CorrelationTopN > 20 {
		errs = append(errs, fmt.Sprintf("invalid correlation top-N %d: must be between 2 and 20", c.CorrelationTopN))
	}

	if c.CacheSize < 1 {
		errs = append(errs, fmt.Sprintf("invalid cache size %d: must be at least 1", c.CacheSize))
	}
	if c.CacheTTL < time.Second {
		errs = append(errs, fmt.Sprintf("invalid cache TTL %v: must be at least 1 second", c.CacheTTL))
	}

	if c.UpcomingWindowDays < 1 || c.UpcomingWindowDays > 90 {
		errs = append(errs, fmt.Sprintf("invalid upcoming window %d: must be between 1 and 90 days", c.UpcomingWindowDays))
	}
	if c.DigestInterval < time.Minute {
		errs = append(errs, fmt.Sprintf("invalid digest interval %v: must be at least 1 minute", c.DigestInterval))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
