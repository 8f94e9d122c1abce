package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
// Every field has a sensible default; only DATABASE_URL is required.
// Per-run behavior flags (debug mode, retry policy, duplicate suppression,
// default templates) are NOT here — those live in the settings store and
// are snapshotted at the start of every dispatch run.
type Config struct {
	// Server
	HTTPPort        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Database
	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// Redis (pending-work lock backend)
	RedisAddr     string
	RedisPassword string

	// Mail gateway
	MailGatewayURL string
	MailTimeout    time.Duration
	MailRatePerSec int

	// Site name substituted for the [site:name] token.
	SiteName string

	// Dispatch engine: recipients per account-load batch.
	BatchSize int

	// Queue consumer
	ConsumerCount    int
	ConsumerInterval time.Duration
	RedeliveryDelay  time.Duration
	ClaimTimeout     time.Duration
}

func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		ReadTimeout:     getDuration("READ_TIMEOUT", 5*time.Second),
		WriteTimeout:    getDuration("WRITE_TIMEOUT", 10*time.Second),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		DatabaseURL: dbURL,
		DBMaxConns:  int32(getInt("DB_MAX_CONNS", 25)),
		DBMinConns:  int32(getInt("DB_MIN_CONNS", 5)),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		MailGatewayURL: getEnv("MAIL_GATEWAY_URL", "http://localhost:8025/send"),
		MailTimeout:    getDuration("MAIL_TIMEOUT", 10*time.Second),
		MailRatePerSec: getInt("MAIL_RATE_PER_SEC", 50),

		SiteName: getEnv("SITE_NAME", "Flagnotify"),

		BatchSize: getInt("DISPATCH_BATCH_SIZE", 50),

		ConsumerCount:    getInt("CONSUMER_COUNT", 2),
		ConsumerInterval: getDuration("CONSUMER_INTERVAL", 2*time.Second),
		RedeliveryDelay:  getDuration("REDELIVERY_DELAY", 30*time.Second),
		ClaimTimeout:     getDuration("CLAIM_TIMEOUT", 5*time.Minute),
	}, nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
