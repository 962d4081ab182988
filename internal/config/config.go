package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the payment gateway
type Config struct {
	// Server
	Port        string
	Environment string

	// Database
	DatabaseURL string

	// Redis (job queue backend)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// NATS (optional platform events)
	NATSURL string

	// Worker pools
	WorkerConcurrency int

	// Payment/refund simulation
	TestMode            bool
	TestPaymentSuccess  bool
	TestProcessingDelay time.Duration
	ProcessingDelayMin  time.Duration
	ProcessingDelayMax  time.Duration
	RefundDelayMin      time.Duration
	RefundDelayMax      time.Duration
	UPISuccessRate      float64
	CardSuccessRate     float64

	// Webhook delivery
	WebhookTimeout       time.Duration
	WebhookRetryTestMode bool
}

// buildDatabaseURL constructs the database URL from individual components
func buildDatabaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "postgres")
	password := getEnv("DB_PASSWORD", "password")
	dbname := getEnv("DB_NAME", "payment_gateway")
	sslmode := getEnv("DB_SSLMODE", "disable")

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		user, password, host, port, dbname, sslmode)
}

// Load loads configuration from environment variables
func Load() *Config {
	// Best effort; env vars win over the file
	_ = godotenv.Load()

	return &Config{
		Port:        getEnv("PORT", "8000"),
		Environment: getEnv("ENVIRONMENT", "development"),

		DatabaseURL: buildDatabaseURL(),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		NATSURL: getEnv("NATS_URL", ""),

		WorkerConcurrency: getEnvInt("WORKER_CONCURRENCY", 5),

		TestMode:            getEnvBool("TEST_MODE", false),
		TestPaymentSuccess:  getEnvBool("TEST_PAYMENT_SUCCESS", true),
		TestProcessingDelay: getEnvDuration("TEST_PROCESSING_DELAY_MS", 1000),
		ProcessingDelayMin:  getEnvDuration("PROCESSING_DELAY_MIN_MS", 5000),
		ProcessingDelayMax:  getEnvDuration("PROCESSING_DELAY_MAX_MS", 10000),
		RefundDelayMin:      getEnvDuration("REFUND_DELAY_MIN_MS", 3000),
		RefundDelayMax:      getEnvDuration("REFUND_DELAY_MAX_MS", 5000),
		UPISuccessRate:      getEnvFloat("UPI_SUCCESS_RATE", 0.90),
		CardSuccessRate:     getEnvFloat("CARD_SUCCESS_RATE", 0.95),

		WebhookTimeout:       getEnvDuration("WEBHOOK_TIMEOUT_MS", 5000),
		WebhookRetryTestMode: getEnvBool("WEBHOOK_RETRY_INTERVALS_TEST", false),
	}
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
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

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultMillis int) time.Duration {
	return time.Duration(getEnvInt(key, defaultMillis)) * time.Millisecond
}
