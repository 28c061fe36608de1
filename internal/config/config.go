package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port           string
	Env            string
	LogLevel       string
	DatabaseURL    string
	UseMemoryQueue bool
	WorkerCount    int

	// Redis backs the alert dedup store used by the audit worker.
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// AWS / SQS wiring for appointment-completion events and outbox delivery.
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
	AuditQueueURL       string
	EventTopicQueueURL  string

	// Audit worker behavior.
	AuditPollInterval time.Duration
	AlertDedupTTL     time.Duration

	AdminJWTSecret     string
	CORSAllowedOrigins []string
	CORSAllowedHeaders []string

	// Public endpoint rate limiting (requests/sec and burst per IP).
	// Idle buckets older than the eviction horizon are dropped.
	RateLimitPerSecond    float64
	RateLimitBurst        int
	RateLimitIdleEviction time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		UseMemoryQueue: getEnvAsBool("USE_MEMORY_QUEUE", false),
		WorkerCount:    getEnvAsInt("WORKER_COUNT", 2),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		AuditQueueURL:       getEnv("AUDIT_QUEUE_URL", ""),
		EventTopicQueueURL:  getEnv("EVENT_TOPIC_QUEUE_URL", ""),

		AuditPollInterval: getEnvAsDuration("AUDIT_POLL_INTERVAL", 30*time.Second),
		AlertDedupTTL:     getEnvAsDuration("ALERT_DEDUP_TTL", 24*time.Hour),

		AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),
		CORSAllowedOrigins: splitAndTrim(getEnv("CORS_ALLOWED_ORIGINS", "")),
		CORSAllowedHeaders: splitAndTrim(getEnv("CORS_ALLOWED_HEADERS", "Authorization,Content-Type,X-Org-Id")),

		RateLimitPerSecond:    getEnvAsFloat("RATE_LIMIT_PER_SECOND", 10),
		RateLimitBurst:        getEnvAsInt("RATE_LIMIT_BURST", 20),
		RateLimitIdleEviction: getEnvAsDuration("RATE_LIMIT_IDLE_EVICTION", 10*time.Minute),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func splitAndTrim(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
