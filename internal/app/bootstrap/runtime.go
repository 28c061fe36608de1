// Package bootstrap wires shared runtime dependencies for the service
// binaries.
package bootstrap

import (
	"context"
	"crypto/tls"
	"database/sql"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/oakpoint-health/clinic-core/internal/alerts"
	appconfig "github.com/oakpoint-health/clinic-core/internal/config"
	"github.com/oakpoint-health/clinic-core/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		return nil
	}
	return client
}

// BuildDedupStore returns the Redis-backed alert dedup store, or nil when
// Redis is unavailable so callers fall back to dedup-free behavior.
func BuildDedupStore(redisClient *redis.Client, cfg *appconfig.Config) *alerts.DedupStore {
	if redisClient == nil || cfg == nil {
		return nil
	}
	return alerts.NewDedupStore(redisClient, cfg.AlertDedupTTL)
}

// BuildPgxPool connects the pgx pool used by repositories and the outbox.
// Returns nil when no DATABASE_URL is configured.
func BuildPgxPool(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*pgxpool.Pool, error) {
	if cfg == nil || strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, nil
	}
	if logger == nil {
		logger = logging.Default()
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	logger.Info("database connected")
	return pool, nil
}

// BuildSQLDB opens a database/sql handle over the pgx stdlib driver for
// stores that need the standard interface. Returns nil when unconfigured.
func BuildSQLDB(cfg *appconfig.Config) (*sql.DB, error) {
	if cfg == nil || strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, nil
	}
	return sql.Open("pgx", cfg.DatabaseURL)
}
