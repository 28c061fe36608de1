package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("AUDIT_QUEUE_URL", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.AuditQueueURL != "" {
		t.Fatalf("expected default audit queue empty, got %s", cfg.AuditQueueURL)
	}
	if cfg.AuditPollInterval != 30*time.Second {
		t.Fatalf("expected default poll interval, got %s", cfg.AuditPollInterval)
	}
	if cfg.AlertDedupTTL != 24*time.Hour {
		t.Fatalf("expected default dedup TTL, got %s", cfg.AlertDedupTTL)
	}
	if cfg.CORSAllowedOrigins != nil {
		t.Fatalf("expected no CORS origins by default, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("USE_MEMORY_QUEUE", "true")
	t.Setenv("AUDIT_POLL_INTERVAL", "2m")
	t.Setenv("ALERT_DEDUP_TTL", "1h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://portal.example.com, https://staging.example.com")
	t.Setenv("RATE_LIMIT_PER_SECOND", "2.5")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Fatalf("expected env override, got %s", cfg.Env)
	}
	if cfg.DatabaseURL != "postgres://user@host/db" {
		t.Fatalf("expected db override, got %s", cfg.DatabaseURL)
	}
	if !cfg.UseMemoryQueue {
		t.Fatalf("expected memory queue override")
	}
	if cfg.AuditPollInterval != 2*time.Minute {
		t.Fatalf("expected poll interval override, got %s", cfg.AuditPollInterval)
	}
	if cfg.AlertDedupTTL != time.Hour {
		t.Fatalf("expected dedup TTL override, got %s", cfg.AlertDedupTTL)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://staging.example.com" {
		t.Fatalf("expected trimmed CORS origins, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.RateLimitPerSecond != 2.5 {
		t.Fatalf("expected rate limit override, got %f", cfg.RateLimitPerSecond)
	}
}
