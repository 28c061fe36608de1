package bootstrap

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	appconfig "github.com/oakpoint-health/clinic-core/internal/config"
	"github.com/oakpoint-health/clinic-core/pkg/logging"
)

func TestBuildRedisClientNilConfig(t *testing.T) {
	if client := BuildRedisClient(context.Background(), nil, logging.New("error"), false); client != nil {
		t.Fatalf("expected nil client for nil config")
	}
}

func TestBuildRedisClientEmptyAddr(t *testing.T) {
	cfg := &appconfig.Config{RedisAddr: "  "}
	if client := BuildRedisClient(context.Background(), cfg, logging.New("error"), false); client != nil {
		t.Fatalf("expected nil client for blank addr")
	}
}

func TestBuildRedisClientVerifyFailure(t *testing.T) {
	cfg := &appconfig.Config{RedisAddr: "127.0.0.1:1"}
	if client := BuildRedisClient(context.Background(), cfg, logging.New("error"), true); client != nil {
		t.Fatalf("expected nil client when ping fails")
	}
}

func TestBuildRedisClientVerifySuccess(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &appconfig.Config{RedisAddr: mr.Addr()}

	client := BuildRedisClient(context.Background(), cfg, logging.New("error"), true)
	if client == nil {
		t.Fatal("expected client when redis is reachable")
	}
	defer func() { _ = client.Close() }()
}

func TestBuildDedupStoreWithoutRedis(t *testing.T) {
	if store := BuildDedupStore(nil, &appconfig.Config{}); store != nil {
		t.Fatalf("expected nil dedup store without redis")
	}
}

func TestBuildPgxPoolUnconfigured(t *testing.T) {
	pool, err := BuildPgxPool(context.Background(), &appconfig.Config{}, logging.New("error"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pool != nil {
		t.Fatalf("expected nil pool without DATABASE_URL")
	}
}

func TestBuildStoresInMemoryFallback(t *testing.T) {
	stores := BuildStores(nil)
	if stores.Alerts == nil || stores.Authorizations == nil || stores.Patients == nil {
		t.Fatal("expected in-memory stores without a pool")
	}
	if stores.Outbox != nil {
		t.Fatal("expected nil outbox without a pool")
	}
}
