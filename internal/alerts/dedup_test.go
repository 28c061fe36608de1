package alerts

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDedup(t *testing.T, ttl time.Duration) (*DedupStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewDedupStore(client, ttl), mr
}

func TestDedupClaimOncePerWindow(t *testing.T) {
	store, _ := newTestDedup(t, time.Hour)
	ctx := context.Background()

	first, err := store.Claim(ctx, "org1", "rule-diabetes", "p1", "manual-check")
	require.NoError(t, err)
	assert.True(t, first)

	second, err := store.Claim(ctx, "org1", "rule-diabetes", "p1", "manual-check")
	require.NoError(t, err)
	assert.False(t, second, "same rule+patient+trigger within TTL must be suppressed")

	// A different trigger is a different slot.
	other, err := store.Claim(ctx, "org1", "rule-diabetes", "p1", "encounter-start")
	require.NoError(t, err)
	assert.True(t, other)
}

func TestDedupClaimAfterTTL(t *testing.T) {
	store, mr := newTestDedup(t, time.Minute)
	ctx := context.Background()

	ok, err := store.Claim(ctx, "org1", "r1", "p1", "manual-check")
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Minute)

	ok, err = store.Claim(ctx, "org1", "r1", "p1", "manual-check")
	require.NoError(t, err)
	assert.True(t, ok, "expired window allows the alert again")
}

func TestDedupRelease(t *testing.T) {
	store, _ := newTestDedup(t, time.Hour)
	ctx := context.Background()

	ok, err := store.Claim(ctx, "org1", "r1", "p1", "manual-check")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, store.Release(ctx, "org1", "r1", "p1", "manual-check"))

	ok, err = store.Claim(ctx, "org1", "r1", "p1", "manual-check")
	require.NoError(t, err)
	assert.True(t, ok, "released slot can be claimed again")
}

func TestDedupNilClientAllowsEverything(t *testing.T) {
	store := NewDedupStore(nil, time.Hour)
	ok, err := store.Claim(context.Background(), "org1", "r1", "p1", "manual-check")
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, store.Release(context.Background(), "org1", "r1", "p1", "manual-check"))
}
