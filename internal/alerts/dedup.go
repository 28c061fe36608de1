package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupKeyPrefix = "alert_dedup:"

// DedupStore suppresses duplicate alerts across repeated evaluation polls.
// The evaluator itself never deduplicates; callers that re-run the catalog
// on unchanged input (the audit worker) claim a key per
// rule+patient+trigger before persisting.
type DedupStore struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewDedupStore wraps a redis client. A nil client disables dedup: every
// Claim succeeds.
func NewDedupStore(redisClient *redis.Client, ttl time.Duration) *DedupStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &DedupStore{redis: redisClient, ttl: ttl}
}

// Claim atomically reserves the dedup slot for an alert. It returns true if
// this caller is first within the TTL window and should persist the alert.
func (s *DedupStore) Claim(ctx context.Context, orgID, ruleID, patientID, trigger string) (bool, error) {
	if s == nil || s.redis == nil {
		return true, nil
	}
	key := dedupKey(orgID, ruleID, patientID, trigger)
	ok, err := s.redis.SetNX(ctx, key, 1, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("alerts: claim dedup key: %w", err)
	}
	return ok, nil
}

// Release drops a claimed slot, letting the next evaluation raise the alert
// again (used when persisting the alert fails).
func (s *DedupStore) Release(ctx context.Context, orgID, ruleID, patientID, trigger string) error {
	if s == nil || s.redis == nil {
		return nil
	}
	if err := s.redis.Del(ctx, dedupKey(orgID, ruleID, patientID, trigger)).Err(); err != nil {
		return fmt.Errorf("alerts: release dedup key: %w", err)
	}
	return nil
}

func dedupKey(orgID, ruleID, patientID, trigger string) string {
	return dedupKeyPrefix + orgID + ":" + ruleID + ":" + patientID + ":" + trigger
}
