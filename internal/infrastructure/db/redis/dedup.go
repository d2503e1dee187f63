package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupTTL = time.Hour

// DedupChecker suppresses duplicate notification deliveries backed by Redis.
// Key format: notify:<dedup_key>
type DedupChecker struct {
	client *redis.Client
}

// NewDedupChecker creates a DedupChecker wrapping the given Redis client.
func NewDedupChecker(client *redis.Client) *DedupChecker {
	return &DedupChecker{client: client}
}

// IsDuplicate reports whether a notification with this key was already sent
// within the dedup window.
func (d *DedupChecker) IsDuplicate(ctx context.Context, key string) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records that a notification with this key has been sent (expires
// after dedupTTL).
func (d *DedupChecker) Mark(ctx context.Context, key string) error {
	return d.client.Set(ctx, d.key(key), "1", dedupTTL).Err()
}

func (d *DedupChecker) key(k string) string {
	return "notify:" + k
}
