package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// TrackingCache caches public tracking lookups in Redis. The cache is a
// read-side optimization only; delivery state never depends on it.
type TrackingCache struct {
	client *redis.Client
}

// NewTrackingCache creates a new TrackingCache.
func NewTrackingCache(client *redis.Client) *TrackingCache {
	return &TrackingCache{client: client}
}

// TrackingCacheTTL bounds staleness for cached tracking responses. The
// cache is also invalidated on every committed transition, so the TTL only
// matters if an invalidation is lost.
const TrackingCacheTTL = 30 * time.Second

const trackingCachePrefix = "cache:tracking:"

// CachedStatusEvent is one history entry in a cached tracking response.
type CachedStatusEvent struct {
	Status    string    `json:"status"`
	Location  string    `json:"location,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CachedTracking is a cached public tracking response.
type CachedTracking struct {
	TrackingNumber string              `json:"tracking_number"`
	Status         string              `json:"status"`
	History        []CachedStatusEvent `json:"history"`
}

// Get retrieves a cached tracking response. A cache miss returns (nil, nil).
func (c *TrackingCache) Get(ctx context.Context, trackingNumber string) (*CachedTracking, error) {
	key := trackingCachePrefix + trackingNumber
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var tracking CachedTracking
	if err := json.Unmarshal(data, &tracking); err != nil {
		return nil, err
	}
	return &tracking, nil
}

// Set stores a tracking response in cache.
func (c *TrackingCache) Set(ctx context.Context, tracking *CachedTracking) error {
	key := trackingCachePrefix + tracking.TrackingNumber
	data, err := json.Marshal(tracking)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, TrackingCacheTTL).Err()
}

// Invalidate removes a tracking response from cache.
func (c *TrackingCache) Invalidate(ctx context.Context, trackingNumber string) error {
	key := trackingCachePrefix + trackingNumber
	return c.client.Del(ctx, key).Err()
}
