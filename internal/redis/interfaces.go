package redis

import "context"

// TrackingCacheInterface defines the interface for tracking response caching.
// Services accept the interface so tests can run without a Redis instance.
type TrackingCacheInterface interface {
	Get(ctx context.Context, trackingNumber string) (*CachedTracking, error)
	Set(ctx context.Context, tracking *CachedTracking) error
	Invalidate(ctx context.Context, trackingNumber string) error
}

var _ TrackingCacheInterface = (*TrackingCache)(nil)
