package domain

import (
	"context"
	"time"
)

// StationProvider geocodes a free-text station name into candidate stations,
// in provider relevance order.
type StationProvider interface {
	Resolve(ctx context.Context, name string) ([]Station, error)
}

// HotelProvider searches hotel inventory near a station under a price
// ceiling for a one-night stay starting at checkIn.
type HotelProvider interface {
	Search(ctx context.Context, station Station, priceMax int, checkIn time.Time) ([]Hotel, error)
}

// Cache is a TTL key/value store. Get reports a miss for absent and expired
// entries alike; implementations evict lazily.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
