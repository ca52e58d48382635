package cache

import (
	"fmt"
	"time"
)

// ErrCacheClosed is returned by MemoryCache once Close has been called.
var ErrCacheClosed = fmt.Errorf("cache: cache is closed")

// ErrEncode wraps a failure to marshal a value before storing it
func ErrEncode(key string, err error) error {
	return fmt.Errorf("cache: failed to encode value for key %q: %w", key, err)
}

// ErrDecode wraps a failure to unmarshal a stored value
func ErrDecode(key string, err error) error {
	return fmt.Errorf("cache: failed to decode value for key %q: %w", key, err)
}

// ErrInvalidAddr returns an error for an empty redis address
func ErrInvalidAddr(addr string) error {
	return fmt.Errorf("cache: invalid addr: %q (must be non-empty)", addr)
}

// ErrInvalidDB returns an error for a negative redis database index
func ErrInvalidDB(db int) error {
	return fmt.Errorf("cache: invalid db: %d (must be >= 0)", db)
}

// ErrInvalidPoolSize returns an error for a negative pool size
func ErrInvalidPoolSize(size int) error {
	return fmt.Errorf("cache: invalid pool size: %d (must be >= 0)", size)
}

// ErrInvalidTimeout returns an error for a negative timeout
func ErrInvalidTimeout(name string, d time.Duration) error {
	return fmt.Errorf("cache: invalid %s: %v (must be >= 0)", name, d)
}

// ErrInvalidCapacity returns an error for a non-positive memory cache capacity
func ErrInvalidCapacity(capacity int) error {
	return fmt.Errorf("cache: invalid capacity: %d (must be > 0)", capacity)
}

// ErrInvalidTTL returns an error for a non-positive TTL
func ErrInvalidTTL(ttl time.Duration) error {
	return fmt.Errorf("cache: invalid ttl: %v (must be > 0)", ttl)
}

// ErrInvalidShards returns an error for a non-positive shard count
func ErrInvalidShards(n int) error {
	return fmt.Errorf("cache: invalid num shards: %d (must be > 0)", n)
}

// ErrInvalidEvictionPercentage returns an error for a percentage outside 1..100
func ErrInvalidEvictionPercentage(p int) error {
	return fmt.Errorf("cache: invalid eviction percentage: %d (must be between 1 and 100)", p)
}
