package cache

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/viccon/sturdyc"
)

// MemoryConfig configures MemoryCache.
type MemoryConfig struct {
	// default: 10000
	Capacity int
	// default: 256
	NumShards int
	// TTL applied to every entry. sturdyc does not support per-entry TTLs,
	// so the ttl passed to Set is ignored.
	// default: 5m
	TTL time.Duration
	// default: 10
	EvictionPercentage int
}

// DefaultMemoryConfig returns the configuration used when none is provided.
func DefaultMemoryConfig() *MemoryConfig {
	return &MemoryConfig{
		Capacity:           10000,
		NumShards:          256,
		TTL:                5 * time.Minute,
		EvictionPercentage: 10,
	}
}

// Validate checks the configuration values.
func (c *MemoryConfig) Validate() error {
	if c.Capacity <= 0 {
		return ErrInvalidCapacity(c.Capacity)
	}
	if c.NumShards <= 0 {
		return ErrInvalidShards(c.NumShards)
	}
	if c.TTL <= 0 {
		return ErrInvalidTTL(c.TTL)
	}
	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return ErrInvalidEvictionPercentage(c.EvictionPercentage)
	}
	return nil
}

// MemoryCache implements Cache in process using sturdyc. Entries are kept
// JSON encoded so callers never share memory with the cache.
type MemoryCache struct {
	client *sturdyc.Client[[]byte]
	closed atomic.Bool
}

// NewMemoryCache creates a MemoryCache. Zero fields of cfg fall back to
// DefaultMemoryConfig.
func NewMemoryCache(cfg *MemoryConfig) (*MemoryCache, error) {
	defaults := DefaultMemoryConfig()
	if cfg == nil {
		cfg = defaults
	} else {
		merged := *cfg
		if merged.Capacity == 0 {
			merged.Capacity = defaults.Capacity
		}
		if merged.NumShards == 0 {
			merged.NumShards = defaults.NumShards
		}
		if merged.TTL == 0 {
			merged.TTL = defaults.TTL
		}
		if merged.EvictionPercentage == 0 {
			merged.EvictionPercentage = defaults.EvictionPercentage
		}
		cfg = &merged
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := sturdyc.New[[]byte](cfg.Capacity, cfg.NumShards, cfg.TTL, cfg.EvictionPercentage)
	return &MemoryCache{client: client}, nil
}

// Get implements Cache.
func (m *MemoryCache) Get(_ context.Context, key string, dest any) (bool, error) {
	if m.closed.Load() {
		return false, ErrCacheClosed
	}

	data, ok := m.client.Get(key)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, ErrDecode(key, err)
	}
	return true, nil
}

// Set implements Cache.
func (m *MemoryCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	if m.closed.Load() {
		return ErrCacheClosed
	}

	data, err := json.Marshal(value)
	if err != nil {
		return ErrEncode(key, err)
	}
	m.client.Set(key, data)
	return nil
}

// Delete implements Cache.
func (m *MemoryCache) Delete(_ context.Context, keys ...string) error {
	if m.closed.Load() {
		return ErrCacheClosed
	}
	for _, key := range keys {
		m.client.Delete(key)
	}
	return nil
}

// Ping implements Cache.
func (m *MemoryCache) Ping(context.Context) error {
	if m.closed.Load() {
		return ErrCacheClosed
	}
	return nil
}

// Close implements Cache. Subsequent calls fail with ErrCacheClosed.
func (m *MemoryCache) Close() error {
	m.closed.Store(true)
	return nil
}
