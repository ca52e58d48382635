package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds the connection settings for RedisCache.
type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
	// default: 10
	PoolSize int
	// default: 5
	MinIdleConns int
	// default: 5s
	DialTimeout time.Duration
	// default: 3s
	ReadTimeout time.Duration
	// default: 3s
	WriteTimeout time.Duration
}

// Validate checks the configuration values.
func (c *RedisConfig) Validate() error {
	if c.Addr == "" {
		return ErrInvalidAddr(c.Addr)
	}
	if c.DB < 0 {
		return ErrInvalidDB(c.DB)
	}
	if c.PoolSize < 0 {
		return ErrInvalidPoolSize(c.PoolSize)
	}
	if c.DialTimeout < 0 {
		return ErrInvalidTimeout("dial timeout", c.DialTimeout)
	}
	if c.ReadTimeout < 0 {
		return ErrInvalidTimeout("read timeout", c.ReadTimeout)
	}
	if c.WriteTimeout < 0 {
		return ErrInvalidTimeout("write timeout", c.WriteTimeout)
	}
	return nil
}

// MergeDefaults returns a copy of c with zero values replaced by defaults.
func (c *RedisConfig) MergeDefaults() *RedisConfig {
	merged := *c
	if merged.PoolSize == 0 {
		merged.PoolSize = 10
	}
	if merged.MinIdleConns == 0 {
		merged.MinIdleConns = 5
	}
	if merged.DialTimeout == 0 {
		merged.DialTimeout = 5 * time.Second
	}
	if merged.ReadTimeout == 0 {
		merged.ReadTimeout = 3 * time.Second
	}
	if merged.WriteTimeout == 0 {
		merged.WriteTimeout = 3 * time.Second
	}
	return &merged
}

// Options converts the config to go-redis options.
func (c *RedisConfig) Options() *redis.Options {
	return &redis.Options{
		Addr:         c.Addr,
		Username:     c.Username,
		Password:     c.Password,
		DB:           c.DB,
		PoolSize:     c.PoolSize,
		MinIdleConns: c.MinIdleConns,
		DialTimeout:  c.DialTimeout,
		ReadTimeout:  c.ReadTimeout,
		WriteTimeout: c.WriteTimeout,
	}
}

// RedisCache implements Cache on top of a go-redis client.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a RedisCache. It does not dial; use Ping to verify
// the connection.
func NewRedisCache(cfg *RedisConfig) (*RedisCache, error) {
	if cfg == nil {
		cfg = &RedisConfig{}
	}
	cfg = cfg.MergeDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &RedisCache{client: redis.NewClient(cfg.Options())}, nil
}

// Get implements Cache.
func (r *RedisCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache: redis get %q: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, ErrDecode(key, err)
	}
	return true, nil
}

// Set implements Cache. A ttl of zero stores the key without expiry.
func (r *RedisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return ErrEncode(key, err)
	}

	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("cache: redis set %q: %w", key, err)
	}
	return nil
}

// Delete implements Cache.
func (r *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache: redis del: %w", err)
	}
	return nil
}

// Ping implements Cache.
func (r *RedisCache) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache: redis ping failed: %w", err)
	}
	return nil
}

// Close implements Cache.
func (r *RedisCache) Close() error {
	return r.client.Close()
}
