// Package cache provides the key-value cache used in front of the product store.
//
// Values are JSON encoded on Set and decoded into the caller's destination on
// Get. A missing key is reported as (false, nil), never as an error, and
// deleting a key that does not exist is a no-op.
//
// Two backends are available:
//   - RedisCache: shared cache backed by go-redis
//   - MemoryCache: in-process cache backed by sturdyc, for single instance
//     deployments and tests
package cache

import (
	"context"
	"time"
)

// Cache is the contract the product service relies on. Implementations may
// fail on I/O; callers decide whether such failures are fatal.
type Cache interface {
	// Get decodes the value stored at key into dest.
	// found is false on a miss, in which case dest is left untouched.
	Get(ctx context.Context, key string, dest any) (found bool, err error)

	// Set stores value at key, overwriting any existing entry.
	Set(ctx context.Context, key string, value any, ttl time.Duration) error

	// Delete removes keys. Absent keys are ignored.
	Delete(ctx context.Context, keys ...string) error

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	Close() error
}
