package registry

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const roleCacheKeyPrefix = "roles:"

// RoleCache caches resolved role sets by email with a short TTL. It is
// best-effort throughout: a nil client, a miss, or a Redis error all mean
// "no cached answer" and the caller falls back to the registry.
type RoleCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRoleCache builds a cache; client may be nil to disable caching.
func NewRoleCache(client *redis.Client, ttl time.Duration) *RoleCache {
	return &RoleCache{client: client, ttl: ttl}
}

// Get returns the cached role set for email, if any.
func (c *RoleCache) Get(ctx context.Context, email string) ([]string, bool) {
	if c == nil || c.client == nil || c.ttl <= 0 {
		return nil, false
	}
	raw, err := c.client.Get(ctx, roleCacheKeyPrefix+email).Bytes()
	if err != nil {
		return nil, false
	}
	var roles []string
	if err := json.Unmarshal(raw, &roles); err != nil {
		return nil, false
	}
	return roles, true
}

// Set stores the role set for email. Errors are discarded; the cache is
// an optimization, never a source of truth.
func (c *RoleCache) Set(ctx context.Context, email string, roles []string) {
	if c == nil || c.client == nil || c.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(roles)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, roleCacheKeyPrefix+email, raw, c.ttl).Err()
}
