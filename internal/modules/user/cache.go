// README: Redis read-through cache in front of the user store.
package user

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"carebridge/internal/observability"
	"carebridge/internal/types"
)

const profileKeyPrefix = "user:profile:"

// Getter is satisfied by every user store.
type Getter interface {
	Get(ctx context.Context, id types.ID) (*User, error)
}

// CachedStore serves profiles from Redis and falls back to the wrapped store
// on a miss or a Redis failure. Misses are populated; failures are not.
type CachedStore struct {
	next  Getter
	redis *redis.Client
	ttl   time.Duration
}

func NewCachedStore(next Getter, rdb *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{next: next, redis: rdb, ttl: ttl}
}

func (c *CachedStore) Get(ctx context.Context, id types.ID) (*User, error) {
	key := profileKey(id)
	val, err := c.redis.Get(ctx, key).Result()
	switch {
	case err == nil:
		var u User
		if jsonErr := json.Unmarshal([]byte(val), &u); jsonErr == nil {
			observability.UserCacheTotal.WithLabelValues("hit").Inc()
			return &u, nil
		}
		observability.UserCacheTotal.WithLabelValues("corrupt").Inc()
	case errors.Is(err, redis.Nil):
		observability.UserCacheTotal.WithLabelValues("miss").Inc()
	default:
		observability.UserCacheTotal.WithLabelValues("error").Inc()
		return c.next.Get(ctx, id)
	}

	u, err := c.next.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(u); err == nil {
		_ = c.redis.Set(ctx, key, string(b), c.ttl).Err()
	}
	return u, nil
}

func profileKey(id types.ID) string {
	return profileKeyPrefix + string(id)
}
