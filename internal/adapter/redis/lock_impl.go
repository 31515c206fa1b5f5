package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const fetchLockPrefix = "attendance:lock:"

// LockRepoImpl provides a concrete implementation for the LockRepository interface using Redis keys.
type LockRepoImpl struct {
	client *redis.Client
}

// NewLockRepo creates a new instance of LockRepoImpl.
func NewLockRepo(client *redis.Client) *LockRepoImpl {
	return &LockRepoImpl{client: client}
}

func (r *LockRepoImpl) generateKey(key string) string {
	return fmt.Sprintf("%s%s", fetchLockPrefix, key)
}

// Acquire sets the lock key only if it does not exist yet.
// The TTL releases locks left behind by a crashed session.
func (r *LockRepoImpl) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return r.client.SetNX(ctx, r.generateKey(key), "1", ttl).Result()
}

// Release deletes the lock key.
func (r *LockRepoImpl) Release(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.generateKey(key)).Err()
}
