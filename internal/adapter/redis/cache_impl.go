package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/user/attendance-service/internal/entity"
	"github.com/user/attendance-service/internal/repository"
)

const cachedAttendancePrefix = "attendance:"

// CacheRepoImpl provides a concrete implementation for the CacheRepository interface using Redis.
type CacheRepoImpl struct {
	client *redis.Client
}

// NewCacheRepo creates a new instance of CacheRepoImpl.
func NewCacheRepo(client *redis.Client) *CacheRepoImpl {
	return &CacheRepoImpl{client: client}
}

func (r *CacheRepoImpl) generateKey(key string) string {
	return fmt.Sprintf("%s%s", cachedAttendancePrefix, key)
}

// Put stores the records as JSON with an expiry time.
func (r *CacheRepoImpl) Put(ctx context.Context, key string, records []entity.AttendanceRecord, expiry time.Duration) error {
	payload, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.generateKey(key), payload, expiry).Err()
}

// Get returns the cached records, or repository.ErrNotFound when the key is absent or expired.
func (r *CacheRepoImpl) Get(ctx context.Context, key string) ([]entity.AttendanceRecord, error) {
	payload, err := r.client.Get(ctx, r.generateKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var records []entity.AttendanceRecord
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, fmt.Errorf("decode cached attendance: %w", err)
	}
	return records, nil
}

// Ping checks Redis connectivity.
func (r *CacheRepoImpl) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
