package repository

import (
	"context"
	"time"

	"github.com/user/attendance-service/internal/entity"
)

// CacheRepository holds recently fetched attendance.
type CacheRepository interface {
	// Put stores records under key with an expiry time.
	Put(ctx context.Context, key string, records []entity.AttendanceRecord, expiry time.Duration) error
	// Get returns the cached records for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]entity.AttendanceRecord, error)
	// Ping checks connectivity.
	Ping(ctx context.Context) error
}

// LockRepository serialises portal sessions per student.
type LockRepository interface {
	// Acquire takes the lock for key. It returns false when already held.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release drops the lock for key.
	Release(ctx context.Context, key string) error
}
