package repository

import (
	"context"

	"github.com/user/attendance-service/internal/entity"
)

// SnapshotRepository stores the history of fetched attendance.
type SnapshotRepository interface {
	// Save stores one fetch result.
	Save(ctx context.Context, snapshot *entity.Snapshot) error
	// List returns the snapshots for a hashed roll number and term, newest first.
	List(ctx context.Context, rollHash string, term entity.Term, limit int) ([]*entity.Snapshot, error)
	// Ping checks connectivity.
	Ping(ctx context.Context) error
}
