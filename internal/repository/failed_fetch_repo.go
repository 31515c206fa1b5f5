package repository

import (
	"context"

	"github.com/user/attendance-service/internal/entity"
)

// FailedFetchRepository keeps track of fetches that did not produce records.
type FailedFetchRepository interface {
	// SaveOrUpdate creates or updates the failure record for a student and term.
	// It increments the attempt count on conflict.
	SaveOrUpdate(ctx context.Context, failed *entity.FailedFetch) error
	// Delete removes the failure record, typically after a successful fetch.
	Delete(ctx context.Context, rollHash string, term entity.Term) error
}
