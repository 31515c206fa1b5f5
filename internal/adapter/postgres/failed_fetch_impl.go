package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/attendance-service/internal/entity"
)

// FailedFetchRepoImpl provides a concrete implementation for the FailedFetchRepository interface using PostgreSQL.
type FailedFetchRepoImpl struct {
	db *pgxpool.Pool
}

// NewFailedFetchRepo creates a new instance of FailedFetchRepoImpl.
func NewFailedFetchRepo(db *pgxpool.Pool) *FailedFetchRepoImpl {
	return &FailedFetchRepoImpl{db: db}
}

// SaveOrUpdate creates or updates the failure record for a student and term.
// It increments attempt_count on conflict.
func (r *FailedFetchRepoImpl) SaveOrUpdate(ctx context.Context, f *entity.FailedFetch) error {
	query := `
		INSERT INTO failed_fetches (roll_hash, year_idx, sem_idx, failure_reason, error_type, last_attempt_timestamp, attempt_count)
		VALUES ($1, $2, $3, $4, $5, $6, 1)
		ON CONFLICT (roll_hash, year_idx, sem_idx) DO UPDATE SET
			failure_reason = EXCLUDED.failure_reason,
			error_type = EXCLUDED.error_type,
			last_attempt_timestamp = EXCLUDED.last_attempt_timestamp,
			attempt_count = failed_fetches.attempt_count + 1;
	`
	_, err := r.db.Exec(ctx, query,
		f.RollNo,
		f.Term.Year,
		f.Term.Semester,
		f.FailureReason,
		f.ErrorType,
		f.LastAttemptTimestamp,
	)
	return err
}

// Delete removes the failure record for a student and term.
func (r *FailedFetchRepoImpl) Delete(ctx context.Context, rollHash string, term entity.Term) error {
	query := `DELETE FROM failed_fetches WHERE roll_hash = $1 AND year_idx = $2 AND sem_idx = $3;`
	_, err := r.db.Exec(ctx, query, rollHash, term.Year, term.Semester)
	return err
}
