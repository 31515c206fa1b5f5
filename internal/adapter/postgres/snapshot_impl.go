package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/attendance-service/internal/entity"
)

// SnapshotRepoImpl provides a concrete implementation for the SnapshotRepository interface using PostgreSQL.
type SnapshotRepoImpl struct {
	db *pgxpool.Pool
}

// NewSnapshotRepo creates a new instance of SnapshotRepoImpl.
func NewSnapshotRepo(db *pgxpool.Pool) *SnapshotRepoImpl {
	return &SnapshotRepoImpl{db: db}
}

// Save inserts a snapshot, assigning an ID when it has none.
func (r *SnapshotRepoImpl) Save(ctx context.Context, s *entity.Snapshot) error {
	recordsJSON, err := json.Marshal(s.Records)
	if err != nil {
		return err
	}
	id := uuid.New()
	if s.ID != "" {
		if id, err = uuid.Parse(s.ID); err != nil {
			return err
		}
	}
	s.ID = id.String()

	query := `
		INSERT INTO attendance_snapshots (id, roll_hash, year_idx, sem_idx, frame, records, duration_ms, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err = r.db.Exec(ctx, query,
		id,
		s.RollNo,
		s.Term.Year,
		s.Term.Semester,
		s.Frame,
		recordsJSON,
		s.Duration.Milliseconds(),
		s.FetchedAt,
	)
	return err
}

// List retrieves the snapshots for a student and term, newest first.
func (r *SnapshotRepoImpl) List(ctx context.Context, rollHash string, term entity.Term, limit int) ([]*entity.Snapshot, error) {
	query := `
		SELECT id, roll_hash, year_idx, sem_idx, frame, records, duration_ms, fetched_at
		FROM attendance_snapshots
		WHERE roll_hash = $1 AND year_idx = $2 AND sem_idx = $3
		ORDER BY fetched_at DESC
		LIMIT $4;
	`
	rows, err := r.db.Query(ctx, query, rollHash, term.Year, term.Semester, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []*entity.Snapshot
	for rows.Next() {
		var (
			s           entity.Snapshot
			id          uuid.UUID
			recordsJSON []byte
			durationMS  int64
		)
		if err := rows.Scan(
			&id,
			&s.RollNo,
			&s.Term.Year,
			&s.Term.Semester,
			&s.Frame,
			&recordsJSON,
			&durationMS,
			&s.FetchedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(recordsJSON, &s.Records); err != nil {
			return nil, err
		}
		s.ID = id.String()
		s.Duration = time.Duration(durationMS) * time.Millisecond
		snapshots = append(snapshots, &s)
	}

	return snapshots, rows.Err()
}

// Ping checks database connectivity.
func (r *SnapshotRepoImpl) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
