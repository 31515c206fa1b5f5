package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema creates the tables used by the repositories. Statements are idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS attendance_snapshots (
	id          UUID PRIMARY KEY,
	roll_hash   TEXT NOT NULL,
	year_idx    INTEGER NOT NULL,
	sem_idx     INTEGER NOT NULL,
	frame       TEXT NOT NULL,
	records     JSONB NOT NULL,
	duration_ms BIGINT NOT NULL,
	fetched_at  TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS attendance_snapshots_lookup
	ON attendance_snapshots (roll_hash, year_idx, sem_idx, fetched_at DESC);

CREATE TABLE IF NOT EXISTS failed_fetches (
	id                     BIGSERIAL PRIMARY KEY,
	roll_hash              TEXT NOT NULL,
	year_idx               INTEGER NOT NULL,
	sem_idx                INTEGER NOT NULL,
	failure_reason         TEXT NOT NULL,
	error_type             TEXT NOT NULL,
	last_attempt_timestamp TIMESTAMPTZ NOT NULL,
	attempt_count          INTEGER NOT NULL DEFAULT 1,
	UNIQUE (roll_hash, year_idx, sem_idx)
);
`

// EnsureSchema applies Schema.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	_, err := db.Exec(ctx, Schema)
	return err
}
