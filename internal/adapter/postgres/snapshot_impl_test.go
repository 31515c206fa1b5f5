package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/attendance-service/internal/entity"
	"github.com/user/attendance-service/pkg/utils"
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	connString := os.Getenv("POSTGRES_TEST_URL")
	if connString == "" {
		t.Skip("POSTGRES_TEST_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, connString)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, EnsureSchema(ctx, pool))
	return pool
}

func TestSnapshotRepo(t *testing.T) {
	pool := testPool(t)
	repo := NewSnapshotRepo(pool)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rollHash := utils.HashKey("snapshot-test", time.Now().String())
	term := entity.Term{Year: 2, Semester: 1}
	t.Cleanup(func() {
		pool.Exec(context.Background(), `DELETE FROM attendance_snapshots WHERE roll_hash = $1`, rollHash)
	})

	base := time.Now().UTC().Truncate(time.Millisecond)
	for i, pct := range []float64{70, 80} {
		err := repo.Save(ctx, &entity.Snapshot{
			RollNo:    rollHash,
			Term:      term,
			Frame:     "data",
			Records:   []entity.AttendanceRecord{{SubjectCode: "CSE301", SubjectName: "Data Structures", AttendancePercentage: pct}},
			FetchedAt: base.Add(time.Duration(i) * time.Minute),
			Duration:  1500 * time.Millisecond,
		})
		require.NoError(t, err)
	}

	got, err := repo.List(ctx, rollHash, term, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 80.0, got[0].Records[0].AttendancePercentage, "newest first")
	assert.Equal(t, 1500*time.Millisecond, got[0].Duration)
	assert.NotEmpty(t, got[0].ID)

	other, err := repo.List(ctx, rollHash, entity.Term{Year: 2, Semester: 0}, 10)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestFailedFetchRepo(t *testing.T) {
	pool := testPool(t)
	repo := NewFailedFetchRepo(pool)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rollHash := utils.HashKey("failed-test", time.Now().String())
	term := entity.Term{Year: 1, Semester: 1}
	failed := &entity.FailedFetch{
		RollNo:               rollHash,
		Term:                 term,
		FailureReason:        "portal login failed",
		ErrorType:            "login",
		LastAttemptTimestamp: time.Now(),
	}
	require.NoError(t, repo.SaveOrUpdate(ctx, failed))
	require.NoError(t, repo.SaveOrUpdate(ctx, failed))

	var attempts int
	err := pool.QueryRow(ctx,
		`SELECT attempt_count FROM failed_fetches WHERE roll_hash = $1 AND year_idx = $2 AND sem_idx = $3`,
		rollHash, term.Year, term.Semester,
	).Scan(&attempts)
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)

	require.NoError(t, repo.Delete(ctx, rollHash, term))
}
