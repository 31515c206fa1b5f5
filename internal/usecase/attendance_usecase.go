package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/user/attendance-service/internal/entity"
	"github.com/user/attendance-service/internal/parser"
	"github.com/user/attendance-service/internal/repository"
	"github.com/user/attendance-service/pkg/logger"
	"github.com/user/attendance-service/pkg/metrics"
	"github.com/user/attendance-service/pkg/utils"
)

const (
	// Frames shorter than this cannot hold an attendance table.
	minCandidateFrameLen = 500
	defaultHistoryLimit  = 10
	maxHistoryLimit      = 100
)

// FetchRequest identifies whose attendance to fetch and for which term.
type FetchRequest struct {
	Credentials entity.Credentials
	Term        entity.Term
	Screenshots bool
}

// FetchResult is the outcome of one portal session.
type FetchResult struct {
	Records    []entity.AttendanceRecord
	Frame      string         // frame the records were read from
	Frames     []entity.Frame // every captured frame
	SnapshotID string
	Duration   time.Duration
}

// AttendanceService defines the attendance operations offered to delivery
// layers.
type AttendanceService interface {
	// Fetch drives a portal session and parses the attendance page. When the
	// page holds no attendance the error wraps repository.ErrNoAttendanceData
	// and the result still carries the captured frames.
	Fetch(ctx context.Context, req FetchRequest, in repository.Interaction) (*FetchResult, error)
	// Cached returns recently fetched records, or repository.ErrNotFound.
	Cached(ctx context.Context, rollNo string, term entity.Term) ([]entity.AttendanceRecord, error)
	// History returns stored snapshots, newest first.
	History(ctx context.Context, rollNo string, term entity.Term, limit int) ([]*entity.Snapshot, error)
	// Captcha fetches a login CAPTCHA image for a human to solve.
	Captcha(ctx context.Context, rollNo string) (*entity.Captcha, error)
}

// Options holds the timings of the use case.
type Options struct {
	CacheTTL time.Duration
	LockTTL  time.Duration
}

// Stores groups the optional persistence of the use case. Nil members are
// skipped, which is how the CLI runs without Redis or PostgreSQL.
type Stores struct {
	Cache     repository.CacheRepository
	Locks     repository.LockRepository
	Snapshots repository.SnapshotRepository
	Failures  repository.FailedFetchRepository
}

type attendanceUseCase struct {
	portal    repository.PortalRepository
	extractor *parser.Extractor
	stores    Stores
	opts      Options
	logger    *zap.Logger
}

// NewAttendanceUseCase creates a new instance of the attendance use case.
func NewAttendanceUseCase(
	portal repository.PortalRepository,
	extractor *parser.Extractor,
	stores Stores,
	opts Options,
	logger *zap.Logger,
) AttendanceService {
	metrics.Init()
	return &attendanceUseCase{
		portal:    portal,
		extractor: extractor,
		stores:    stores,
		opts:      opts,
		logger:    logger,
	}
}

func (uc *attendanceUseCase) Fetch(ctx context.Context, req FetchRequest, in repository.Interaction) (*FetchResult, error) {
	rollNo := req.Credentials.RollNo
	key := utils.TermKey(rollNo, req.Term.Year, req.Term.Semester)
	log := uc.logger.With(logger.RollNo(rollNo), zap.Int("year", req.Term.Year), zap.Int("semester", req.Term.Semester))

	if uc.stores.Locks != nil {
		acquired, err := uc.stores.Locks.Acquire(ctx, key, uc.opts.LockTTL)
		switch {
		case err != nil:
			log.Warn("Fetch lock unavailable, continuing without it", zap.Error(err))
		case !acquired:
			metrics.FetchesTotal.WithLabelValues("failure", ErrorType(repository.ErrFetchInProgress)).Inc()
			return nil, repository.ErrFetchInProgress
		default:
			defer func() {
				if err := uc.stores.Locks.Release(context.WithoutCancel(ctx), key); err != nil {
					log.Warn("Failed to release fetch lock", zap.Error(err))
				}
			}()
		}
	}

	log.Info("Starting portal session")
	start := time.Now()

	frames, err := uc.portal.FetchFrames(ctx, req.Credentials, req.Term, in, repository.FetchOptions{Screenshots: req.Screenshots})
	if err != nil {
		uc.handleFailure(ctx, log, rollNo, req.Term, err)
		return nil, err
	}

	frameName, records := uc.extract(frames)
	duration := time.Since(start)
	metrics.FetchDuration.Observe(duration.Seconds())

	result := &FetchResult{Records: records, Frame: frameName, Frames: frames, Duration: duration}
	if len(records) == 0 {
		err := fmt.Errorf("%w: checked %d frames", repository.ErrNoAttendanceData, len(frames))
		uc.handleFailure(ctx, log, rollNo, req.Term, err)
		return result, err
	}

	log.Info("Attendance extracted", zap.String("frame", frameName), zap.Int("subjects", len(records)), zap.Duration("duration", duration))
	uc.handleSuccess(ctx, log, rollNo, req.Term, result)
	return result, nil
}

// extract parses candidate frames in order and returns the first non-empty
// result.
func (uc *attendanceUseCase) extract(frames []entity.Frame) (string, []entity.AttendanceRecord) {
	for _, f := range frames {
		if !isCandidateFrame(f.HTML) {
			continue
		}
		if records := DedupeByCode(uc.extractor.Parse(f.HTML)); len(records) > 0 {
			return f.Name, records
		}
	}
	return "", nil
}

func isCandidateFrame(html string) bool {
	return len(html) > minCandidateFrameLen && strings.Contains(strings.ToLower(html), "attend")
}

// DedupeByCode keeps the first record of each subject code, in order.
func DedupeByCode(records []entity.AttendanceRecord) []entity.AttendanceRecord {
	seen := make(map[string]struct{}, len(records))
	out := records[:0:0]
	for _, r := range records {
		if _, ok := seen[r.SubjectCode]; ok {
			continue
		}
		seen[r.SubjectCode] = struct{}{}
		out = append(out, r)
	}
	return out
}

func (uc *attendanceUseCase) handleSuccess(ctx context.Context, log *zap.Logger, rollNo string, term entity.Term, result *FetchResult) {
	metrics.FetchesTotal.WithLabelValues("success", "").Inc()
	metrics.RecordsExtracted.Add(float64(len(result.Records)))

	if uc.stores.Cache != nil {
		key := utils.TermKey(rollNo, term.Year, term.Semester)
		if err := uc.stores.Cache.Put(ctx, key, result.Records, uc.opts.CacheTTL); err != nil {
			log.Warn("Failed to cache attendance", zap.Error(err))
		}
	}

	rollHash := utils.HashKey(rollNo)
	if uc.stores.Snapshots != nil {
		snapshot := &entity.Snapshot{
			ID:        uuid.NewString(),
			RollNo:    rollHash,
			Term:      term,
			Frame:     result.Frame,
			Records:   result.Records,
			FetchedAt: time.Now().UTC(),
			Duration:  result.Duration,
		}
		if err := uc.stores.Snapshots.Save(ctx, snapshot); err != nil {
			log.Warn("Failed to store attendance snapshot", zap.Error(err))
		} else {
			result.SnapshotID = snapshot.ID
		}
	}

	// A previous failure for this term is resolved now.
	if uc.stores.Failures != nil {
		if err := uc.stores.Failures.Delete(ctx, rollHash, term); err != nil {
			log.Warn("Failed to clear failed fetch record", zap.Error(err))
		}
	}
}

func (uc *attendanceUseCase) handleFailure(ctx context.Context, log *zap.Logger, rollNo string, term entity.Term, fetchErr error) {
	errorType := ErrorType(fetchErr)
	metrics.FetchesTotal.WithLabelValues("failure", errorType).Inc()
	log.Error("Attendance fetch failed", zap.String("error_type", errorType), zap.Error(fetchErr))

	if uc.stores.Failures == nil {
		return
	}
	failed := &entity.FailedFetch{
		RollNo:               utils.HashKey(rollNo),
		Term:                 term,
		FailureReason:        fetchErr.Error(),
		ErrorType:            errorType,
		LastAttemptTimestamp: time.Now().UTC(),
	}
	if err := uc.stores.Failures.SaveOrUpdate(context.WithoutCancel(ctx), failed); err != nil {
		log.Warn("Failed to record failed fetch", zap.Error(err))
	}
}

func (uc *attendanceUseCase) Cached(ctx context.Context, rollNo string, term entity.Term) ([]entity.AttendanceRecord, error) {
	if uc.stores.Cache == nil {
		return nil, repository.ErrNotFound
	}
	records, err := uc.stores.Cache.Get(ctx, utils.TermKey(rollNo, term.Year, term.Semester))
	switch {
	case errors.Is(err, repository.ErrNotFound):
		metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()
		return nil, err
	case err != nil:
		metrics.CacheLookupsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to read cached attendance: %w", err)
	}
	metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
	return records, nil
}

func (uc *attendanceUseCase) History(ctx context.Context, rollNo string, term entity.Term, limit int) ([]*entity.Snapshot, error) {
	if uc.stores.Snapshots == nil {
		return nil, nil
	}
	switch {
	case limit <= 0:
		limit = defaultHistoryLimit
	case limit > maxHistoryLimit:
		limit = maxHistoryLimit
	}
	snapshots, err := uc.stores.Snapshots.List(ctx, utils.HashKey(rollNo), term, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance history: %w", err)
	}
	return snapshots, nil
}

func (uc *attendanceUseCase) Captcha(ctx context.Context, rollNo string) (*entity.Captcha, error) {
	captcha, err := uc.portal.FetchCaptcha(ctx, rollNo)
	if err != nil {
		uc.logger.Error("Captcha fetch failed", logger.RollNo(rollNo), zap.Error(err))
		return nil, err
	}
	return captcha, nil
}

// ErrorType classifies a fetch error into a short metric label.
func ErrorType(err error) string {
	switch {
	case errors.Is(err, repository.ErrFetchInProgress):
		return "in_progress"
	case errors.Is(err, repository.ErrPortalTimeout), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, repository.ErrCaptchaRequired):
		return "captcha"
	case errors.Is(err, repository.ErrLoginFailed):
		return "login"
	case errors.Is(err, repository.ErrManualStepRequired):
		return "manual_step"
	case errors.Is(err, repository.ErrNavigationFailed):
		return "navigation"
	case errors.Is(err, repository.ErrFormNotFound):
		return "form"
	case errors.Is(err, repository.ErrNoAttendanceData):
		return "no_data"
	default:
		return "unknown"
	}
}
