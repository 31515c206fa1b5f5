package usecase

import (
	"context"
	"time"

	"github.com/user/attendance-service/internal/entity"
	"github.com/user/attendance-service/internal/repository"
)

type fakePortal struct {
	frames  []entity.Frame
	err     error
	captcha *entity.Captcha
	calls   int
	lastIn  repository.Interaction
}

func (f *fakePortal) FetchCaptcha(_ context.Context, rollNo string) (*entity.Captcha, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.captcha, nil
}

func (f *fakePortal) FetchFrames(_ context.Context, _ entity.Credentials, _ entity.Term, in repository.Interaction, _ repository.FetchOptions) ([]entity.Frame, error) {
	f.calls++
	f.lastIn = in
	if f.err != nil {
		return nil, f.err
	}
	return f.frames, nil
}

type fakeCache struct {
	data   map[string][]entity.AttendanceRecord
	ttl    time.Duration
	getErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string][]entity.AttendanceRecord{}}
}

func (f *fakeCache) Put(_ context.Context, key string, records []entity.AttendanceRecord, expiry time.Duration) error {
	f.data[key] = records
	f.ttl = expiry
	return nil
}

func (f *fakeCache) Get(_ context.Context, key string) ([]entity.AttendanceRecord, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	records, ok := f.data[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return records, nil
}

func (f *fakeCache) Ping(context.Context) error { return nil }

type fakeLocks struct {
	held     map[string]bool
	released []string
}

func newFakeLocks() *fakeLocks {
	return &fakeLocks{held: map[string]bool{}}
}

func (f *fakeLocks) Acquire(_ context.Context, key string, _ time.Duration) (bool, error) {
	if f.held[key] {
		return false, nil
	}
	f.held[key] = true
	return true, nil
}

func (f *fakeLocks) Release(_ context.Context, key string) error {
	delete(f.held, key)
	f.released = append(f.released, key)
	return nil
}

type fakeSnapshots struct {
	saved     []*entity.Snapshot
	lastLimit int
}

func (f *fakeSnapshots) Save(_ context.Context, s *entity.Snapshot) error {
	f.saved = append(f.saved, s)
	return nil
}

func (f *fakeSnapshots) List(_ context.Context, rollHash string, term entity.Term, limit int) ([]*entity.Snapshot, error) {
	f.lastLimit = limit
	var out []*entity.Snapshot
	for i := len(f.saved) - 1; i >= 0; i-- {
		s := f.saved[i]
		if s.RollNo == rollHash && s.Term == term {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSnapshots) Ping(context.Context) error { return nil }

type fakeFailures struct {
	saved   []*entity.FailedFetch
	deleted int
}

func (f *fakeFailures) SaveOrUpdate(_ context.Context, failed *entity.FailedFetch) error {
	f.saved = append(f.saved, failed)
	return nil
}

func (f *fakeFailures) Delete(context.Context, string, entity.Term) error {
	f.deleted++
	return nil
}
