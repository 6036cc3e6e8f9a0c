package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"cv-site/internal/domain"
)

var errUnavailable = errors.New("service unavailable")

// fakeStore records calls and answers from an in-memory document.
type fakeStore struct {
	mu    sync.Mutex
	doc   domain.CvDocument
	calls []string

	nextID    int64
	fetchErr  error
	saveErr   error
	deleteErr error

	// personalInfo, when set, builds the stored form of an update.
	personalInfo func(domain.PersonalInfo) domain.PersonalInfo
	// gate, when set, blocks updates until closed.
	gate    chan struct{}
	entered chan struct{}

	lastPersonal domain.PersonalInfo
	lastEntity   domain.Entity
}

func (f *fakeStore) record(format string, args ...any) {
	f.mu.Lock()
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
	f.mu.Unlock()
}

func (f *fakeStore) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeStore) wait() {
	if f.gate == nil {
		return
	}
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	<-f.gate
}

func (f *fakeStore) FetchCV(ctx context.Context) (domain.CvDocument, error) {
	f.record("GET /api/cv")
	if f.fetchErr != nil {
		return domain.CvDocument{}, f.fetchErr
	}
	return f.doc, nil
}

func (f *fakeStore) UpdatePersonalInfo(ctx context.Context, info domain.PersonalInfo) (domain.PersonalInfo, error) {
	f.record("PUT personal-info")
	f.wait()
	f.lastPersonal = info
	if f.saveErr != nil {
		return domain.PersonalInfo{}, f.saveErr
	}
	if f.personalInfo != nil {
		return f.personalInfo(info), nil
	}
	return info, nil
}

func (f *fakeStore) CreateEntity(ctx context.Context, kind domain.Kind, e domain.Entity) (domain.Entity, error) {
	f.record("POST %s", kind.Path())
	f.lastEntity = e
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.nextID++
	return e.WithID(f.nextID), nil
}

func (f *fakeStore) UpdateEntity(ctx context.Context, kind domain.Kind, id int64, e domain.Entity) (domain.Entity, error) {
	f.record("PUT %s/%d", kind.Path(), id)
	f.wait()
	f.lastEntity = e
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	return e.WithID(id), nil
}

func (f *fakeStore) DeleteEntity(ctx context.Context, kind domain.Kind, id int64) error {
	f.record("DELETE %s/%d", kind.Path(), id)
	return f.deleteErr
}

func ptr[T any](v T) *T { return &v }
