package repository

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"cv-site/internal/domain"
)

// Memory is a CV repository held in process memory. It behaves like
// CVRepo and backs development runs and tests.
type Memory struct {
	mu     sync.Mutex
	info   *domain.PersonalInfo
	rows   map[domain.Kind][]domain.Entity
	nextID int64
	now    func() time.Time
}

// NewMemory seeds the repository with doc. Seed entities without an id get
// one; a personal info record is always present.
func NewMemory(doc domain.CvDocument) *Memory {
	m := &Memory{rows: map[domain.Kind][]domain.Entity{}, now: time.Now}
	info := doc.PersonalInfo
	if info.ID == nil {
		id := int64(1)
		info.ID = &id
	}
	m.info = &info

	for _, kind := range domain.CollectionKinds {
		for _, e := range doc.Entities(kind) {
			if id, ok := e.EntityID(); ok {
				m.nextID = max(m.nextID, id)
			}
		}
	}
	for _, kind := range domain.CollectionKinds {
		for _, e := range doc.Entities(kind) {
			if _, ok := e.EntityID(); !ok {
				m.nextID++
				e = e.WithID(m.nextID)
			}
			m.rows[kind] = append(m.rows[kind], detach(e))
		}
	}
	return m
}

func (m *Memory) GetCV(ctx context.Context) (domain.CvDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var doc domain.CvDocument
	if m.info != nil {
		doc.PersonalInfo = *m.info
	}
	for _, kind := range domain.CollectionKinds {
		items := slices.Clone(m.rows[kind])
		slices.SortStableFunc(items, byOrderThenID)
		for i := range items {
			items[i] = detach(items[i])
		}
		if err := setCollection(&doc, kind, items); err != nil {
			return doc, err
		}
	}
	return doc, nil
}

func (m *Memory) UpdatePersonalInfo(ctx context.Context, info domain.PersonalInfo) (domain.PersonalInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.info == nil {
		return domain.PersonalInfo{}, fmt.Errorf("personal info: %w", ErrNotFound)
	}
	next := normalizePersonalInfo(info)
	next.ID = m.info.ID
	now := m.now().UTC()
	next.UpdatedAt = &now
	next.Leadership, next.Portfolio, next.Expertise = nil, nil, nil
	m.info = &next
	return next, nil
}

func (m *Memory) CreateEntity(ctx context.Context, kind domain.Kind, e domain.Entity) (domain.Entity, error) {
	if _, err := tableFor(kind); err != nil {
		return nil, err
	}
	if e.Kind() != kind {
		return nil, fmt.Errorf("unexpected %T for %s", e, kind)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	created := detach(e.WithID(m.nextID))
	m.rows[kind] = append(m.rows[kind], created)
	return detach(created), nil
}

func (m *Memory) UpdateEntity(ctx context.Context, kind domain.Kind, id int64, e domain.Entity) (domain.Entity, error) {
	if _, err := tableFor(kind); err != nil {
		return nil, err
	}
	if e.Kind() != kind {
		return nil, fmt.Errorf("unexpected %T for %s", e, kind)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.index(kind, id)
	if i < 0 {
		return nil, fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
	}
	updated := detach(e.WithID(id))
	rows := slices.Clone(m.rows[kind])
	rows[i] = updated
	m.rows[kind] = rows
	return detach(updated), nil
}

func (m *Memory) DeleteEntity(ctx context.Context, kind domain.Kind, id int64) error {
	if _, err := tableFor(kind); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.index(kind, id); i >= 0 {
		m.rows[kind] = slices.Delete(slices.Clone(m.rows[kind]), i, i+1)
	}
	return nil
}

func (m *Memory) index(kind domain.Kind, id int64) int {
	return slices.IndexFunc(m.rows[kind], func(e domain.Entity) bool {
		got, ok := e.EntityID()
		return ok && got == id
	})
}

// byOrderThenID mirrors ORDER BY sort_order NULLS LAST, id.
func byOrderThenID(a, b domain.Entity) int {
	ao, aok := a.Order()
	bo, bok := b.Order()
	switch {
	case aok && !bok:
		return -1
	case !aok && bok:
		return 1
	case aok && bok && ao != bo:
		return cmp.Compare(ao, bo)
	}
	ai, _ := a.EntityID()
	bi, _ := b.EntityID()
	return cmp.Compare(ai, bi)
}

// detach copies the slice fields of e so stored rows never share backing
// arrays with callers.
func detach(e domain.Entity) domain.Entity {
	if w, ok := e.(domain.WorkExperience); ok {
		w.Responsibilities = slices.Clone(w.Responsibilities)
		return w
	}
	return e
}
