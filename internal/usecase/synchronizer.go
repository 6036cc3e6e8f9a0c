package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"cv-site/internal/domain"
	"cv-site/internal/model"
)

var (
	ErrNotLoaded       = errors.New("cv document not loaded")
	ErrNotPersisted    = errors.New("entity has no identifier yet")
	ErrSaveInProgress  = errors.New("save already in progress")
	ErrInvalidPath     = errors.New("invalid field path")
	ErrIndexOutOfRange = model.ErrIndexOutOfRange
	ErrUnknownField    = domain.ErrUnknownField
)

// Synchronizer owns the in-memory CV document of one console session and
// keeps it consistent with the CV service through explicit saves.
//
// Every local edit produces a new document value; values handed out by
// Document are never modified afterwards. Nothing is saved implicitly.
type Synchronizer struct {
	store CVStore

	mu       sync.Mutex
	doc      *domain.CvDocument
	inflight map[string]struct{}
}

func NewSynchronizer(store CVStore) *Synchronizer {
	return &Synchronizer{store: store, inflight: map[string]struct{}{}}
}

// Document returns the current document and whether one has been loaded.
func (s *Synchronizer) Document() (domain.CvDocument, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return domain.CvDocument{}, false
	}
	return *s.doc, true
}

// Load replaces the whole document with a fresh copy from the service. On
// failure the previous document (possibly none) is kept.
func (s *Synchronizer) Load(ctx context.Context) error {
	doc, err := s.store.FetchCV(ctx)
	if err != nil {
		slog.Error("Failed to load CV data", "error", err)
		return fmt.Errorf("load cv: %w", err)
	}
	doc.PersonalInfo = model.DecodeInto(doc.PersonalInfo)
	s.mu.Lock()
	s.doc = &doc
	s.mu.Unlock()
	return nil
}

// SetField edits one scalar addressed by a FieldPath string. It never
// touches the network.
func (s *Synchronizer) SetField(path, value string) error {
	p, err := ParseFieldPath(path)
	if err != nil {
		return err
	}
	return s.update(func(d domain.CvDocument) (domain.CvDocument, error) {
		return p.apply(d, value)
	})
}

// AppendItem adds an empty item at the end of a personal info list.
func (s *Synchronizer) AppendItem(l model.SubList) error {
	return s.update(func(d domain.CvDocument) (domain.CvDocument, error) {
		return appendItem(d, l)
	})
}

// RemoveItem drops item i of a personal info list.
func (s *Synchronizer) RemoveItem(l model.SubList, i int) error {
	return s.update(func(d domain.CvDocument) (domain.CvDocument, error) {
		return removeItem(d, l, i)
	})
}

// SaveSection persists the personal info record, sub-documents included,
// and adopts the stored representation returned by the service.
func (s *Synchronizer) SaveSection(ctx context.Context, kind domain.Kind) error {
	if kind != domain.KindPersonalInfo {
		return fmt.Errorf("%s is saved per entity", kind)
	}
	doc, done, err := s.begin(func(domain.CvDocument) (string, error) {
		return string(kind), nil
	})
	if err != nil {
		return err
	}
	defer done()

	saved, err := s.store.UpdatePersonalInfo(ctx, model.EncodeFrom(doc.PersonalInfo))
	if err != nil {
		slog.Error("Failed to save personal info", "error", err)
		return fmt.Errorf("save personal info: %w", err)
	}
	saved = model.DecodeInto(saved)
	return s.update(func(d domain.CvDocument) (domain.CvDocument, error) {
		d.PersonalInfo = saved
		return d, nil
	})
}

// SaveEntity persists the entity at index and replaces it with the
// service's answer.
func (s *Synchronizer) SaveEntity(ctx context.Context, kind domain.Kind, index int) error {
	var (
		entity domain.Entity
		id     int64
	)
	_, done, err := s.begin(func(d domain.CvDocument) (string, error) {
		c, err := collectionOf(&d, kind)
		if err != nil {
			return "", err
		}
		if entity, err = c.at(index); err != nil {
			return "", err
		}
		var ok bool
		if id, ok = entity.EntityID(); !ok {
			return "", ErrNotPersisted
		}
		return entityKey(kind, id), nil
	})
	if err != nil {
		return err
	}
	defer done()

	saved, err := s.store.UpdateEntity(ctx, kind, id, entity)
	if err != nil {
		slog.Error("Failed to update entity", "kind", kind, "id", id, "error", err)
		return fmt.Errorf("update %s %d: %w", kind, id, err)
	}
	return s.update(func(d domain.CvDocument) (domain.CvDocument, error) {
		c, err := collectionOf(&d, kind)
		if err != nil {
			return d, err
		}
		// The slot may have moved if another entity was deleted meanwhile.
		i := index
		if e, err := c.at(i); err != nil || !hasID(e, id) {
			if i = c.find(id); i < 0 {
				return d, nil
			}
		}
		if err := c.put(i, saved); err != nil {
			return d, err
		}
		return d, nil
	})
}

// CreateEntity asks the service to create an entity from template and
// appends the created entity, as returned, at the end of the collection.
func (s *Synchronizer) CreateEntity(ctx context.Context, kind domain.Kind, template domain.Entity) (domain.Entity, error) {
	_, done, err := s.begin(func(d domain.CvDocument) (string, error) {
		if _, err := collectionOf(&d, kind); err != nil {
			return "", err
		}
		return "create:" + string(kind), nil
	})
	if err != nil {
		return nil, err
	}
	defer done()

	created, err := s.store.CreateEntity(ctx, kind, template)
	if err != nil {
		slog.Error("Failed to create entity", "kind", kind, "error", err)
		return nil, fmt.Errorf("create %s: %w", kind, err)
	}
	err = s.update(func(d domain.CvDocument) (domain.CvDocument, error) {
		c, err := collectionOf(&d, kind)
		if err != nil {
			return d, err
		}
		if err := c.add(created); err != nil {
			return d, err
		}
		return d, nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// DeleteEntity deletes by identifier. The local entity with that id, if
// any, is removed only once the service confirmed the deletion.
func (s *Synchronizer) DeleteEntity(ctx context.Context, kind domain.Kind, id int64) error {
	_, done, err := s.begin(func(d domain.CvDocument) (string, error) {
		if _, err := collectionOf(&d, kind); err != nil {
			return "", err
		}
		return entityKey(kind, id), nil
	})
	if err != nil {
		return err
	}
	defer done()

	if err := s.store.DeleteEntity(ctx, kind, id); err != nil {
		slog.Error("Failed to delete entity", "kind", kind, "id", id, "error", err)
		return fmt.Errorf("delete %s %d: %w", kind, id, err)
	}
	return s.update(func(d domain.CvDocument) (domain.CvDocument, error) {
		c, err := collectionOf(&d, kind)
		if err != nil {
			return d, err
		}
		c.drop(id)
		return d, nil
	})
}

func (s *Synchronizer) update(fn func(domain.CvDocument) (domain.CvDocument, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return ErrNotLoaded
	}
	next, err := fn(*s.doc)
	if err != nil {
		return err
	}
	s.doc = &next
	return nil
}

// begin snapshots the document and marks the save identified by keyFn as
// in flight. The returned func clears the mark.
func (s *Synchronizer) begin(keyFn func(domain.CvDocument) (string, error)) (domain.CvDocument, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return domain.CvDocument{}, nil, ErrNotLoaded
	}
	doc := *s.doc
	key, err := keyFn(doc)
	if err != nil {
		return domain.CvDocument{}, nil, err
	}
	if _, busy := s.inflight[key]; busy {
		return domain.CvDocument{}, nil, fmt.Errorf("%w: %s", ErrSaveInProgress, key)
	}
	s.inflight[key] = struct{}{}
	return doc, func() {
		s.mu.Lock()
		delete(s.inflight, key)
		s.mu.Unlock()
	}, nil
}

func entityKey(kind domain.Kind, id int64) string {
	return fmt.Sprintf("%s:%d", kind, id)
}

func hasID(e domain.Entity, id int64) bool {
	got, ok := e.EntityID()
	return ok && got == id
}
