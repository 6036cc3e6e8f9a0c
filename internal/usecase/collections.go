package usecase

import (
	"fmt"

	"cv-site/internal/domain"
	"cv-site/internal/model"
)

// collection is a view on one entity slice of a document copy. Writes
// replace the slice header with a fresh copy; the backing array seen by
// earlier document values is never modified.
type collection interface {
	size() int
	at(i int) (domain.Entity, error)
	setField(i int, field, value string) error
	put(i int, e domain.Entity) error
	add(e domain.Entity) error
	drop(id int64)
	find(id int64) int
}

type editable[T any] interface {
	domain.Entity
	WithField(field, value string) (T, error)
}

type typedCollection[T editable[T]] struct {
	items *[]T
}

func collectionOf(d *domain.CvDocument, kind domain.Kind) (collection, error) {
	switch kind {
	case domain.KindWorkExperience:
		return typedCollection[domain.WorkExperience]{&d.WorkExperience}, nil
	case domain.KindEducation:
		return typedCollection[domain.Education]{&d.Education}, nil
	case domain.KindSkills:
		return typedCollection[domain.Skill]{&d.Skills}, nil
	case domain.KindCertificates:
		return typedCollection[domain.Certificate]{&d.Certificates}, nil
	case domain.KindLanguages:
		return typedCollection[domain.Language]{&d.Languages}, nil
	case domain.KindStrengths:
		return typedCollection[domain.Strength]{&d.Strengths}, nil
	}
	return nil, fmt.Errorf("%s is not a collection", kind)
}

func (c typedCollection[T]) size() int { return len(*c.items) }

func (c typedCollection[T]) at(i int) (domain.Entity, error) {
	if i < 0 || i >= len(*c.items) {
		return nil, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(*c.items))
	}
	return (*c.items)[i], nil
}

func (c typedCollection[T]) setField(i int, field, value string) error {
	if i < 0 || i >= len(*c.items) {
		return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(*c.items))
	}
	v, err := (*c.items)[i].WithField(field, value)
	if err != nil {
		return err
	}
	return c.replace(i, v)
}

func (c typedCollection[T]) put(i int, e domain.Entity) error {
	v, ok := e.(T)
	if !ok {
		return fmt.Errorf("unexpected %T in %s", e, e.Kind())
	}
	return c.replace(i, v)
}

func (c typedCollection[T]) replace(i int, v T) error {
	out, err := model.ReplaceAt(*c.items, i, v)
	if err != nil {
		return err
	}
	*c.items = out
	return nil
}

func (c typedCollection[T]) add(e domain.Entity) error {
	v, ok := e.(T)
	if !ok {
		return fmt.Errorf("unexpected %T in %s", e, e.Kind())
	}
	*c.items = model.Append(*c.items, v)
	return nil
}

func (c typedCollection[T]) drop(id int64) {
	out := make([]T, 0, len(*c.items))
	for _, it := range *c.items {
		if got, ok := it.EntityID(); ok && got == id {
			continue
		}
		out = append(out, it)
	}
	*c.items = out
}

func (c typedCollection[T]) find(id int64) int {
	for i, it := range *c.items {
		if got, ok := it.EntityID(); ok && got == id {
			return i
		}
	}
	return -1
}
