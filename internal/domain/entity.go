package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ErrUnknownField is returned when an edit names a field the record lacks.
var ErrUnknownField = errors.New("unknown field")

// Entity is a record of one of the six collections.
type Entity interface {
	Kind() Kind
	EntityID() (int64, bool)
	Order() (int, bool)
	WithID(id int64) Entity
}

func (WorkExperience) Kind() Kind { return KindWorkExperience }
func (Education) Kind() Kind      { return KindEducation }
func (Skill) Kind() Kind          { return KindSkills }
func (Certificate) Kind() Kind    { return KindCertificates }
func (Language) Kind() Kind       { return KindLanguages }
func (Strength) Kind() Kind       { return KindStrengths }

func (w WorkExperience) WithID(id int64) Entity { w.ID = &id; return w }
func (e Education) WithID(id int64) Entity      { e.ID = &id; return e }
func (s Skill) WithID(id int64) Entity          { s.ID = &id; return s }
func (c Certificate) WithID(id int64) Entity    { c.ID = &id; return c }
func (l Language) WithID(id int64) Entity       { l.ID = &id; return l }
func (s Strength) WithID(id int64) Entity       { s.ID = &id; return s }

// DecodeEntity unmarshals a JSON body into the concrete type of kind.
func DecodeEntity(kind Kind, data []byte) (Entity, error) {
	var (
		e   Entity
		err error
	)
	switch kind {
	case KindWorkExperience:
		var v WorkExperience
		err = json.Unmarshal(data, &v)
		e = v
	case KindEducation:
		var v Education
		err = json.Unmarshal(data, &v)
		e = v
	case KindSkills:
		var v Skill
		err = json.Unmarshal(data, &v)
		e = v
	case KindCertificates:
		var v Certificate
		err = json.Unmarshal(data, &v)
		e = v
	case KindLanguages:
		var v Language
		err = json.Unmarshal(data, &v)
		e = v
	case KindStrengths:
		var v Strength
		err = json.Unmarshal(data, &v)
		e = v
	default:
		return nil, fmt.Errorf("%s is not a collection", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	return e, nil
}

// Template returns the default record the console creates for kind.
func Template(kind Kind) (Entity, error) {
	switch kind {
	case KindWorkExperience:
		return WorkExperience{Title: "New Position", Company: "Company", StartDate: "MM/YYYY", EndDate: "Present", Responsibilities: []string{}}, nil
	case KindEducation:
		return Education{Degree: "Degree", Field: "Field of Study", School: "School", StartDate: "YYYY", EndDate: "YYYY"}, nil
	case KindSkills:
		return Skill{Name: "New Skill", Category: "General"}, nil
	case KindCertificates:
		return Certificate{Name: "New Certificate", Issuer: "Issuer", Date: "YYYY"}, nil
	case KindLanguages:
		return Language{Name: "Language", Proficiency: "Fluent"}, nil
	case KindStrengths:
		return Strength{Name: "New Strength"}, nil
	}
	return nil, fmt.Errorf("%s is not a collection", kind)
}

// Entities returns the collection of kind as a slice of Entity, in stored order.
func (d CvDocument) Entities(kind Kind) []Entity {
	switch kind {
	case KindWorkExperience:
		return toEntities(d.WorkExperience)
	case KindEducation:
		return toEntities(d.Education)
	case KindSkills:
		return toEntities(d.Skills)
	case KindCertificates:
		return toEntities(d.Certificates)
	case KindLanguages:
		return toEntities(d.Languages)
	case KindStrengths:
		return toEntities(d.Strengths)
	}
	return nil
}

func toEntities[T Entity](items []T) []Entity {
	out := make([]Entity, len(items))
	for i, it := range items {
		out[i] = it
	}
	return out
}

// DisplayOrder returns a copy of items sorted by sortOrder. Items without a
// sortOrder keep their relative order and go after all ordered ones.
func DisplayOrder[T interface{ Order() (int, bool) }](items []T) []T {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b T) int {
		ao, aok := a.Order()
		bo, bok := b.Order()
		switch {
		case aok && bok:
			return ao - bo
		case aok:
			return -1
		case bok:
			return 1
		}
		return 0
	})
	return out
}

func (w WorkExperience) WithField(field, value string) (WorkExperience, error) {
	switch field {
	case "title":
		w.Title = value
	case "company":
		w.Company = value
	case "location":
		w.Location = value
	case "startDate":
		w.StartDate = value
	case "endDate":
		w.EndDate = value
	case "projects":
		w.Projects = value
	case "responsibilities":
		w.Responsibilities = SplitLines(value)
	default:
		if err := w.setIdent(field, value); err != nil {
			return w, err
		}
	}
	return w, nil
}

func (e Education) WithField(field, value string) (Education, error) {
	switch field {
	case "degree":
		e.Degree = value
	case "field":
		e.Field = value
	case "school":
		e.School = value
	case "location":
		e.Location = value
	case "startDate":
		e.StartDate = value
	case "endDate":
		e.EndDate = value
	default:
		if err := e.setIdent(field, value); err != nil {
			return e, err
		}
	}
	return e, nil
}

func (s Skill) WithField(field, value string) (Skill, error) {
	switch field {
	case "name":
		s.Name = value
	case "category":
		s.Category = value
	default:
		if err := s.setIdent(field, value); err != nil {
			return s, err
		}
	}
	return s, nil
}

func (c Certificate) WithField(field, value string) (Certificate, error) {
	switch field {
	case "name":
		c.Name = value
	case "issuer":
		c.Issuer = value
	case "date":
		c.Date = value
	default:
		if err := c.setIdent(field, value); err != nil {
			return c, err
		}
	}
	return c, nil
}

func (l Language) WithField(field, value string) (Language, error) {
	switch field {
	case "name":
		l.Name = value
	case "proficiency":
		l.Proficiency = value
	default:
		if err := l.setIdent(field, value); err != nil {
			return l, err
		}
	}
	return l, nil
}

func (s Strength) WithField(field, value string) (Strength, error) {
	if field == "name" {
		s.Name = value
		return s, nil
	}
	err := s.setIdent(field, value)
	return s, err
}

// setIdent handles the editable part of Ident. The identifier itself is
// server-assigned and cannot be edited.
func (i *Ident) setIdent(field, value string) error {
	if field != "sortOrder" {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		i.SortOrder = nil
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("sortOrder: %w", err)
	}
	i.SortOrder = &n
	return nil
}

func (p PersonalInfo) WithField(field, value string) (PersonalInfo, error) {
	switch field {
	case "name":
		p.Name = value
	case "title":
		p.Title = value
	case "email":
		p.Email = value
	case "phone":
		p.Phone = value
	case "location":
		p.Location = value
	case "linkedinUrl":
		p.LinkedinURL = value
	case "websiteUrl":
		p.WebsiteURL = value
	case "photoUrl":
		p.PhotoURL = value
	case "objective":
		p.Objective = value
	case "summary":
		p.Summary = value
	default:
		return p, fmt.Errorf("%w: personalInfo.%s", ErrUnknownField, field)
	}
	return p, nil
}

// SplitLines turns textarea input into one entry per non-blank line.
func SplitLines(s string) []string {
	out := []string{}
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
