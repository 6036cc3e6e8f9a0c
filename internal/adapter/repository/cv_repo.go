package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"cv-site/internal/domain"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ErrNotFound is returned when the addressed record does not exist.
var ErrNotFound = errors.New("not found")

// CVRepo stores the CV in Postgres.
type CVRepo struct {
	pool *pgxpool.Pool
}

func NewCVRepo(pool *pgxpool.Pool) *CVRepo {
	return &CVRepo{pool: pool}
}

func (r *CVRepo) GetCV(ctx context.Context) (domain.CvDocument, error) {
	var doc domain.CvDocument

	info, err := r.personalInfo(ctx)
	switch {
	case errors.Is(err, ErrNotFound):
		slog.Warn("personal_info has no row")
	case err != nil:
		return doc, err
	default:
		doc.PersonalInfo = info
	}

	for _, kind := range domain.CollectionKinds {
		t := tables[kind]
		rows, err := r.pool.Query(ctx, t.selectSQL())
		if err != nil {
			return doc, fmt.Errorf("query %s: %w", t.name, err)
		}
		var items []domain.Entity
		for rows.Next() {
			e, err := t.scan(rows)
			if err != nil {
				rows.Close()
				return doc, fmt.Errorf("scan %s: %w", t.name, err)
			}
			items = append(items, e)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return doc, fmt.Errorf("read %s: %w", t.name, err)
		}
		if err := setCollection(&doc, kind, items); err != nil {
			return doc, err
		}
	}
	return doc, nil
}

func (r *CVRepo) personalInfo(ctx context.Context) (domain.PersonalInfo, error) {
	var (
		p  domain.PersonalInfo
		id int64
	)
	row := r.pool.QueryRow(ctx, fmt.Sprintf(selectPersonalInfoSQL, selectList(personalInfoColumns)))
	if err := row.Scan(append([]any{&id}, personalInfoFields(&p)...)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return p, ErrNotFound
		}
		return p, fmt.Errorf("query personal_info: %w", err)
	}
	p.ID = &id
	return p, nil
}

// UpdatePersonalInfo copies the editable fields onto the singleton record.
func (r *CVRepo) UpdatePersonalInfo(ctx context.Context, info domain.PersonalInfo) (domain.PersonalInfo, error) {
	in := normalizePersonalInfo(info)
	args := personalInfoFields(&in)
	args = args[:len(args)-1] // updated_at

	var (
		out domain.PersonalInfo
		id  int64
	)
	row := r.pool.QueryRow(ctx, updatePersonalInfoSQL(), args...)
	if err := row.Scan(append([]any{&id}, personalInfoFields(&out)...)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return out, fmt.Errorf("personal info: %w", ErrNotFound)
		}
		return out, fmt.Errorf("update personal_info: %w", err)
	}
	out.ID = &id
	return out, nil
}

func (r *CVRepo) CreateEntity(ctx context.Context, kind domain.Kind, e domain.Entity) (domain.Entity, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	args, err := t.values(e)
	if err != nil {
		return nil, err
	}
	created, err := t.scan(r.pool.QueryRow(ctx, t.insertSQL(), args...))
	if err != nil {
		return nil, fmt.Errorf("insert %s: %w", t.name, err)
	}
	return created, nil
}

func (r *CVRepo) UpdateEntity(ctx context.Context, kind domain.Kind, id int64, e domain.Entity) (domain.Entity, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	args, err := t.values(e)
	if err != nil {
		return nil, err
	}
	updated, err := t.scan(r.pool.QueryRow(ctx, t.updateSQL(), append(args, id)...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
		}
		return nil, fmt.Errorf("update %s: %w", t.name, err)
	}
	return updated, nil
}

// DeleteEntity removes the record. Deleting an absent id is not an error.
func (r *CVRepo) DeleteEntity(ctx context.Context, kind domain.Kind, id int64) error {
	t, err := tableFor(kind)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, t.deleteSQL(), id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", t.name, err)
	}
	if tag.RowsAffected() == 0 {
		slog.Debug("delete of absent row", "table", t.name, "id", id)
	}
	return nil
}

// normalizePersonalInfo trims the scalar text fields. Sub-document text is
// stored as given.
func normalizePersonalInfo(p domain.PersonalInfo) domain.PersonalInfo {
	for _, f := range []*string{&p.Name, &p.Title, &p.Email, &p.Phone, &p.Location,
		&p.LinkedinURL, &p.WebsiteURL, &p.PhotoURL, &p.Objective, &p.Summary} {
		*f = strings.TrimSpace(*f)
	}
	return p
}

func setCollection(d *domain.CvDocument, kind domain.Kind, items []domain.Entity) error {
	var err error
	switch kind {
	case domain.KindWorkExperience:
		d.WorkExperience, err = typed[domain.WorkExperience](items)
	case domain.KindEducation:
		d.Education, err = typed[domain.Education](items)
	case domain.KindSkills:
		d.Skills, err = typed[domain.Skill](items)
	case domain.KindCertificates:
		d.Certificates, err = typed[domain.Certificate](items)
	case domain.KindLanguages:
		d.Languages, err = typed[domain.Language](items)
	case domain.KindStrengths:
		d.Strengths, err = typed[domain.Strength](items)
	default:
		err = fmt.Errorf("%s is not a collection", kind)
	}
	return err
}

// typed converts to the concrete slice type. The result is never nil so
// empty collections encode as [].
func typed[T domain.Entity](items []domain.Entity) ([]T, error) {
	out := make([]T, 0, len(items))
	for _, e := range items {
		v, ok := e.(T)
		if !ok {
			return nil, fmt.Errorf("unexpected %T", e)
		}
		out = append(out, v)
	}
	return out, nil
}
