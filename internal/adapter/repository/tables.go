package repository

import (
	"fmt"
	"strings"

	"cv-site/internal/domain"
)

type columnType int

const (
	textColumn columnType = iota
	textArrayColumn
	intColumn
	timeColumn
)

type column struct {
	name string
	typ  columnType
}

// selectExpr keeps NULL text out of the scanned values.
func (c column) selectExpr() string {
	switch c.typ {
	case textColumn:
		return "coalesce(" + c.name + ", '')"
	case textArrayColumn:
		return "coalesce(" + c.name + ", '{}')"
	}
	return c.name
}

type rowScanner interface {
	Scan(dest ...any) error
}

// table maps one entity kind to its SQL table. The id column is implicit
// and always selected first.
type table struct {
	name    string
	kind    domain.Kind
	columns []column
	values  func(domain.Entity) ([]any, error)
	scan    func(rowScanner) (domain.Entity, error)
}

func entityTable[T domain.Entity](name string, kind domain.Kind, cols []column, fields func(*T) []any) table {
	return table{
		name:    name,
		kind:    kind,
		columns: cols,
		values: func(e domain.Entity) ([]any, error) {
			v, ok := e.(T)
			if !ok {
				return nil, fmt.Errorf("unexpected %T for %s", e, name)
			}
			return fields(&v), nil
		},
		scan: func(row rowScanner) (domain.Entity, error) {
			var (
				v  T
				id int64
			)
			if err := row.Scan(append([]any{&id}, fields(&v)...)...); err != nil {
				return nil, err
			}
			return v.WithID(id), nil
		},
	}
}

func text(names ...string) []column {
	cols := make([]column, len(names))
	for i, n := range names {
		cols[i] = column{name: n}
	}
	return cols
}

func withSortOrder(cols ...column) []column {
	return append(cols, column{name: "sort_order", typ: intColumn})
}

var tables = map[domain.Kind]table{
	domain.KindWorkExperience: entityTable("work_experience", domain.KindWorkExperience,
		withSortOrder(append(text("title", "company", "location", "start_date", "end_date"),
			column{name: "responsibilities", typ: textArrayColumn}, column{name: "projects"})...),
		func(w *domain.WorkExperience) []any {
			return []any{&w.Title, &w.Company, &w.Location, &w.StartDate, &w.EndDate, &w.Responsibilities, &w.Projects, &w.SortOrder}
		}),
	domain.KindEducation: entityTable("education", domain.KindEducation,
		withSortOrder(text("degree", "field", "school", "location", "start_date", "end_date")...),
		func(e *domain.Education) []any {
			return []any{&e.Degree, &e.Field, &e.School, &e.Location, &e.StartDate, &e.EndDate, &e.SortOrder}
		}),
	domain.KindSkills: entityTable("skills", domain.KindSkills,
		withSortOrder(text("name", "category")...),
		func(s *domain.Skill) []any { return []any{&s.Name, &s.Category, &s.SortOrder} }),
	domain.KindCertificates: entityTable("certificates", domain.KindCertificates,
		withSortOrder(text("name", "issuer", "date")...),
		func(c *domain.Certificate) []any { return []any{&c.Name, &c.Issuer, &c.Date, &c.SortOrder} }),
	domain.KindLanguages: entityTable("languages", domain.KindLanguages,
		withSortOrder(text("name", "proficiency")...),
		func(l *domain.Language) []any { return []any{&l.Name, &l.Proficiency, &l.SortOrder} }),
	domain.KindStrengths: entityTable("strengths", domain.KindStrengths,
		withSortOrder(text("name")...),
		func(s *domain.Strength) []any { return []any{&s.Name, &s.SortOrder} }),
}

func tableFor(kind domain.Kind) (table, error) {
	t, ok := tables[kind]
	if !ok {
		return table{}, fmt.Errorf("%s is not a collection", kind)
	}
	return t, nil
}

var personalInfoColumns = append(text(
	"name", "title", "email", "phone", "location", "linkedin_url", "website_url",
	"photo_url", "objective", "summary", "leadership_points", "product_portfolio",
	"expertise_areas",
), column{name: "updated_at", typ: timeColumn})

func personalInfoFields(p *domain.PersonalInfo) []any {
	return []any{&p.Name, &p.Title, &p.Email, &p.Phone, &p.Location, &p.LinkedinURL, &p.WebsiteURL,
		&p.PhotoURL, &p.Objective, &p.Summary, &p.LeadershipPointsJSON, &p.ProductPortfolioJSON,
		&p.ExpertiseAreasJSON, &p.UpdatedAt}
}

func selectList(cols []column) string {
	exprs := []string{"id"}
	for _, c := range cols {
		exprs = append(exprs, c.selectExpr())
	}
	return strings.Join(exprs, ", ")
}

func names(cols []column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.name
	}
	return out
}

func placeholders(from, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("$%d", from+i)
	}
	return out
}

func (t table) selectSQL() string {
	return fmt.Sprintf("SELECT %s FROM %s ORDER BY sort_order NULLS LAST, id", selectList(t.columns), t.name)
}

func (t table) insertSQL() string {
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		t.name, strings.Join(names(t.columns), ", "),
		strings.Join(placeholders(1, len(t.columns)), ", "), selectList(t.columns))
}

func (t table) updateSQL() string {
	sets := make([]string, len(t.columns))
	for i, c := range t.columns {
		sets[i] = fmt.Sprintf("%s = $%d", c.name, i+1)
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d RETURNING %s",
		t.name, strings.Join(sets, ", "), len(t.columns)+1, selectList(t.columns))
}

func (t table) deleteSQL() string {
	return fmt.Sprintf("DELETE FROM %s WHERE id = $1", t.name)
}

const selectPersonalInfoSQL = "SELECT %s FROM personal_info ORDER BY id LIMIT 1"

// updatePersonalInfoSQL writes every column but updated_at, which is
// stamped by the database.
func updatePersonalInfoSQL() string {
	editable := personalInfoColumns[:len(personalInfoColumns)-1]
	sets := make([]string, len(editable))
	for i, c := range editable {
		sets[i] = fmt.Sprintf("%s = $%d", c.name, i+1)
	}
	return fmt.Sprintf("UPDATE personal_info SET %s, updated_at = now() "+
		"WHERE id = (SELECT id FROM personal_info ORDER BY id LIMIT 1) RETURNING %s",
		strings.Join(sets, ", "), selectList(personalInfoColumns))
}
