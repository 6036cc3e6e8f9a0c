package usecase

import (
	"fmt"
	"strconv"
	"strings"

	"cv-site/internal/domain"
	"cv-site/internal/model"
)

// FieldPath addresses one editable scalar of a document:
//
//	personalInfo.name
//	personalInfo.leadershipPoints.2
//	personalInfo.productPortfolio.0.title
//	personalInfo.expertiseAreas.1.skills
//	workExperience.0.title
type FieldPath struct {
	Kind  domain.Kind
	List  model.SubList
	Index int
	Field string
}

func ParseFieldPath(s string) (FieldPath, error) {
	parts := strings.Split(s, ".")
	kind, err := domain.ParseKind(parts[0])
	if err != nil {
		return FieldPath{}, fmt.Errorf("%w %q: %v", ErrInvalidPath, s, err)
	}
	p := FieldPath{Kind: kind}

	if kind.IsCollection() {
		if len(parts) != 3 {
			return FieldPath{}, fmt.Errorf("%w %q: want %s.<index>.<field>", ErrInvalidPath, s, kind)
		}
		if p.Index, err = strconv.Atoi(parts[1]); err != nil {
			return FieldPath{}, fmt.Errorf("%w %q: bad index", ErrInvalidPath, s)
		}
		p.Field = parts[2]
		return p, nil
	}

	switch len(parts) {
	case 2:
		if _, err := model.ParseSubList(parts[1]); err == nil {
			return FieldPath{}, fmt.Errorf("%w %q: address an item of the list", ErrInvalidPath, s)
		}
		p.Field = parts[1]
		return p, nil
	case 3, 4:
		if p.List, err = model.ParseSubList(parts[1]); err != nil {
			return FieldPath{}, fmt.Errorf("%w %q: %v", ErrInvalidPath, s, err)
		}
		if p.Index, err = strconv.Atoi(parts[2]); err != nil {
			return FieldPath{}, fmt.Errorf("%w %q: bad index", ErrInvalidPath, s)
		}
		if len(parts) == 4 {
			p.Field = parts[3]
		}
		if !subFieldOK(p.List, p.Field) {
			return FieldPath{}, fmt.Errorf("%w %q", ErrInvalidPath, s)
		}
		return p, nil
	}
	return FieldPath{}, fmt.Errorf("%w %q", ErrInvalidPath, s)
}

func subFieldOK(l model.SubList, field string) bool {
	switch l {
	case model.LeadershipPoints:
		return field == ""
	case model.ProductPortfolio:
		return field == "title" || field == "description"
	case model.ExpertiseAreas:
		return field == "category" || field == "skills"
	}
	return false
}

func (p FieldPath) String() string {
	switch {
	case p.Kind.IsCollection():
		return fmt.Sprintf("%s.%d.%s", p.Kind, p.Index, p.Field)
	case p.List == "":
		return fmt.Sprintf("%s.%s", p.Kind, p.Field)
	case p.Field == "":
		return fmt.Sprintf("%s.%s.%d", p.Kind, p.List, p.Index)
	}
	return fmt.Sprintf("%s.%s.%d.%s", p.Kind, p.List, p.Index, p.Field)
}

// apply returns a copy of d with the addressed value replaced. d itself is
// a copy, so reassigning its fields never reaches the caller's value.
func (p FieldPath) apply(d domain.CvDocument, value string) (domain.CvDocument, error) {
	if p.Kind.IsCollection() {
		c, err := collectionOf(&d, p.Kind)
		if err != nil {
			return d, err
		}
		if err := c.setField(p.Index, p.Field, value); err != nil {
			return d, err
		}
		return d, nil
	}

	info := d.PersonalInfo
	var err error
	switch p.List {
	case "":
		info, err = info.WithField(p.Field, value)
	case model.LeadershipPoints:
		info.Leadership, err = model.ReplaceAt(info.Leadership, p.Index, value)
	case model.ProductPortfolio:
		if err = checkIndex(p.Index, len(info.Portfolio)); err != nil {
			break
		}
		item := info.Portfolio[p.Index]
		if p.Field == "title" {
			item.Title = value
		} else {
			item.Description = value
		}
		info.Portfolio, err = model.ReplaceAt(info.Portfolio, p.Index, item)
	case model.ExpertiseAreas:
		if err = checkIndex(p.Index, len(info.Expertise)); err != nil {
			break
		}
		area := info.Expertise[p.Index]
		if p.Field == "category" {
			area.Category = value
		} else {
			area.Skills = model.SplitSkills(value)
		}
		info.Expertise, err = model.ReplaceAt(info.Expertise, p.Index, area)
	}
	if err != nil {
		return d, err
	}
	d.PersonalInfo = info
	return d, nil
}

func checkIndex(i, n int) error {
	if i < 0 || i >= n {
		return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, n)
	}
	return nil
}

func appendItem(d domain.CvDocument, l model.SubList) (domain.CvDocument, error) {
	info := d.PersonalInfo
	switch l {
	case model.LeadershipPoints:
		info.Leadership = model.Append(info.Leadership, "")
	case model.ProductPortfolio:
		info.Portfolio = model.Append(info.Portfolio, domain.PortfolioItem{})
	case model.ExpertiseAreas:
		info.Expertise = model.Append(info.Expertise, domain.ExpertiseArea{Skills: []string{}})
	default:
		return d, fmt.Errorf("unknown list %q", l)
	}
	d.PersonalInfo = info
	return d, nil
}

func removeItem(d domain.CvDocument, l model.SubList, i int) (domain.CvDocument, error) {
	info := d.PersonalInfo
	var err error
	switch l {
	case model.LeadershipPoints:
		info.Leadership, err = model.RemoveAt(info.Leadership, i)
	case model.ProductPortfolio:
		info.Portfolio, err = model.RemoveAt(info.Portfolio, i)
	case model.ExpertiseAreas:
		info.Expertise, err = model.RemoveAt(info.Expertise, i)
	default:
		err = fmt.Errorf("unknown list %q", l)
	}
	if err != nil {
		return d, err
	}
	d.PersonalInfo = info
	return d, nil
}
