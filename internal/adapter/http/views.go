package http

import (
	"embed"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"cv-site/internal/domain"
	"cv-site/internal/model"
	"cv-site/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

func parseTemplates() (*template.Template, error) {
	return template.New("site").Funcs(template.FuncMap{
		"join":     strings.Join,
		"skills":   model.JoinSkills,
		"projects": splitProjects,
		"dates":    dateRange,
	}).ParseFS(templateFS, "templates/*.html")
}

type pageView struct {
	Theme   session.Theme
	Title   string
	Message string
	Email   string
	AuthURL string
}

type cvView struct {
	Info           domain.PersonalInfo
	WorkExperience []domain.WorkExperience
	Education      []domain.Education
	Skills         []domain.Skill
	Certificates   []domain.Certificate
	Languages      []domain.Language
	Strengths      []domain.Strength
	Theme          session.Theme
	NextTheme      string
	IsAdmin        bool
	Print          bool
	Year           int
}

func newCVView(doc domain.CvDocument, theme session.Theme, admin bool, now time.Time) cvView {
	return cvView{
		Info:           model.DecodeInto(doc.PersonalInfo),
		WorkExperience: domain.DisplayOrder(doc.WorkExperience),
		Education:      domain.DisplayOrder(doc.Education),
		Skills:         domain.DisplayOrder(doc.Skills),
		Certificates:   domain.DisplayOrder(doc.Certificates),
		Languages:      domain.DisplayOrder(doc.Languages),
		Strengths:      domain.DisplayOrder(doc.Strengths),
		Theme:          theme,
		NextTheme:      themeLabel(theme.Toggle()),
		IsAdmin:        admin,
		Year:           now.Year(),
	}
}

func themeLabel(t session.Theme) string {
	if t == session.ThemeLight {
		return "Light"
	}
	return "Dark"
}

func splitProjects(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func dateRange(start, end string) string {
	switch {
	case start == "":
		return end
	case end == "":
		return start
	}
	return start + " - " + end
}

// field is one input of a console form. Name is the FieldPath posted back.
type field struct {
	Label     string
	Name      string
	Value     string
	Multiline bool
}

type card struct {
	Index  int
	ID     int64
	HasID  bool
	Title  string
	Fields []field
}

type tab struct {
	Key    string
	Label  string
	Active bool
}

type consoleView struct {
	User    string
	Theme   session.Theme
	Flash   string
	Tab     string
	Tabs    []tab
	Loaded  bool
	Confirm *confirmView

	Personal   []field
	Leadership []string
	Portfolio  []domain.PortfolioItem
	Expertise  []domain.ExpertiseArea
	Kind       domain.Kind
	KindLabel  string
	Cards      []card
}

type confirmView struct {
	Prompt string
	Action string
}

const tabPersonal = "personal"

var tabLabels = []tab{
	{Key: tabPersonal, Label: "Personal Info"},
	{Key: string(domain.KindWorkExperience), Label: "Experience"},
	{Key: string(domain.KindEducation), Label: "Education"},
	{Key: string(domain.KindSkills), Label: "Skills"},
	{Key: string(domain.KindCertificates), Label: "Certificates"},
	{Key: string(domain.KindLanguages), Label: "Languages"},
	{Key: string(domain.KindStrengths), Label: "Strengths"},
}

// normalizeTab maps unknown tab names to the personal info tab.
func normalizeTab(s string) string {
	for _, t := range tabLabels {
		if t.Key == s {
			return s
		}
	}
	return tabPersonal
}

func newConsoleView(user domain.AuthUser, theme session.Theme, doc domain.CvDocument, loaded bool, activeTab, flash string) consoleView {
	v := consoleView{User: user.Email, Theme: theme, Flash: flash, Tab: normalizeTab(activeTab), Loaded: loaded}
	for _, t := range tabLabels {
		t.Active = t.Key == v.Tab
		v.Tabs = append(v.Tabs, t)
	}
	if !loaded {
		return v
	}

	if v.Tab == tabPersonal {
		p := doc.PersonalInfo
		v.Personal = []field{
			personalField("Name", "name", p.Name, false),
			personalField("Title", "title", p.Title, false),
			personalField("Email", "email", p.Email, false),
			personalField("Phone", "phone", p.Phone, false),
			personalField("Location", "location", p.Location, false),
			personalField("LinkedIn URL", "linkedinUrl", p.LinkedinURL, false),
			personalField("Website URL", "websiteUrl", p.WebsiteURL, false),
			personalField("Photo URL", "photoUrl", p.PhotoURL, false),
			personalField("Objective", "objective", p.Objective, true),
			personalField("Summary", "summary", p.Summary, true),
		}
		v.Leadership = p.Leadership
		v.Portfolio = p.Portfolio
		v.Expertise = p.Expertise
		return v
	}

	v.Kind = domain.Kind(v.Tab)
	v.KindLabel = v.Kind.Label()
	for i, e := range doc.Entities(v.Kind) {
		c := card{Index: i, Fields: entityFields(v.Kind, i, e)}
		c.ID, c.HasID = e.EntityID()
		if len(c.Fields) > 0 {
			c.Title = c.Fields[0].Value
		}
		v.Cards = append(v.Cards, c)
	}
	return v
}

func personalField(label, name, value string, multiline bool) field {
	return field{Label: label, Name: "personalInfo." + name, Value: value, Multiline: multiline}
}

// entityFields lists the editable inputs of one entity, sortOrder last.
func entityFields(kind domain.Kind, i int, e domain.Entity) []field {
	f := func(label, name, value string) field {
		return field{Label: label, Name: fmt.Sprintf("%s.%d.%s", kind, i, name), Value: value}
	}
	var out []field
	switch v := e.(type) {
	case domain.WorkExperience:
		resp := f("Responsibilities (one per line)", "responsibilities", strings.Join(v.Responsibilities, "\n"))
		resp.Multiline = true
		out = []field{
			f("Title", "title", v.Title),
			f("Company", "company", v.Company),
			f("Location", "location", v.Location),
			f("Start Date", "startDate", v.StartDate),
			f("End Date", "endDate", v.EndDate),
			resp,
			f("Projects (comma separated)", "projects", v.Projects),
		}
	case domain.Education:
		out = []field{
			f("Degree", "degree", v.Degree),
			f("Field", "field", v.Field),
			f("School", "school", v.School),
			f("Location", "location", v.Location),
			f("Start Date", "startDate", v.StartDate),
			f("End Date", "endDate", v.EndDate),
		}
	case domain.Skill:
		out = []field{f("Name", "name", v.Name), f("Category", "category", v.Category)}
	case domain.Certificate:
		out = []field{f("Name", "name", v.Name), f("Issuer", "issuer", v.Issuer), f("Date", "date", v.Date)}
	case domain.Language:
		out = []field{f("Name", "name", v.Name), f("Proficiency", "proficiency", v.Proficiency)}
	case domain.Strength:
		out = []field{f("Name", "name", v.Name)}
	}
	order := ""
	if n, ok := e.Order(); ok {
		order = strconv.Itoa(n)
	}
	return append(out, f("Sort Order", "sortOrder", order))
}
