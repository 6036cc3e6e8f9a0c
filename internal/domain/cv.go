package domain

import "time"

// CvDocument is the aggregate returned by GET /api/cv and the value the
// console edits in memory.
type CvDocument struct {
	PersonalInfo   PersonalInfo     `json:"personalInfo"`
	WorkExperience []WorkExperience `json:"workExperience"`
	Education      []Education      `json:"education"`
	Skills         []Skill          `json:"skills"`
	Certificates   []Certificate    `json:"certificates"`
	Languages      []Language       `json:"languages"`
	Strengths      []Strength       `json:"strengths"`
}

// PersonalInfo is the singleton header record of the CV.
//
// The three *JSON fields are the wire form of the embedded sub-documents.
// Leadership, Portfolio and Expertise are the editable forms; they are
// filled by model.DecodeInto after a fetch and written back to the wire
// fields by model.EncodeFrom just before a save.
type PersonalInfo struct {
	ID          *int64     `json:"id,omitempty"`
	Name        string     `json:"name"`
	Title       string     `json:"title"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	Location    string     `json:"location"`
	LinkedinURL string     `json:"linkedinUrl"`
	WebsiteURL  string     `json:"websiteUrl"`
	PhotoURL    string     `json:"photoUrl"`
	Objective   string     `json:"objective"`
	Summary     string     `json:"summary"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`

	LeadershipPointsJSON string `json:"leadershipPoints"`
	ProductPortfolioJSON string `json:"productPortfolio"`
	ExpertiseAreasJSON   string `json:"expertiseAreas"`

	Leadership []string        `json:"-"`
	Portfolio  []PortfolioItem `json:"-"`
	Expertise  []ExpertiseArea `json:"-"`
}

type PortfolioItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type ExpertiseArea struct {
	Category string   `json:"category"`
	Skills   []string `json:"skills"`
}

// Ident carries the server-assigned identifier and the display position
// shared by every collection entity. A nil ID marks an entity that has not
// been persisted yet.
type Ident struct {
	ID        *int64 `json:"id,omitempty"`
	SortOrder *int   `json:"sortOrder,omitempty"`
}

func (i Ident) EntityID() (int64, bool) {
	if i.ID == nil {
		return 0, false
	}
	return *i.ID, true
}

func (i Ident) Order() (int, bool) {
	if i.SortOrder == nil {
		return 0, false
	}
	return *i.SortOrder, true
}

type WorkExperience struct {
	Ident
	Title            string   `json:"title"`
	Company          string   `json:"company"`
	Location         string   `json:"location"`
	StartDate        string   `json:"startDate"`
	EndDate          string   `json:"endDate"`
	Responsibilities []string `json:"responsibilities"`
	Projects         string   `json:"projects"`
}

type Education struct {
	Ident
	Degree    string `json:"degree"`
	Field     string `json:"field"`
	School    string `json:"school"`
	Location  string `json:"location"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type Skill struct {
	Ident
	Name     string `json:"name"`
	Category string `json:"category"`
}

type Certificate struct {
	Ident
	Name   string `json:"name"`
	Issuer string `json:"issuer"`
	Date   string `json:"date"`
}

type Language struct {
	Ident
	Name        string `json:"name"`
	Proficiency string `json:"proficiency"`
}

type Strength struct {
	Ident
	Name string `json:"name"`
}

// AuthUser is the answer of GET /api/auth/me.
type AuthUser struct {
	Authenticated bool   `json:"authenticated"`
	Email         string `json:"email,omitempty"`
	IsAdmin       bool   `json:"isAdmin,omitempty"`
}
