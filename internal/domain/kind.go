package domain

import "fmt"

// Kind names a section of the CV document.
type Kind string

const (
	KindPersonalInfo   Kind = "personalInfo"
	KindWorkExperience Kind = "workExperience"
	KindEducation      Kind = "education"
	KindSkills         Kind = "skills"
	KindCertificates   Kind = "certificates"
	KindLanguages      Kind = "languages"
	KindStrengths      Kind = "strengths"
)

// CollectionKinds lists the entity kinds in the order the console shows them.
var CollectionKinds = []Kind{
	KindWorkExperience,
	KindEducation,
	KindSkills,
	KindCertificates,
	KindLanguages,
	KindStrengths,
}

var kindPaths = map[Kind]string{
	KindWorkExperience: "work-experience",
	KindEducation:      "education",
	KindSkills:         "skills",
	KindCertificates:   "certificates",
	KindLanguages:      "languages",
	KindStrengths:      "strengths",
}

// ParseKind accepts the document field name of a section.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if k == KindPersonalInfo || k.IsCollection() {
		return k, nil
	}
	return "", fmt.Errorf("unknown section %q", s)
}

// KindFromPath maps an admin API path segment back to its kind.
func KindFromPath(segment string) (Kind, error) {
	for k, p := range kindPaths {
		if p == segment {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown collection path %q", segment)
}

func (k Kind) IsCollection() bool {
	_, ok := kindPaths[k]
	return ok
}

// Path is the admin API path segment, e.g. "work-experience".
func (k Kind) Path() string {
	if k == KindPersonalInfo {
		return "personal-info"
	}
	return kindPaths[k]
}

// Label is the singular noun used in console messages.
func (k Kind) Label() string {
	switch k {
	case KindPersonalInfo:
		return "Personal info"
	case KindWorkExperience:
		return "Experience"
	case KindEducation:
		return "Education"
	case KindSkills:
		return "Skill"
	case KindCertificates:
		return "Certificate"
	case KindLanguages:
		return "Language"
	case KindStrengths:
		return "Strength"
	}
	return string(k)
}
