package model

// Codec for the JSON sub-documents embedded as text in personal info.
// Decoding never fails: anything that is not a well formed document of the
// expected shape decodes to an empty list.

import (
	"encoding/json"
	"log/slog"
	"strings"

	"cv-site/internal/domain"

	"github.com/xeipuuv/gojsonschema"
)

func DecodeLeadership(raw string) []string {
	return decode[string]("leadershipPoints", leadershipShape, raw)
}

func DecodePortfolio(raw string) []domain.PortfolioItem {
	return decode[domain.PortfolioItem]("productPortfolio", portfolioShape, raw)
}

func DecodeExpertise(raw string) []domain.ExpertiseArea {
	areas := decode[domain.ExpertiseArea]("expertiseAreas", expertiseShape, raw)
	for i := range areas {
		if areas[i].Skills == nil {
			areas[i].Skills = []string{}
		}
	}
	return areas
}

func EncodeLeadership(points []string) string { return encode(points) }

func EncodePortfolio(items []domain.PortfolioItem) string { return encode(items) }

func EncodeExpertise(areas []domain.ExpertiseArea) string {
	out := make([]domain.ExpertiseArea, len(areas))
	for i, a := range areas {
		if a.Skills == nil {
			a.Skills = []string{}
		}
		out[i] = a
	}
	return encode(out)
}

// DecodeInto returns p with the editable sub-document lists filled from
// their wire text. Each field is decoded independently.
func DecodeInto(p domain.PersonalInfo) domain.PersonalInfo {
	p.Leadership = DecodeLeadership(p.LeadershipPointsJSON)
	p.Portfolio = DecodePortfolio(p.ProductPortfolioJSON)
	p.Expertise = DecodeExpertise(p.ExpertiseAreasJSON)
	return p
}

// EncodeFrom returns p with the wire text rewritten from the editable lists.
func EncodeFrom(p domain.PersonalInfo) domain.PersonalInfo {
	p.LeadershipPointsJSON = EncodeLeadership(p.Leadership)
	p.ProductPortfolioJSON = EncodePortfolio(p.Portfolio)
	p.ExpertiseAreasJSON = EncodeExpertise(p.Expertise)
	return p
}

func decode[T any](field string, shape *gojsonschema.Schema, raw string) []T {
	out := []T{}
	if strings.TrimSpace(raw) == "" {
		return out
	}
	if err := validateShape(shape, raw); err != nil {
		slog.Debug("sub-document ignored", "field", field, "error", err)
		return out
	}
	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		slog.Debug("sub-document ignored", "field", field, "error", err)
		return out
	}
	if items == nil {
		return out
	}
	return items
}

func encode[T any](items []T) string {
	if items == nil {
		items = []T{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		// slices of strings and plain structs always marshal
		return "[]"
	}
	return string(b)
}
