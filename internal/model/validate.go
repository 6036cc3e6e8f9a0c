package model

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Shapes of the three sub-documents stored as text in personal_info.
// Extra object keys are tolerated; anything else is rejected.
const (
	leadershipSchema = `{
		"type": "array",
		"items": {"type": "string"}
	}`
	portfolioSchema = `{
		"type": "array",
		"items": {
			"type": "object",
			"properties": {
				"title": {"type": "string"},
				"description": {"type": "string"}
			}
		}
	}`
	expertiseSchema = `{
		"type": "array",
		"items": {
			"type": "object",
			"properties": {
				"category": {"type": "string"},
				"skills": {"type": "array", "items": {"type": "string"}}
			}
		}
	}`
)

var (
	leadershipShape = mustSchema(leadershipSchema)
	portfolioShape  = mustSchema(portfolioSchema)
	expertiseShape  = mustSchema(expertiseSchema)
)

func mustSchema(s string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(s))
	if err != nil {
		panic(err)
	}
	return schema
}

// validateShape checks raw JSON text against schema. Malformed JSON is
// reported as an error as well.
func validateShape(schema *gojsonschema.Schema, raw string) error {
	res, err := schema.Validate(gojsonschema.NewStringLoader(raw))
	if err != nil {
		return err
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("schema validation failed: %s", strings.Join(msgs, "; "))
}
