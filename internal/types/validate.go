package types

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"resumetailor/internal/errors"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/resume.schema.json
var resumeSchemaJSON []byte

//go:embed schemas/requirements.schema.json
var requirementsSchemaJSON []byte

//go:embed schemas/tailor_result.schema.json
var tailorResultSchemaJSON []byte

var (
	schemaOnce         sync.Once
	schemaErr          error
	resumeSchema       *gojsonschema.Schema
	requirementsSchema *gojsonschema.Schema
	tailorResultSchema *gojsonschema.Schema
)

func compileSchemas() {
	compile := func(raw []byte) (*gojsonschema.Schema, error) {
		return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	}
	if resumeSchema, schemaErr = compile(resumeSchemaJSON); schemaErr != nil {
		return
	}
	if requirementsSchema, schemaErr = compile(requirementsSchemaJSON); schemaErr != nil {
		return
	}
	tailorResultSchema, schemaErr = compile(tailorResultSchemaJSON)
}

// validateAgainst takes a pointer to one of the package schema vars so the
// schema is only dereferenced after compileSchemas has populated it.
func validateAgainst(schema **gojsonschema.Schema, raw []byte, code, what string) error {
	schemaOnce.Do(compileSchemas)
	if schemaErr != nil {
		return errors.NewInternalError(errors.CodeInternalError, "failed to compile JSON schemas", schemaErr)
	}

	result, err := (*schema).Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return errors.NewSchemaError(code, fmt.Sprintf("%s is not valid JSON", what), err)
	}
	if result.Valid() {
		return nil
	}

	issues := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		issues = append(issues, desc.String())
	}
	return errors.NewSchemaError(code, fmt.Sprintf("%s failed schema validation", what), nil).
		WithContext("issues", strings.Join(issues, "; "))
}

// ValidateResume checks a raw JSON document against the canonical resume
// schema. Any value claiming to be a ResumeJSON passes through here before
// the rest of the system touches it.
func ValidateResume(raw []byte) error {
	return validateAgainst(&resumeSchema, raw, errors.CodeResumeSchemaInvalid, "resume")
}

// ValidateRequirements checks a raw JSON document against the job
// requirements schema.
func ValidateRequirements(raw []byte) error {
	return validateAgainst(&requirementsSchema, raw, errors.CodeRequirementsSchemaInvalid, "job requirements")
}

// ValidateTailorResult checks the outer shape of a tailoring response. The
// embedded tailoredResume is validated separately with ValidateResume.
func ValidateTailorResult(raw []byte) error {
	return validateAgainst(&tailorResultSchema, raw, errors.CodeTailorResultSchemaInvalid, "tailor result")
}

// Normalize ensures slice fields are non-nil so renderers and the diff
// engine never have to distinguish null from empty.
func (r *ResumeJSON) Normalize() {
	if r.Header.Links == nil {
		r.Header.Links = []Link{}
	}
	if r.Education == nil {
		r.Education = []Education{}
	}
	if r.Experience == nil {
		r.Experience = []Experience{}
	}
	for i := range r.Experience {
		if r.Experience[i].Bullets == nil {
			r.Experience[i].Bullets = []string{}
		}
		if r.Experience[i].Technologies == nil {
			r.Experience[i].Technologies = []string{}
		}
	}
	if r.Projects == nil {
		r.Projects = []Project{}
	}
	for i := range r.Projects {
		if r.Projects[i].Technologies == nil {
			r.Projects[i].Technologies = []string{}
		}
	}
	if r.Activities == nil {
		r.Activities = []Activity{}
	}
	for i := range r.Activities {
		if r.Activities[i].Bullets == nil {
			r.Activities[i].Bullets = []string{}
		}
	}
	if r.Skills.Groups == nil {
		r.Skills.Groups = []SkillGroup{}
	}
	for i := range r.Skills.Groups {
		if r.Skills.Groups[i].Items == nil {
			r.Skills.Groups[i].Items = []string{}
		}
	}
	if r.Languages == nil {
		r.Languages = []Language{}
	}
	if r.Certifications == nil {
		r.Certifications = []Certification{}
	}
}
