package types

import (
	"encoding/json"
	"testing"

	"resumetailor/internal/errors"
)

func validResumeJSON(t *testing.T) []byte {
	t.Helper()
	resume := ResumeJSON{
		Header: Header{
			Name:     "Jane Doe",
			Email:    "jane@example.com",
			Phone:    "555-0100",
			Location: "Berlin, Germany",
		},
		Experience: []Experience{
			{
				Company: "Acme GmbH",
				Title:   "Software Engineer",
				Start:   "Jun 2017",
				End:     "Present",
				Bullets: []string{"Built billing services"},
			},
		},
	}
	resume.Normalize()

	raw, err := json.Marshal(resume)
	if err != nil {
		t.Fatalf("Failed to marshal resume: %v", err)
	}
	return raw
}

func TestValidateResumeAcceptsNormalizedDocument(t *testing.T) {
	if err := ValidateResume(validResumeJSON(t)); err != nil {
		t.Errorf("Expected valid resume to pass, got %v", err)
	}
}

func TestValidateResumeRejectsBadDocuments(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "{nope"},
		{"missing header", `{"education":[],"experience":[],"projects":[],"activities":[],"skills":{"groups":[]},"languages":[],"certifications":[]}`},
		{"wrong section type", `{"header":{"name":"A","email":"a@b.c","phone":"1","location":"X","links":[]},"education":"none","experience":[],"projects":[],"activities":[],"skills":{"groups":[]},"languages":[],"certifications":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateResume([]byte(tt.raw))
			if err == nil {
				t.Fatal("Expected validation to fail")
			}
			appErr, ok := errors.AsAppError(err)
			if !ok {
				t.Fatalf("Expected an AppError, got %T", err)
			}
			if appErr.Type != errors.ErrorTypeSchema {
				t.Errorf("Expected schema error type, got %q", appErr.Type)
			}
		})
	}
}

// The validators share one lazily compiled schema set, so whichever of them
// runs first in a process must already see compiled schemas.
func TestEveryValidatorWorksOnFirstUse(t *testing.T) {
	if err := ValidateTailorResult([]byte(`{
		"tailoredResume": {},
		"keywordDiff": {"added": [], "removed": [], "emphasized": []},
		"gapReport": {"missingKeywords": [], "matchedSkills": [], "missingSkills": [], "coverageScore": 80, "suggestions": []}
	}`)); err != nil {
		t.Errorf("Expected valid tailor result to pass, got %v", err)
	}

	if err := ValidateTailorResult([]byte(`{"tailoredResume": {}}`)); err == nil {
		t.Error("Expected tailor result without diff and report to fail")
	}

	if err := ValidateResume(validResumeJSON(t)); err != nil {
		t.Errorf("Expected valid resume to pass, got %v", err)
	}
	if err := ValidateRequirements([]byte(`{"keywords":"Go"}`)); err == nil {
		t.Error("Expected malformed requirements to fail")
	}
}

func TestValidateRequirements(t *testing.T) {
	valid := `{
		"mustHaveSkills": ["Go"],
		"preferredSkills": [],
		"responsibilities": ["Build services"],
		"keywords": ["Go", "Kubernetes"],
		"roleCategory": "backend",
		"hardRequirements": [],
		"softRequirements": []
	}`
	if err := ValidateRequirements([]byte(valid)); err != nil {
		t.Errorf("Expected valid requirements to pass, got %v", err)
	}

	if err := ValidateRequirements([]byte(`{"keywords":"Go"}`)); err == nil {
		t.Error("Expected malformed requirements to fail")
	}
}

func TestNormalizeInitializesAllListFields(t *testing.T) {
	var resume ResumeJSON
	resume.Experience = []Experience{{Company: "Acme"}}
	resume.Normalize()

	if resume.Header.Links == nil || resume.Education == nil || resume.Projects == nil ||
		resume.Activities == nil || resume.Skills.Groups == nil ||
		resume.Languages == nil || resume.Certifications == nil {
		t.Error("Normalize must initialize every nil slice field")
	}
	if resume.Experience[0].Bullets == nil || resume.Experience[0].Technologies == nil {
		t.Error("Normalize must initialize nested slice fields")
	}

	raw, err := json.Marshal(resume)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if err := ValidateResume(raw); err != nil {
		t.Errorf("Normalized empty resume should satisfy the schema, got %v", err)
	}
}
