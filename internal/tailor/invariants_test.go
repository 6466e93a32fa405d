package tailor

import (
	"testing"

	"resumetailor/internal/errors"
	"resumetailor/internal/types"
)

func baseResume() *types.ResumeJSON {
	return &types.ResumeJSON{
		Header: types.Header{Name: "Jane Doe", Email: "jane@example.com"},
		Summary: "Backend engineer focused on distributed systems.",
		Education: []types.Education{
			{Institution: "Humboldt University", Degree: "BSc", Field: "Computer Science", Start: "2012", End: "2016"},
		},
		Experience: []types.Experience{
			{
				Company: "Acme GmbH",
				Title:   "Software Engineer",
				Start:   "Jun 2017",
				End:     "Present",
				Bullets: []string{
					"Built internal billing services in Go",
					"Mentored two junior engineers",
				},
				Technologies: []string{"Go", "PostgreSQL"},
			},
		},
		Projects: []types.Project{
			{Name: "LinkShort", Description: "URL shortener with analytics"},
		},
		Activities: []types.Activity{
			{Organization: "Code Club", Role: "Mentor", Bullets: []string{"Ran weekly sessions"}},
		},
		Skills: types.Skills{Groups: []types.SkillGroup{
			{Name: "Languages", Items: []string{"Go", "Python"}},
		}},
		Certifications: []types.Certification{
			{Name: "CKA", Issuer: "CNCF", Date: "2022"},
		},
	}
}

func tailoredCopy(t *testing.T, base *types.ResumeJSON) *types.ResumeJSON {
	t.Helper()
	clone := *base
	clone.Education = append([]types.Education{}, base.Education...)
	clone.Experience = make([]types.Experience, len(base.Experience))
	for i, exp := range base.Experience {
		clone.Experience[i] = exp
		clone.Experience[i].Bullets = append([]string{}, exp.Bullets...)
	}
	clone.Projects = append([]types.Project{}, base.Projects...)
	clone.Activities = make([]types.Activity, len(base.Activities))
	for i, act := range base.Activities {
		clone.Activities[i] = act
		clone.Activities[i].Bullets = append([]string{}, act.Bullets...)
	}
	clone.Skills.Groups = append([]types.SkillGroup{}, base.Skills.Groups...)
	clone.Certifications = append([]types.Certification{}, base.Certifications...)
	return &clone
}

func assertInvalidCode(t *testing.T, err error, wantCode string) {
	t.Helper()
	if err == nil {
		t.Fatal("Expected validation to fail")
	}
	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("Expected an AppError, got %T: %v", err, err)
	}
	if appErr.Type != errors.ErrorTypeTailoringInvalid {
		t.Errorf("Expected error type %q, got %q", errors.ErrorTypeTailoringInvalid, appErr.Type)
	}
	if appErr.Code != wantCode {
		t.Errorf("Expected error code %q, got %q", wantCode, appErr.Code)
	}
}

func TestValidateAcceptsRewrittenBullets(t *testing.T) {
	base := baseResume()
	tailored := tailoredCopy(t, base)
	tailored.Summary = "Backend engineer specializing in billing platforms."
	tailored.Experience[0].Bullets[0] = "Designed internal billing services in Go serving 2M requests/day"

	if err := validateTailoredResume(base, tailored); err != nil {
		t.Errorf("Expected rewritten bullets to pass validation, got %v", err)
	}
}

func TestValidateAcceptsCosmeticFactDifferences(t *testing.T) {
	base := baseResume()
	tailored := tailoredCopy(t, base)
	tailored.Experience[0].Company = "Acme  GmbH"
	tailored.Education[0].Start = " 2012 "

	if err := validateTailoredResume(base, tailored); err != nil {
		t.Errorf("Expected cosmetic differences to pass validation, got %v", err)
	}
}

func TestValidateRejectsEntryCountChanges(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *types.ResumeJSON)
	}{
		{"extra experience", func(r *types.ResumeJSON) {
			r.Experience = append(r.Experience, types.Experience{Company: "Beta AG", Title: "Lead"})
		}},
		{"dropped experience", func(r *types.ResumeJSON) {
			r.Experience = nil
		}},
		{"extra education", func(r *types.ResumeJSON) {
			r.Education = append(r.Education, types.Education{Institution: "MIT", Degree: "PhD"})
		}},
		{"extra certification", func(r *types.ResumeJSON) {
			r.Certifications = append(r.Certifications, types.Certification{Name: "AWS SA", Issuer: "AWS"})
		}},
		{"dropped skill group", func(r *types.ResumeJSON) {
			r.Skills.Groups = nil
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := baseResume()
			tailored := tailoredCopy(t, base)
			tt.mutate(tailored)
			assertInvalidCode(t, validateTailoredResume(base, tailored), errors.CodeStructuralParity)
		})
	}
}

func TestValidateRejectsGrownBulletLists(t *testing.T) {
	base := baseResume()
	tailored := tailoredCopy(t, base)
	tailored.Experience[0].Bullets = append(tailored.Experience[0].Bullets,
		"Invented an accomplishment that never happened")

	assertInvalidCode(t, validateTailoredResume(base, tailored), errors.CodeStructuralParity)
}

func TestValidateAllowsShrunkBulletLists(t *testing.T) {
	base := baseResume()
	tailored := tailoredCopy(t, base)
	tailored.Experience[0].Bullets = tailored.Experience[0].Bullets[:1]

	if err := validateTailoredResume(base, tailored); err != nil {
		t.Errorf("Expected fewer bullets to pass validation, got %v", err)
	}
}

func TestValidateRejectsAlteredFacts(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *types.ResumeJSON)
	}{
		{"company renamed", func(r *types.ResumeJSON) {
			r.Experience[0].Company = "Google"
		}},
		{"title inflated", func(r *types.ResumeJSON) {
			r.Experience[0].Title = "Principal Engineer"
		}},
		{"dates shifted", func(r *types.ResumeJSON) {
			r.Experience[0].Start = "Jan 2015"
		}},
		{"degree changed", func(r *types.ResumeJSON) {
			r.Education[0].Degree = "MSc"
		}},
		{"project renamed", func(r *types.ResumeJSON) {
			r.Projects[0].Name = "MegaShort"
		}},
		{"activity role changed", func(r *types.ResumeJSON) {
			r.Activities[0].Role = "Founder"
		}},
		{"certification issuer changed", func(r *types.ResumeJSON) {
			r.Certifications[0].Issuer = "Linux Foundation"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := baseResume()
			tailored := tailoredCopy(t, base)
			tt.mutate(tailored)
			assertInvalidCode(t, validateTailoredResume(base, tailored), errors.CodeFabricatedFacts)
		})
	}
}
