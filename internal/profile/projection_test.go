package profile

import (
	"testing"

	"resumetailor/internal/types"
)

func sampleProfile() *types.UserProfile {
	return &types.UserProfile{
		FullName:    "Jane Doe",
		Email:       "jane@example.com",
		Phone:       "555-0100",
		Location:    "Berlin, Germany",
		LinkedInURL: "https://linkedin.com/in/janedoe",
		GitHubURL:   "https://github.com/janedoe",
		OtherLinks:  []types.Link{{Type: "Blog", URL: "https://janedoe.dev"}},
		Summary:     "Backend engineer.",
		Skills: []types.SkillGroup{
			{Name: "Languages", Items: []string{"Go", "Python"}},
		},
		Experience: []types.ProfileExperience{
			{
				Company: "Acme GmbH",
				Title:   "Software Engineer",
				Start:   "Jun 2017",
				End:     "Dec 2020",
				Bullets: []string{"Built billing services"},
			},
			{
				Company: "Beta AG",
				Title:   "Senior Engineer",
				Start:   "Jan 2021",
				End:     "",
				Current: true,
				Bullets: []string{"Leading the platform team"},
			},
		},
		Education: []types.Education{
			{Institution: "Humboldt University", Degree: "BSc", End: "2016"},
		},
		Projects: []types.Project{
			{Name: "LinkShort", Description: "URL shortener"},
		},
		Languages: []types.Language{
			{Name: "German", Proficiency: "Native"},
		},
	}
}

func TestToResumeHeader(t *testing.T) {
	resume := ToResume(sampleProfile())

	if resume.Header.Name != "Jane Doe" {
		t.Errorf("Expected header name Jane Doe, got %q", resume.Header.Name)
	}
	if resume.Header.Email != "jane@example.com" || resume.Header.Phone != "555-0100" {
		t.Error("Contact fields did not carry over")
	}

	wantLinks := []types.Link{
		{Type: "LinkedIn", URL: "https://linkedin.com/in/janedoe"},
		{Type: "GitHub", URL: "https://github.com/janedoe"},
		{Type: "Blog", URL: "https://janedoe.dev"},
	}
	if len(resume.Header.Links) != len(wantLinks) {
		t.Fatalf("Expected %d links, got %d", len(wantLinks), len(resume.Header.Links))
	}
	for i, want := range wantLinks {
		if resume.Header.Links[i] != want {
			t.Errorf("Link %d: expected %+v, got %+v", i, want, resume.Header.Links[i])
		}
	}
}

func TestToResumeCurrentPositionMapsToPresent(t *testing.T) {
	resume := ToResume(sampleProfile())

	if len(resume.Experience) != 2 {
		t.Fatalf("Expected 2 experience entries, got %d", len(resume.Experience))
	}
	if resume.Experience[0].End != "Dec 2020" {
		t.Errorf("Past position end changed: %q", resume.Experience[0].End)
	}
	if resume.Experience[1].End != "Present" {
		t.Errorf("Current position should map to Present, got %q", resume.Experience[1].End)
	}
}

func TestToResumeCarriesEverySection(t *testing.T) {
	p := sampleProfile()
	resume := ToResume(p)

	if len(resume.Education) != len(p.Education) {
		t.Errorf("Education count %d, want %d", len(resume.Education), len(p.Education))
	}
	if len(resume.Projects) != len(p.Projects) {
		t.Errorf("Projects count %d, want %d", len(resume.Projects), len(p.Projects))
	}
	if len(resume.Skills.Groups) != len(p.Skills) {
		t.Errorf("Skill groups count %d, want %d", len(resume.Skills.Groups), len(p.Skills))
	}
	if len(resume.Languages) != len(p.Languages) {
		t.Errorf("Languages count %d, want %d", len(resume.Languages), len(p.Languages))
	}
	if resume.Summary != p.Summary {
		t.Errorf("Summary changed: %q", resume.Summary)
	}
}

func TestToResumeTotalOverEmptyProfile(t *testing.T) {
	resume := ToResume(&types.UserProfile{FullName: "Empty Person"})

	// Every list field must come back non-nil so downstream marshaling
	// produces arrays, not nulls.
	if resume.Header.Links == nil || resume.Education == nil || resume.Experience == nil ||
		resume.Projects == nil || resume.Activities == nil || resume.Skills.Groups == nil {
		t.Error("Projection of an empty profile must initialize all list fields")
	}
	if len(resume.Experience) != 0 {
		t.Errorf("Expected no experience entries, got %d", len(resume.Experience))
	}
}
