package diff

import (
	"strings"
	"testing"

	"resumetailor/internal/types"
)

func sampleResume() *types.ResumeJSON {
	return &types.ResumeJSON{
		Header: types.Header{
			Name:     "Jane Doe",
			Email:    "jane@example.com",
			Phone:    "555-0100",
			Location: "Berlin, Germany",
		},
		Summary: "Backend engineer with five years of experience.",
		Education: []types.Education{
			{
				Institution: "Humboldt University",
				Degree:      "BSc",
				Field:       "Computer Science",
				Location:    "Berlin",
				Start:       "2012",
				End:         "2016",
			},
		},
		Experience: []types.Experience{
			{
				Company:  "Acme GmbH",
				Title:    "Software Engineer",
				Location: "Berlin",
				Start:    "Jun 2017",
				End:      "Present",
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
			{
				Organization: "Code Club",
				Role:         "Mentor",
				Bullets:      []string{"Ran weekly sessions for beginners"},
			},
		},
		Skills: types.Skills{Groups: []types.SkillGroup{
			{Name: "Languages", Items: []string{"Go", "Python"}},
		}},
	}
}

func cloneResume(t *testing.T, r *types.ResumeJSON) *types.ResumeJSON {
	t.Helper()
	clone := *r
	clone.Education = append([]types.Education{}, r.Education...)
	clone.Experience = make([]types.Experience, len(r.Experience))
	for i, exp := range r.Experience {
		clone.Experience[i] = exp
		clone.Experience[i].Bullets = append([]string{}, exp.Bullets...)
	}
	clone.Projects = append([]types.Project{}, r.Projects...)
	clone.Activities = make([]types.Activity, len(r.Activities))
	for i, act := range r.Activities {
		clone.Activities[i] = act
		clone.Activities[i].Bullets = append([]string{}, act.Bullets...)
	}
	clone.Skills.Groups = append([]types.SkillGroup{}, r.Skills.Groups...)
	return &clone
}

func findSection(t *testing.T, report *Report, name string) *Section {
	t.Helper()
	for i := range report.Sections {
		if report.Sections[i].Name == name {
			return &report.Sections[i]
		}
	}
	t.Fatalf("section %q not found in report", name)
	return nil
}

func TestCompareIdenticalResumes(t *testing.T) {
	original := sampleResume()
	tailored := cloneResume(t, original)

	report := Compare(original, tailored)

	if report.TotalChanges != 0 {
		t.Errorf("Expected 0 changes for identical resumes, got %d", report.TotalChanges)
	}
	for _, section := range report.Sections {
		if section.HasChanges {
			t.Errorf("Section %q unexpectedly marked as changed", section.Name)
		}
	}
}

func TestCompareIsIdempotent(t *testing.T) {
	original := sampleResume()
	tailored := cloneResume(t, original)
	tailored.Experience[0].Bullets[0] = "Built scalable billing services in Go and TypeScript"

	first := Compare(original, tailored)
	second := Compare(original, tailored)

	if first.TotalChanges != second.TotalChanges {
		t.Errorf("Expected stable change count, got %d then %d",
			first.TotalChanges, second.TotalChanges)
	}
}

func TestCompareModifiedBullet(t *testing.T) {
	original := sampleResume()
	tailored := cloneResume(t, original)
	tailored.Experience[0].Bullets[0] = "Built scalable billing services in Go and TypeScript"

	report := Compare(original, tailored)
	section := findSection(t, report, "Work Experience")

	if !section.HasChanges {
		t.Fatal("Expected work experience section to have changes")
	}

	var modified *Line
	for i := range section.Lines {
		if section.Lines[i].Type == ChangeModified {
			modified = &section.Lines[i]
			break
		}
	}
	if modified == nil {
		t.Fatal("Expected a modified line in work experience")
	}

	emphasized := make(map[string]bool)
	for _, span := range modified.TailoredWords {
		if span.Emphasis {
			emphasized[span.Text] = true
		}
	}
	for _, want := range []string{"scalable", "and", "TypeScript"} {
		if !emphasized[want] {
			t.Errorf("Expected token %q to be emphasized, emphasized set: %v", want, emphasized)
		}
	}
	if emphasized["billing"] {
		t.Error("Token shared by both sides should not be emphasized")
	}
}

func TestCompareEntryAddedAndRemoved(t *testing.T) {
	original := sampleResume()
	withExtra := cloneResume(t, original)
	withExtra.Experience = append(withExtra.Experience, types.Experience{
		Company: "Beta AG", Title: "Consultant",
	})

	added := Compare(original, withExtra)
	section := findSection(t, added, "Work Experience")
	last := section.Lines[len(section.Lines)-1]
	if last.Type != ChangeAdded {
		t.Errorf("Expected trailing added line, got %q", last.Type)
	}

	removed := Compare(withExtra, original)
	section = findSection(t, removed, "Work Experience")
	last = section.Lines[len(section.Lines)-1]
	if last.Type != ChangeRemoved {
		t.Errorf("Expected trailing removed line, got %q", last.Type)
	}

	if added.TotalChanges != removed.TotalChanges {
		t.Errorf("Expected symmetric change counts, got %d and %d",
			added.TotalChanges, removed.TotalChanges)
	}
}

func TestCompareSummaryTransitions(t *testing.T) {
	tests := []struct {
		name     string
		original string
		tailored string
		want     ChangeType
	}{
		{"added", "", "New summary text", ChangeAdded},
		{"removed", "Old summary text", "", ChangeRemoved},
		{"modified", "Old summary text", "New summary text", ChangeModified},
		{"unchanged", "Same text", "Same text", ChangeUnchanged},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := sampleResume()
			original.Summary = tt.original
			tailored := cloneResume(t, original)
			tailored.Summary = tt.tailored

			report := Compare(original, tailored)
			section := findSection(t, report, "Summary")

			if len(section.Lines) != 1 {
				t.Fatalf("Expected 1 summary line, got %d", len(section.Lines))
			}
			if section.Lines[0].Type != tt.want {
				t.Errorf("Expected summary line type %q, got %q", tt.want, section.Lines[0].Type)
			}
		})
	}
}

func TestCompareIgnoresCosmeticDifferences(t *testing.T) {
	original := sampleResume()
	original.Summary = "Led the team's 2019-2021 platform migration."
	tailored := cloneResume(t, original)
	// Curly quotes, an en dash, and doubled spaces are cosmetic.
	tailored.Summary = "Led the team’s 2019–2021 platform migration."
	tailored.Experience[0].Bullets[1] = "Mentored  two junior engineers"

	report := Compare(original, tailored)

	if report.TotalChanges != 0 {
		t.Errorf("Expected cosmetic differences to be ignored, got %d changes", report.TotalChanges)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"curly quotes", "it’s “fine”", `it's "fine"`},
		{"dashes", "2019–2021 — now", "2019-2021 - now"},
		{"whitespace runs", "  a\t b \n c ", "a b c"},
		{"unchanged ascii", "plain text", "plain text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestWordDiffReconstructsInput(t *testing.T) {
	original := "Built internal billing services in Go"
	tailored := "Built scalable billing services in Go and TypeScript"

	originalWords, tailoredWords := WordDiff(original, tailored)

	var rebuilt strings.Builder
	for _, span := range originalWords {
		rebuilt.WriteString(span.Text)
	}
	if rebuilt.String() != original {
		t.Errorf("Original spans do not reconstruct input: %q", rebuilt.String())
	}

	rebuilt.Reset()
	for _, span := range tailoredWords {
		rebuilt.WriteString(span.Text)
	}
	if rebuilt.String() != tailored {
		t.Errorf("Tailored spans do not reconstruct input: %q", rebuilt.String())
	}
}

func TestWordDiffReorderedTokens(t *testing.T) {
	originalWords, tailoredWords := WordDiff("Go and Python", "Python and Go")

	for _, span := range append(originalWords, tailoredWords...) {
		if span.Emphasis {
			t.Errorf("Reordered line should carry no emphasis, token %q emphasized", span.Text)
		}
	}
}
