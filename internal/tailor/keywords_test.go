package tailor

import (
	"strings"
	"testing"

	"resumetailor/internal/types"
)

func TestDeriveKeywordDiffClassification(t *testing.T) {
	base := baseResume()
	tailored := tailoredCopy(t, base)
	// "Kubernetes" is new, "Mentored" disappears, "Go" gains a mention.
	tailored.Summary = "Backend engineer building Go services on Kubernetes."
	tailored.Experience[0].Bullets[1] = "Guided two junior engineers"

	req := &types.JobRequirements{
		Keywords: []string{"Kubernetes", "Mentored", "Go", "Rust"},
	}

	diff := DeriveKeywordDiff(base, tailored, req)

	if len(diff.Added) != 1 || diff.Added[0] != "Kubernetes" {
		t.Errorf("Expected Kubernetes in added, got %v", diff.Added)
	}
	if len(diff.Removed) != 1 || diff.Removed[0] != "Mentored" {
		t.Errorf("Expected Mentored in removed, got %v", diff.Removed)
	}
	if len(diff.Emphasized) != 1 || diff.Emphasized[0] != "Go" {
		t.Errorf("Expected Go in emphasized, got %v", diff.Emphasized)
	}
}

func TestDeriveKeywordDiffIsCaseInsensitive(t *testing.T) {
	base := baseResume()
	tailored := tailoredCopy(t, base)
	tailored.Summary = "Experienced with POSTGRESQL at scale."

	req := &types.JobRequirements{Keywords: []string{"PostgreSQL"}}
	diff := DeriveKeywordDiff(base, tailored, req)

	// Already present in base technologies, so not added.
	if len(diff.Added) != 0 {
		t.Errorf("Expected no added keywords, got %v", diff.Added)
	}
	if len(diff.Emphasized) != 1 {
		t.Errorf("Expected PostgreSQL emphasized, got %v", diff.Emphasized)
	}
}

func TestDeriveKeywordDiffDeduplicates(t *testing.T) {
	base := baseResume()
	tailored := tailoredCopy(t, base)
	tailored.Summary = "Kubernetes operator author."

	req := &types.JobRequirements{Keywords: []string{"Kubernetes", "kubernetes", "KUBERNETES"}}
	diff := DeriveKeywordDiff(base, tailored, req)

	if len(diff.Added) != 1 {
		t.Errorf("Expected duplicate keywords collapsed to one entry, got %v", diff.Added)
	}
}

func TestKeywordMatchingRespectsWordBoundaries(t *testing.T) {
	resume := &types.ResumeJSON{
		Summary: "Integrated Google Maps data into MongoDB pipelines using C++ and machine learning.",
	}

	req := &types.JobRequirements{
		MustHaveSkills:  []string{"Go", "C++"},
		PreferredSkills: []string{"Mongo", "machine learning"},
		Keywords:        []string{"Go", "Mongo"},
	}

	report := DeriveGapReport(resume, req)

	// "Go" inside "Google" and "Mongo" inside "MongoDB" are not matches;
	// "C++" and the multi-word "machine learning" are.
	if len(report.MissingSkills) != 1 || report.MissingSkills[0] != "Go" {
		t.Errorf("Expected only Go missing, got %v", report.MissingSkills)
	}
	if len(report.MissingKeywords) != 2 {
		t.Errorf("Expected Go and Mongo in missing keywords, got %v", report.MissingKeywords)
	}
	for _, matched := range []string{"C++", "machine learning"} {
		found := false
		for _, skill := range report.MatchedSkills {
			if skill == matched {
				found = true
			}
		}
		if !found {
			t.Errorf("Expected %q in matched skills, got %v", matched, report.MatchedSkills)
		}
	}

	base := &types.ResumeJSON{Summary: "Data pipelines."}
	diff := DeriveKeywordDiff(base, resume, req)
	if len(diff.Added) != 0 {
		t.Errorf("Expected no keywords added from partial-word matches, got %v", diff.Added)
	}
}

func TestDeriveGapReportScoring(t *testing.T) {
	base := baseResume()

	req := &types.JobRequirements{
		MustHaveSkills:  []string{"Go", "Kubernetes"},
		PreferredSkills: []string{"Python"},
		Keywords:        []string{"Go", "Kubernetes", "Terraform"},
	}

	report := DeriveGapReport(base, req)

	// One of two must-haves matched (weight 2 each) plus the preferred match:
	// (2*1 + 1) * 100 / (2*2 + 1) = 60.
	if report.CoverageScore != 60 {
		t.Errorf("Expected coverage score 60, got %d", report.CoverageScore)
	}

	if len(report.MissingSkills) != 1 || report.MissingSkills[0] != "Kubernetes" {
		t.Errorf("Expected Kubernetes missing, got %v", report.MissingSkills)
	}
	for _, matched := range []string{"Go", "Python"} {
		found := false
		for _, skill := range report.MatchedSkills {
			if skill == matched {
				found = true
			}
		}
		if !found {
			t.Errorf("Expected %q in matched skills, got %v", matched, report.MatchedSkills)
		}
	}

	wantMissing := map[string]bool{"Kubernetes": true, "Terraform": true}
	if len(report.MissingKeywords) != len(wantMissing) {
		t.Errorf("Expected missing keywords %v, got %v", wantMissing, report.MissingKeywords)
	}

	found := false
	for _, s := range report.Suggestions {
		if strings.Contains(s, "Kubernetes") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected a suggestion mentioning Kubernetes, got %v", report.Suggestions)
	}
}

func TestDeriveGapReportNoRequirements(t *testing.T) {
	report := DeriveGapReport(baseResume(), &types.JobRequirements{})

	if report.CoverageScore != 100 {
		t.Errorf("Expected coverage 100 with no skill requirements, got %d", report.CoverageScore)
	}
	if len(report.MissingSkills) != 0 {
		t.Errorf("Expected no missing skills, got %v", report.MissingSkills)
	}
}

func TestDeriveGapReportFullCoverage(t *testing.T) {
	base := baseResume()
	req := &types.JobRequirements{
		MustHaveSkills:  []string{"Go"},
		PreferredSkills: []string{"PostgreSQL"},
	}

	report := DeriveGapReport(base, req)

	if report.CoverageScore != 100 {
		t.Errorf("Expected full coverage, got %d", report.CoverageScore)
	}
}

func TestDeriveGapReportStructuralSuggestions(t *testing.T) {
	base := baseResume()
	base.Projects = nil
	base.Summary = ""

	report := DeriveGapReport(base, &types.JobRequirements{})

	var hasProjects, hasSummary bool
	for _, s := range report.Suggestions {
		if strings.Contains(s, "projects section") {
			hasProjects = true
		}
		if strings.Contains(s, "no summary") {
			hasSummary = true
		}
	}
	if !hasProjects || !hasSummary {
		t.Errorf("Expected structural suggestions for missing projects and summary, got %v", report.Suggestions)
	}
}

func TestCoverageScoreBounds(t *testing.T) {
	tests := []struct {
		name                                                string
		matchedMust, totalMust, matchedPreferred, totalPref int
		want                                                int
	}{
		{"empty", 0, 0, 0, 0, 100},
		{"none matched", 0, 3, 0, 2, 0},
		{"all matched", 3, 3, 2, 2, 100},
		{"must weighs double", 1, 1, 0, 2, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := coverageScore(tt.matchedMust, tt.totalMust, tt.matchedPreferred, tt.totalPref)
			if got != tt.want {
				t.Errorf("coverageScore = %d, want %d", got, tt.want)
			}
		})
	}
}
