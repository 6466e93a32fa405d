package tailor

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"resumetailor/internal/diff"
	"resumetailor/internal/types"
)

// DeriveKeywordDiff classifies every requirement keyword by comparing its
// occurrence counts in the original and tailored resume texts. The backend's
// own claims about keyword coverage are never used.
func DeriveKeywordDiff(original, tailored *types.ResumeJSON, req *types.JobRequirements) types.ATSKeywordDiff {
	origText := resumeText(original)
	tailText := resumeText(tailored)

	result := types.ATSKeywordDiff{
		Added:      []string{},
		Removed:    []string{},
		Emphasized: []string{},
	}

	seen := make(map[string]bool)
	for _, keyword := range req.Keywords {
		normalized := normalizeKeyword(keyword)
		if normalized == "" || seen[normalized] {
			continue
		}
		seen[normalized] = true

		origCount := countTerm(origText, normalized)
		tailCount := countTerm(tailText, normalized)

		switch {
		case tailCount > 0 && origCount == 0:
			result.Added = append(result.Added, keyword)
		case origCount > 0 && tailCount == 0:
			result.Removed = append(result.Removed, keyword)
		case origCount > 0 && tailCount > origCount:
			result.Emphasized = append(result.Emphasized, keyword)
		}
	}

	return result
}

// DeriveGapReport measures how well the tailored resume covers the stated
// requirements. Must-have matches weigh twice preferred matches; the score is
// clamped to [0,100]. A posting with no skill requirements scores 100.
func DeriveGapReport(tailored *types.ResumeJSON, req *types.JobRequirements) types.ATSGapReport {
	text := resumeText(tailored)

	report := types.ATSGapReport{
		MissingKeywords: []string{},
		MatchedSkills:   []string{},
		MissingSkills:   []string{},
		Suggestions:     []string{},
	}

	matchedMust, totalMust := 0, 0
	seen := make(map[string]bool)
	for _, skill := range req.MustHaveSkills {
		normalized := normalizeKeyword(skill)
		if normalized == "" || seen[normalized] {
			continue
		}
		seen[normalized] = true
		totalMust++
		if countTerm(text, normalized) > 0 {
			matchedMust++
			report.MatchedSkills = append(report.MatchedSkills, skill)
		} else {
			report.MissingSkills = append(report.MissingSkills, skill)
		}
	}

	matchedPreferred, totalPreferred := 0, 0
	for _, skill := range req.PreferredSkills {
		normalized := normalizeKeyword(skill)
		if normalized == "" || seen[normalized] {
			continue
		}
		seen[normalized] = true
		totalPreferred++
		if countTerm(text, normalized) > 0 {
			matchedPreferred++
			report.MatchedSkills = append(report.MatchedSkills, skill)
		}
	}

	for _, keyword := range req.Keywords {
		normalized := normalizeKeyword(keyword)
		if normalized != "" && countTerm(text, normalized) == 0 {
			report.MissingKeywords = append(report.MissingKeywords, keyword)
		}
	}

	report.CoverageScore = coverageScore(matchedMust, totalMust, matchedPreferred, totalPreferred)
	report.Suggestions = buildSuggestions(tailored, report.MissingSkills)

	return report
}

// coverageScore computes the weighted match percentage, must-have matches
// counting double.
func coverageScore(matchedMust, totalMust, matchedPreferred, totalPreferred int) int {
	denominator := 2*totalMust + totalPreferred
	if denominator == 0 {
		return 100
	}

	score := (2*matchedMust + matchedPreferred) * 100 / denominator
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func buildSuggestions(tailored *types.ResumeJSON, missingSkills []string) []string {
	suggestions := make([]string, 0, len(missingSkills)+2)
	for _, skill := range missingSkills {
		suggestions = append(suggestions,
			fmt.Sprintf("The posting requires %s, which the resume does not demonstrate. Add it to a skills group or an experience bullet only if you have real experience with it.", skill))
	}

	if len(tailored.Projects) == 0 {
		suggestions = append(suggestions,
			"The resume has no projects section. Consider adding one to demonstrate hands-on work.")
	}
	if strings.TrimSpace(tailored.Summary) == "" {
		suggestions = append(suggestions,
			"The resume has no summary. A short summary aligned with the role helps recruiters and keyword scanners.")
	}

	return suggestions
}

// resumeText flattens a resume into one normalized lowercase string for
// keyword membership and occurrence checks.
func resumeText(r *types.ResumeJSON) string {
	var parts []string

	add := func(values ...string) {
		for _, v := range values {
			if v != "" {
				parts = append(parts, v)
			}
		}
	}

	add(r.Summary)
	for _, exp := range r.Experience {
		add(exp.Company, exp.Title)
		add(exp.Bullets...)
		add(exp.Technologies...)
	}
	for _, edu := range r.Education {
		add(edu.Institution, edu.Degree, edu.Field, edu.Honors)
		add(edu.Coursework...)
	}
	for _, project := range r.Projects {
		add(project.Name, project.Description, project.Achievement)
		add(project.Technologies...)
	}
	for _, activity := range r.Activities {
		add(activity.Organization, activity.Role)
		add(activity.Bullets...)
	}
	for _, group := range r.Skills.Groups {
		add(group.Name)
		add(group.Items...)
	}
	for _, cert := range r.Certifications {
		add(cert.Name, cert.Issuer)
	}

	return strings.ToLower(diff.Normalize(strings.Join(parts, " ")))
}

func normalizeKeyword(s string) string {
	return strings.ToLower(diff.Normalize(s))
}

// countTerm counts occurrences of term in text that sit on word boundaries,
// so "go" never matches inside "google". Terms may span multiple words.
func countTerm(text, term string) int {
	if term == "" {
		return 0
	}

	count := 0
	for start := 0; start <= len(text)-len(term); {
		i := strings.Index(text[start:], term)
		if i < 0 {
			break
		}
		begin := start + i
		end := begin + len(term)
		if !wordRuneEndsAt(text, begin) && !wordRuneStartsAt(text, end) {
			count++
		}
		start = end
	}
	return count
}

func wordRuneEndsAt(s string, i int) bool {
	r, size := utf8.DecodeLastRuneInString(s[:i])
	return size > 0 && isWordRune(r)
}

func wordRuneStartsAt(s string, i int) bool {
	r, size := utf8.DecodeRuneInString(s[i:])
	return size > 0 && isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
