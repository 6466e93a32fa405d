package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"resumetailor/internal/diff"
	"resumetailor/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	// Register default formatters
	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "TailorResult", &TailorTextFormatter{})
	registry.RegisterFormatter("markdown", "TailorResult", &TailorMarkdownFormatter{})
	registry.RegisterFormatter("text", "JobRequirements", &RequirementsTextFormatter{})
	registry.RegisterFormatter("markdown", "JobRequirements", &RequirementsMarkdownFormatter{})
	registry.RegisterFormatter("text", "DiffReport", &DiffTextFormatter{})
	registry.RegisterFormatter("markdown", "DiffReport", &DiffMarkdownFormatter{})
	registry.RegisterFormatter("text", "ResumeJSON", &ResumeTextFormatter{})
	registry.RegisterFormatter("markdown", "ResumeJSON", &ResumeMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	// Try specific formatter first
	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.TailorResult, *types.TailorResult:
		return "TailorResult"
	case types.JobRequirements, *types.JobRequirements:
		return "JobRequirements"
	case diff.Report, *diff.Report:
		return "DiffReport"
	case types.ResumeJSON, *types.ResumeJSON:
		return "ResumeJSON"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

func asTailorResult(data any) (*types.TailorResult, error) {
	switch v := data.(type) {
	case types.TailorResult:
		return &v, nil
	case *types.TailorResult:
		return v, nil
	default:
		return nil, fmt.Errorf("expected TailorResult, got %T", data)
	}
}

func asRequirements(data any) (*types.JobRequirements, error) {
	switch v := data.(type) {
	case types.JobRequirements:
		return &v, nil
	case *types.JobRequirements:
		return v, nil
	default:
		return nil, fmt.Errorf("expected JobRequirements, got %T", data)
	}
}

func asDiffReport(data any) (*diff.Report, error) {
	switch v := data.(type) {
	case diff.Report:
		return &v, nil
	case *diff.Report:
		return v, nil
	default:
		return nil, fmt.Errorf("expected diff report, got %T", data)
	}
}

func asResume(data any) (*types.ResumeJSON, error) {
	switch v := data.(type) {
	case types.ResumeJSON:
		return &v, nil
	case *types.ResumeJSON:
		return v, nil
	default:
		return nil, fmt.Errorf("expected ResumeJSON, got %T", data)
	}
}

// TailorTextFormatter handles text formatting for tailoring results
type TailorTextFormatter struct{}

func (ttf *TailorTextFormatter) Format(data any) (string, error) {
	result, err := asTailorResult(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString("=== TAILORED RESUME ===\n\n")
	output.WriteString(RenderResumeText(&result.TailoredResume))
	output.WriteString("\n\n")

	output.WriteString("=== KEYWORD CHANGES ===\n")
	writeKeywordList(&output, "Added", result.KeywordDiff.Added)
	writeKeywordList(&output, "Emphasized", result.KeywordDiff.Emphasized)
	writeKeywordList(&output, "Removed", result.KeywordDiff.Removed)
	output.WriteString("\n")

	output.WriteString("=== GAP REPORT ===\n")
	output.WriteString(fmt.Sprintf("Coverage Score: %d/100\n\n", result.GapReport.CoverageScore))
	writeKeywordList(&output, "Matched Skills", result.GapReport.MatchedSkills)
	writeKeywordList(&output, "Missing Skills", result.GapReport.MissingSkills)
	writeKeywordList(&output, "Missing Keywords", result.GapReport.MissingKeywords)
	if len(result.GapReport.Suggestions) > 0 {
		output.WriteString("Suggestions:\n")
		for _, suggestion := range result.GapReport.Suggestions {
			output.WriteString(fmt.Sprintf("- %s\n", suggestion))
		}
	}

	return output.String(), nil
}

func (ttf *TailorTextFormatter) SupportedType() string {
	return "TailorResult"
}

func writeKeywordList(output *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	output.WriteString(fmt.Sprintf("%s: %s\n", label, strings.Join(items, ", ")))
}

// TailorMarkdownFormatter handles markdown formatting for tailoring results
type TailorMarkdownFormatter struct{}

func (tmf *TailorMarkdownFormatter) Format(data any) (string, error) {
	result, err := asTailorResult(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString("# Tailored Resume\n\n")
	output.WriteString("```\n")
	output.WriteString(RenderResumeText(&result.TailoredResume))
	output.WriteString("\n```\n\n")

	output.WriteString("## Keyword Changes\n\n")
	writeMarkdownList(&output, "Added", result.KeywordDiff.Added)
	writeMarkdownList(&output, "Emphasized", result.KeywordDiff.Emphasized)
	writeMarkdownList(&output, "Removed", result.KeywordDiff.Removed)

	output.WriteString("## Gap Report\n\n")
	output.WriteString(fmt.Sprintf("**Coverage Score:** %d/100\n\n", result.GapReport.CoverageScore))
	writeMarkdownList(&output, "Matched Skills", result.GapReport.MatchedSkills)
	writeMarkdownList(&output, "Missing Skills", result.GapReport.MissingSkills)
	writeMarkdownList(&output, "Missing Keywords", result.GapReport.MissingKeywords)
	if len(result.GapReport.Suggestions) > 0 {
		output.WriteString("### Suggestions\n")
		for _, suggestion := range result.GapReport.Suggestions {
			output.WriteString(fmt.Sprintf("- %s\n", suggestion))
		}
		output.WriteString("\n")
	}

	return output.String(), nil
}

func (tmf *TailorMarkdownFormatter) SupportedType() string {
	return "TailorResult"
}

func writeMarkdownList(output *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	output.WriteString(fmt.Sprintf("### %s\n", label))
	for _, item := range items {
		output.WriteString(fmt.Sprintf("- %s\n", item))
	}
	output.WriteString("\n")
}

// RequirementsTextFormatter handles text formatting for extracted job requirements
type RequirementsTextFormatter struct{}

func (rtf *RequirementsTextFormatter) Format(data any) (string, error) {
	result, err := asRequirements(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString("=== JOB REQUIREMENTS ===\n\n")
	output.WriteString(fmt.Sprintf("Role Category: %s\n", result.RoleCategory))
	if result.SeniorityLevel != "" {
		output.WriteString(fmt.Sprintf("Seniority Level: %s\n", result.SeniorityLevel))
	}
	output.WriteString("\n")

	writeRequirementSection(&output, "Must-Have Skills", result.MustHaveSkills)
	writeRequirementSection(&output, "Preferred Skills", result.PreferredSkills)
	writeRequirementSection(&output, "Hard Requirements", result.HardRequirements)
	writeRequirementSection(&output, "Soft Requirements", result.SoftRequirements)
	writeRequirementSection(&output, "Responsibilities", result.Responsibilities)

	if len(result.Keywords) > 0 {
		output.WriteString("Keywords:\n")
		output.WriteString(strings.Join(result.Keywords, ", "))
		output.WriteString("\n")
	}

	return output.String(), nil
}

func (rtf *RequirementsTextFormatter) SupportedType() string {
	return "JobRequirements"
}

func writeRequirementSection(output *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	output.WriteString(label)
	output.WriteString(":\n")
	for _, item := range items {
		output.WriteString(fmt.Sprintf("- %s\n", item))
	}
	output.WriteString("\n")
}

// RequirementsMarkdownFormatter handles markdown formatting for extracted job requirements
type RequirementsMarkdownFormatter struct{}

func (rmf *RequirementsMarkdownFormatter) Format(data any) (string, error) {
	result, err := asRequirements(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString("# Job Requirements\n\n")
	output.WriteString(fmt.Sprintf("**Role Category:** %s\n\n", result.RoleCategory))
	if result.SeniorityLevel != "" {
		output.WriteString(fmt.Sprintf("**Seniority Level:** %s\n\n", result.SeniorityLevel))
	}

	writeMarkdownList(&output, "Must-Have Skills", result.MustHaveSkills)
	writeMarkdownList(&output, "Preferred Skills", result.PreferredSkills)
	writeMarkdownList(&output, "Hard Requirements", result.HardRequirements)
	writeMarkdownList(&output, "Soft Requirements", result.SoftRequirements)
	writeMarkdownList(&output, "Responsibilities", result.Responsibilities)
	writeMarkdownList(&output, "Keywords", result.Keywords)

	return output.String(), nil
}

func (rmf *RequirementsMarkdownFormatter) SupportedType() string {
	return "JobRequirements"
}

func writeDiffLine(output *strings.Builder, line diff.Line) {
	switch line.Type {
	case diff.ChangeAdded:
		output.WriteString(fmt.Sprintf("+ %s\n", line.Content))
	case diff.ChangeRemoved:
		output.WriteString(fmt.Sprintf("- %s\n", line.Content))
	case diff.ChangeModified:
		output.WriteString(fmt.Sprintf("- %s\n", line.Original))
		output.WriteString(fmt.Sprintf("+ %s\n", line.Tailored))
	default:
		output.WriteString(fmt.Sprintf("  %s\n", line.Content))
	}
}

// DiffTextFormatter handles text formatting for resume diff reports
type DiffTextFormatter struct{}

func (dtf *DiffTextFormatter) Format(data any) (string, error) {
	report, err := asDiffReport(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString("=== RESUME DIFF ===\n")
	output.WriteString(fmt.Sprintf("Total Changes: %d\n\n", report.TotalChanges))

	for _, section := range report.Sections {
		if !section.HasChanges {
			continue
		}
		output.WriteString(fmt.Sprintf("[%s]\n", strings.ToUpper(section.Name)))
		for _, line := range section.Lines {
			writeDiffLine(&output, line)
		}
		output.WriteString("\n")
	}

	if report.TotalChanges == 0 {
		output.WriteString("No changes.\n")
	}

	return output.String(), nil
}

func (dtf *DiffTextFormatter) SupportedType() string {
	return "DiffReport"
}

// DiffMarkdownFormatter handles markdown formatting for resume diff reports
type DiffMarkdownFormatter struct{}

func (dmf *DiffMarkdownFormatter) Format(data any) (string, error) {
	report, err := asDiffReport(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString("# Resume Diff\n\n")
	output.WriteString(fmt.Sprintf("**Total Changes:** %d\n\n", report.TotalChanges))

	for _, section := range report.Sections {
		if !section.HasChanges {
			continue
		}
		output.WriteString(fmt.Sprintf("## %s\n\n", section.Name))
		output.WriteString("```diff\n")
		for _, line := range section.Lines {
			writeDiffLine(&output, line)
		}
		output.WriteString("```\n\n")
	}

	if report.TotalChanges == 0 {
		output.WriteString("No changes.\n")
	}

	return output.String(), nil
}

func (dmf *DiffMarkdownFormatter) SupportedType() string {
	return "DiffReport"
}

// ResumeTextFormatter renders a resume as the shared plain-text template
type ResumeTextFormatter struct{}

func (rtf *ResumeTextFormatter) Format(data any) (string, error) {
	resume, err := asResume(data)
	if err != nil {
		return "", err
	}
	return RenderResumeText(resume), nil
}

func (rtf *ResumeTextFormatter) SupportedType() string {
	return "ResumeJSON"
}

// ResumeMarkdownFormatter handles markdown formatting for a resume snapshot
type ResumeMarkdownFormatter struct{}

func (rmf *ResumeMarkdownFormatter) Format(data any) (string, error) {
	resume, err := asResume(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString(fmt.Sprintf("# %s\n\n", resume.Header.Name))
	contact := contactLine(&resume.Header)
	if contact != "" {
		output.WriteString(contact)
		output.WriteString("\n\n")
	}

	if resume.Summary != "" {
		output.WriteString("## Summary\n\n")
		output.WriteString(resume.Summary)
		output.WriteString("\n\n")
	}

	if len(resume.Experience) > 0 {
		output.WriteString("## Work Experience\n\n")
		for _, exp := range resume.Experience {
			output.WriteString(fmt.Sprintf("### %s, %s (%s - %s)\n\n", exp.Title, exp.Company, exp.Start, exp.End))
			for _, bullet := range exp.Bullets {
				output.WriteString(fmt.Sprintf("- %s\n", bullet))
			}
			output.WriteString("\n")
		}
	}

	if len(resume.Education) > 0 {
		output.WriteString("## Education\n\n")
		for _, edu := range resume.Education {
			output.WriteString(fmt.Sprintf("- **%s**, %s", edu.Institution, edu.Degree))
			if edu.Field != "" {
				output.WriteString(fmt.Sprintf(", %s", edu.Field))
			}
			output.WriteString("\n")
		}
		output.WriteString("\n")
	}

	if len(resume.Projects) > 0 {
		output.WriteString("## Projects\n\n")
		for _, project := range resume.Projects {
			output.WriteString(fmt.Sprintf("- **%s**: %s\n", project.Name, project.Description))
		}
		output.WriteString("\n")
	}

	if len(resume.Skills.Groups) > 0 {
		output.WriteString("## Skills\n\n")
		for _, group := range resume.Skills.Groups {
			output.WriteString(fmt.Sprintf("- **%s:** %s\n", group.Name, strings.Join(group.Items, ", ")))
		}
		output.WriteString("\n")
	}

	return output.String(), nil
}

func (rmf *ResumeMarkdownFormatter) SupportedType() string {
	return "ResumeJSON"
}

const sectionRule = "------------------------------------------------------------"

func contactLine(header *types.Header) string {
	var parts []string
	if header.Location != "" {
		parts = append(parts, header.Location)
	}
	if header.Phone != "" {
		parts = append(parts, fmt.Sprintf("P: %s", header.Phone))
	}
	if header.Email != "" {
		parts = append(parts, header.Email)
	}
	return strings.Join(parts, " | ")
}

// RenderResumeText renders a resume as a plain-text document suitable for
// pasting into application forms. Section order and formatting follow the
// shared export template, so the same resume always renders the same bytes.
func RenderResumeText(resume *types.ResumeJSON) string {
	var lines []string

	lines = append(lines, strings.ToUpper(resume.Header.Name))

	if contact := contactLine(&resume.Header); contact != "" {
		lines = append(lines, contact)
	}

	if len(resume.Header.Links) > 0 {
		linkParts := make([]string, 0, len(resume.Header.Links))
		for _, link := range resume.Header.Links {
			linkParts = append(linkParts, fmt.Sprintf("%s: %s", link.Type, link.URL))
		}
		lines = append(lines, strings.Join(linkParts, " | "))
	}

	lines = append(lines, "")

	if len(resume.Education) > 0 {
		lines = append(lines, "EDUCATION", sectionRule)

		for _, edu := range resume.Education {
			degreeText := edu.Degree
			if edu.Field != "" {
				degreeText += ", " + edu.Field
			}
			dateText := ""
			if edu.End != "" {
				if edu.Start != "" {
					dateText = edu.Start + " - " + edu.End
				} else {
					dateText = edu.End
				}
			}

			institution := edu.Institution
			if edu.Location != "" {
				institution += ", " + edu.Location
			}
			lines = append(lines, institution)
			if dateText != "" {
				degreeText += ", " + dateText
			}
			lines = append(lines, degreeText)

			if edu.GPA != "" || edu.Honors != "" {
				var gpaHonors []string
				if edu.GPA != "" {
					gpaHonors = append(gpaHonors, "GPA: "+edu.GPA)
				}
				if edu.Honors != "" {
					gpaHonors = append(gpaHonors, edu.Honors)
				}
				lines = append(lines, strings.Join(gpaHonors, "; "))
			}

			if len(edu.Coursework) > 0 {
				lines = append(lines, "Relevant Coursework: "+strings.Join(edu.Coursework, ", "))
			}

			if edu.StudyAbroad != nil {
				lines = append(lines, "")
				lines = append(lines, fmt.Sprintf("%s, %s", edu.StudyAbroad.Institution, edu.StudyAbroad.Location))
				lines = append(lines, fmt.Sprintf("%s (%s - %s)", edu.StudyAbroad.Program, edu.StudyAbroad.Start, edu.StudyAbroad.End))
			}

			lines = append(lines, "")
		}
	}

	if len(resume.Experience) > 0 {
		lines = append(lines, "WORK EXPERIENCE", sectionRule)

		for _, exp := range resume.Experience {
			company := exp.Company
			if exp.Location != "" {
				company += ", " + exp.Location
			}
			lines = append(lines, company)
			lines = append(lines, fmt.Sprintf("%s (%s - %s)", exp.Title, exp.Start, exp.End))
			lines = append(lines, "")

			for _, bullet := range exp.Bullets {
				lines = append(lines, "  • "+bullet)
			}

			lines = append(lines, "")
		}
	}

	if len(resume.Projects) > 0 {
		lines = append(lines, "UNIVERSITY PROJECTS", sectionRule)

		for _, project := range resume.Projects {
			title := project.Name
			if project.Date != "" {
				title = fmt.Sprintf("%s (%s)", project.Name, project.Date)
			}
			lines = append(lines, title)

			desc := project.Description
			if project.Achievement != "" {
				desc += "; " + project.Achievement
			}
			lines = append(lines, "  • "+desc)

			if len(project.Technologies) > 0 {
				lines = append(lines, "  • Technologies: "+strings.Join(project.Technologies, ", "))
			}

			if project.URL != "" {
				lines = append(lines, "  • URL: "+project.URL)
			}

			lines = append(lines, "")
		}
	}

	if len(resume.Activities) > 0 {
		lines = append(lines, "ACTIVITIES", sectionRule)

		for _, activity := range resume.Activities {
			lines = append(lines, fmt.Sprintf("%s | %s", activity.Organization, activity.Role))

			for _, bullet := range activity.Bullets {
				lines = append(lines, "  • "+bullet)
			}

			lines = append(lines, "")
		}
	}

	hasAdditional := len(resume.Skills.Groups) > 0 || len(resume.Languages) > 0 || len(resume.Certifications) > 0

	if hasAdditional {
		lines = append(lines, "ADDITIONAL", sectionRule)

		for _, group := range resume.Skills.Groups {
			lines = append(lines, fmt.Sprintf("%s: %s", group.Name, strings.Join(group.Items, ", ")))
		}

		if len(resume.Languages) > 0 {
			langParts := make([]string, 0, len(resume.Languages))
			for _, lang := range resume.Languages {
				langParts = append(langParts, fmt.Sprintf("%s (%s)", lang.Name, lang.Proficiency))
			}
			lines = append(lines, "Languages: "+strings.Join(langParts, ", "))
		}

		if len(resume.Certifications) > 0 {
			certParts := make([]string, 0, len(resume.Certifications))
			for _, cert := range resume.Certifications {
				text := cert.Name
				if cert.Issuer != "" {
					text += fmt.Sprintf(" (%s)", cert.Issuer)
				}
				certParts = append(certParts, text)
			}
			lines = append(lines, "Certifications: "+strings.Join(certParts, ", "))
		}

		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
