package diff

import (
	"fmt"
	"strings"
	"unicode"

	"resumetailor/internal/types"
)

// ChangeType classifies a diff line
type ChangeType string

const (
	ChangeAdded     ChangeType = "added"
	ChangeRemoved   ChangeType = "removed"
	ChangeModified  ChangeType = "modified"
	ChangeUnchanged ChangeType = "unchanged"
)

// Span is one token of a modified line. Emphasis marks tokens absent from
// the other side of the comparison.
type Span struct {
	Text     string `json:"text"`
	Emphasis bool   `json:"emphasis,omitempty"`
}

// Line is one classified line of a section diff
type Line struct {
	Type          ChangeType `json:"type"`
	Original      string     `json:"original,omitempty"`
	Tailored      string     `json:"tailored,omitempty"`
	Content       string     `json:"content"`
	OriginalWords []Span     `json:"originalWords,omitempty"`
	TailoredWords []Span     `json:"tailoredWords,omitempty"`
}

// Section is the diff of one resume section
type Section struct {
	Name       string `json:"name"`
	Lines      []Line `json:"lines"`
	HasChanges bool   `json:"hasChanges"`
}

// Report is the full structural diff of two resumes
type Report struct {
	Sections     []Section `json:"sections"`
	TotalChanges int       `json:"totalChanges"`
}

// Compare produces a per-section, per-entry classification of the changes
// between an original and a tailored resume. It makes no assumption about
// how the tailored resume was produced; manually edited pairs work too.
func Compare(original, tailored *types.ResumeJSON) *Report {
	sections := []Section{
		diffSummary(original.Summary, tailored.Summary),
		diffEducation(original.Education, tailored.Education),
		diffExperience(original.Experience, tailored.Experience),
		diffProjects(original.Projects, tailored.Projects),
		diffActivities(original.Activities, tailored.Activities),
		diffSkills(original.Skills, tailored.Skills),
	}

	total := 0
	for _, section := range sections {
		for _, line := range section.Lines {
			if line.Type != ChangeUnchanged {
				total++
			}
		}
	}

	return &Report{Sections: sections, TotalChanges: total}
}

// splitWords splits on runs of whitespace while keeping the whitespace
// tokens, so joining the tokens reconstructs the input exactly.
func splitWords(s string) []string {
	var tokens []string
	start := 0
	inSpace := false
	for i, r := range s {
		isSpace := unicode.IsSpace(r)
		if i == 0 {
			inSpace = isSpace
			continue
		}
		if isSpace != inSpace {
			tokens = append(tokens, s[start:i])
			start = i
			inSpace = isSpace
		}
	}
	if start < len(s) {
		tokens = append(tokens, s[start:])
	}
	return tokens
}

// WordDiff highlights the tokens of a modified line pair. A non-whitespace
// token is emphasized when the other side's token set does not contain it.
// This is a set-membership highlight, not an edit-distance alignment: a
// reordered line with the same tokens gets no emphasis at all.
func WordDiff(original, tailored string) (originalWords, tailoredWords []Span) {
	origTokens := splitWords(original)
	tailTokens := splitWords(tailored)

	origSet := make(map[string]struct{})
	for _, tok := range origTokens {
		if strings.TrimSpace(tok) != "" {
			origSet[tok] = struct{}{}
		}
	}
	tailSet := make(map[string]struct{})
	for _, tok := range tailTokens {
		if strings.TrimSpace(tok) != "" {
			tailSet[tok] = struct{}{}
		}
	}

	for _, tok := range origTokens {
		if strings.TrimSpace(tok) == "" {
			originalWords = append(originalWords, Span{Text: tok})
			continue
		}
		_, shared := tailSet[tok]
		originalWords = append(originalWords, Span{Text: tok, Emphasis: !shared})
	}
	for _, tok := range tailTokens {
		if strings.TrimSpace(tok) == "" {
			tailoredWords = append(tailoredWords, Span{Text: tok})
			continue
		}
		_, shared := origSet[tok]
		tailoredWords = append(tailoredWords, Span{Text: tok, Emphasis: !shared})
	}
	return originalWords, tailoredWords
}

func modifiedLine(original, tailored, content string) Line {
	originalWords, tailoredWords := WordDiff(original, tailored)
	return Line{
		Type:          ChangeModified,
		Original:      original,
		Tailored:      tailored,
		Content:       content,
		OriginalWords: originalWords,
		TailoredWords: tailoredWords,
	}
}

// compareLine classifies a positionally paired line
func compareLine(original, tailored string) Line {
	if equalNormalized(original, tailored) {
		return Line{Type: ChangeUnchanged, Content: tailored}
	}
	return modifiedLine(original, tailored, tailored)
}

func diffSummary(original, tailored string) Section {
	section := Section{Name: "Summary"}

	if !equalNormalized(original, tailored) {
		section.HasChanges = true
		switch {
		case original != "" && tailored != "":
			section.Lines = append(section.Lines, modifiedLine(original, tailored, tailored))
		case original != "":
			section.Lines = append(section.Lines, Line{Type: ChangeRemoved, Content: original})
		case tailored != "":
			section.Lines = append(section.Lines, Line{Type: ChangeAdded, Content: tailored})
		}
	} else if tailored != "" {
		section.Lines = append(section.Lines, Line{Type: ChangeUnchanged, Content: tailored})
	}

	return section
}

func educationLine(e *types.Education) string {
	line := fmt.Sprintf("%s, %s | %s", e.Institution, e.Location, e.Degree)
	if e.Field != "" {
		line += ", " + e.Field
	}
	return line + fmt.Sprintf(" (%s)", e.End)
}

func diffEducation(original, tailored []types.Education) Section {
	section := Section{Name: "Education"}

	for i := 0; i < max(len(original), len(tailored)); i++ {
		switch {
		case i < len(original) && i < len(tailored):
			line := compareLine(educationLine(&original[i]), educationLine(&tailored[i]))
			if line.Type != ChangeUnchanged {
				section.HasChanges = true
			}
			section.Lines = append(section.Lines, line)
		case i < len(original):
			section.HasChanges = true
			section.Lines = append(section.Lines, Line{Type: ChangeRemoved, Content: educationLine(&original[i])})
		default:
			section.HasChanges = true
			section.Lines = append(section.Lines, Line{Type: ChangeAdded, Content: educationLine(&tailored[i])})
		}
	}

	return section
}

// compareBullets pairs bullets by position within one entry
func compareBullets(original, tailored []string) []Line {
	var lines []Line
	for i := 0; i < max(len(original), len(tailored)); i++ {
		switch {
		case i < len(original) && i < len(tailored):
			if equalNormalized(original[i], tailored[i]) {
				lines = append(lines, Line{Type: ChangeUnchanged, Content: "• " + tailored[i]})
			} else {
				lines = append(lines, modifiedLine(original[i], tailored[i], "• "+tailored[i]))
			}
		case i < len(original):
			lines = append(lines, Line{Type: ChangeRemoved, Content: "• " + original[i]})
		default:
			lines = append(lines, Line{Type: ChangeAdded, Content: "• " + tailored[i]})
		}
	}
	return lines
}

func experienceHeader(e *types.Experience) string {
	return fmt.Sprintf("%s, %s | %s (%s – %s)", e.Company, e.Location, e.Title, e.Start, e.End)
}

func diffExperience(original, tailored []types.Experience) Section {
	section := Section{Name: "Work Experience"}

	for i := 0; i < max(len(original), len(tailored)); i++ {
		switch {
		case i < len(original) && i < len(tailored):
			orig, tail := &original[i], &tailored[i]

			header := compareLine(experienceHeader(orig), experienceHeader(tail))
			if header.Type != ChangeUnchanged {
				section.HasChanges = true
			}
			section.Lines = append(section.Lines, header)

			for _, line := range compareBullets(orig.Bullets, tail.Bullets) {
				if line.Type != ChangeUnchanged {
					section.HasChanges = true
				}
				section.Lines = append(section.Lines, line)
			}

			// spacer between entries, rendering only
			section.Lines = append(section.Lines, Line{Type: ChangeUnchanged, Content: ""})
		case i < len(original):
			section.HasChanges = true
			section.Lines = append(section.Lines, Line{
				Type:    ChangeRemoved,
				Content: fmt.Sprintf("%s - %s", original[i].Company, original[i].Title),
			})
		default:
			section.HasChanges = true
			section.Lines = append(section.Lines, Line{
				Type:    ChangeAdded,
				Content: fmt.Sprintf("%s - %s", tailored[i].Company, tailored[i].Title),
			})
		}
	}

	return section
}

func diffProjects(original, tailored []types.Project) Section {
	section := Section{Name: "Projects"}

	for i := 0; i < max(len(original), len(tailored)); i++ {
		switch {
		case i < len(original) && i < len(tailored):
			orig, tail := &original[i], &tailored[i]

			name := compareLine(orig.Name, tail.Name)
			if name.Type != ChangeUnchanged {
				section.HasChanges = true
			}
			section.Lines = append(section.Lines, name)

			var desc Line
			if equalNormalized(orig.Description, tail.Description) {
				desc = Line{Type: ChangeUnchanged, Content: "• " + tail.Description}
			} else {
				desc = modifiedLine("• "+orig.Description, "• "+tail.Description, "• "+tail.Description)
				section.HasChanges = true
			}
			section.Lines = append(section.Lines, desc)

			section.Lines = append(section.Lines, Line{Type: ChangeUnchanged, Content: ""})
		case i < len(original):
			section.HasChanges = true
			section.Lines = append(section.Lines, Line{Type: ChangeRemoved, Content: original[i].Name})
		default:
			section.HasChanges = true
			section.Lines = append(section.Lines, Line{Type: ChangeAdded, Content: tailored[i].Name})
		}
	}

	return section
}

func activityHeader(a *types.Activity) string {
	header := fmt.Sprintf("%s | %s", a.Organization, a.Role)
	if a.Start != "" || a.End != "" {
		header += fmt.Sprintf(" (%s – %s)", a.Start, a.End)
	}
	return header
}

func diffActivities(original, tailored []types.Activity) Section {
	section := Section{Name: "Activities"}

	for i := 0; i < max(len(original), len(tailored)); i++ {
		switch {
		case i < len(original) && i < len(tailored):
			orig, tail := &original[i], &tailored[i]

			header := compareLine(activityHeader(orig), activityHeader(tail))
			if header.Type != ChangeUnchanged {
				section.HasChanges = true
			}
			section.Lines = append(section.Lines, header)

			for _, line := range compareBullets(orig.Bullets, tail.Bullets) {
				if line.Type != ChangeUnchanged {
					section.HasChanges = true
				}
				section.Lines = append(section.Lines, line)
			}

			section.Lines = append(section.Lines, Line{Type: ChangeUnchanged, Content: ""})
		case i < len(original):
			section.HasChanges = true
			section.Lines = append(section.Lines, Line{
				Type:    ChangeRemoved,
				Content: fmt.Sprintf("%s - %s", original[i].Organization, original[i].Role),
			})
		default:
			section.HasChanges = true
			section.Lines = append(section.Lines, Line{
				Type:    ChangeAdded,
				Content: fmt.Sprintf("%s - %s", tailored[i].Organization, tailored[i].Role),
			})
		}
	}

	return section
}

func skillGroupLine(g *types.SkillGroup) string {
	return fmt.Sprintf("%s: %s", g.Name, strings.Join(g.Items, ", "))
}

func diffSkills(original, tailored types.Skills) Section {
	section := Section{Name: "Skills"}

	for i := 0; i < max(len(original.Groups), len(tailored.Groups)); i++ {
		switch {
		case i < len(original.Groups) && i < len(tailored.Groups):
			line := compareLine(skillGroupLine(&original.Groups[i]), skillGroupLine(&tailored.Groups[i]))
			if line.Type != ChangeUnchanged {
				section.HasChanges = true
			}
			section.Lines = append(section.Lines, line)
		case i < len(original.Groups):
			section.HasChanges = true
			section.Lines = append(section.Lines, Line{Type: ChangeRemoved, Content: skillGroupLine(&original.Groups[i])})
		default:
			section.HasChanges = true
			section.Lines = append(section.Lines, Line{Type: ChangeAdded, Content: skillGroupLine(&tailored.Groups[i])})
		}
	}

	return section
}
