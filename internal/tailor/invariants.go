package tailor

import (
	"fmt"

	"resumetailor/internal/diff"
	"resumetailor/internal/errors"
	"resumetailor/internal/types"
)

// validateTailoredResume rejects backend output that grew any section or
// changed a factual identifier. Comparison is on normalized strings so a
// cosmetic quote or whitespace difference is not treated as fabrication.
func validateTailoredResume(base, tailored *types.ResumeJSON) error {
	if err := validateParity(base, tailored); err != nil {
		return err
	}
	return validateFacts(base, tailored)
}

// validateParity enforces equal entry counts per section and bullet counts
// that do not exceed the original.
func validateParity(base, tailored *types.ResumeJSON) error {
	counts := []struct {
		section  string
		base     int
		tailored int
	}{
		{"education", len(base.Education), len(tailored.Education)},
		{"experience", len(base.Experience), len(tailored.Experience)},
		{"projects", len(base.Projects), len(tailored.Projects)},
		{"activities", len(base.Activities), len(tailored.Activities)},
		{"certifications", len(base.Certifications), len(tailored.Certifications)},
		{"languages", len(base.Languages), len(tailored.Languages)},
		{"skill groups", len(base.Skills.Groups), len(tailored.Skills.Groups)},
	}

	for _, c := range counts {
		if c.base != c.tailored {
			return parityError(fmt.Sprintf("%s entry count changed from %d to %d",
				c.section, c.base, c.tailored))
		}
	}

	for i := range base.Experience {
		if len(tailored.Experience[i].Bullets) > len(base.Experience[i].Bullets) {
			return parityError(fmt.Sprintf("experience entry %d bullet count grew from %d to %d",
				i, len(base.Experience[i].Bullets), len(tailored.Experience[i].Bullets)))
		}
	}
	for i := range base.Activities {
		if len(tailored.Activities[i].Bullets) > len(base.Activities[i].Bullets) {
			return parityError(fmt.Sprintf("activity entry %d bullet count grew from %d to %d",
				i, len(base.Activities[i].Bullets), len(tailored.Activities[i].Bullets)))
		}
	}

	return nil
}

// validateFacts enforces that organizations, institutions, titles, degrees,
// and date ranges survive tailoring unchanged, in order.
func validateFacts(base, tailored *types.ResumeJSON) error {
	for i := range base.Experience {
		b, t := base.Experience[i], tailored.Experience[i]
		if err := sameFacts(fmt.Sprintf("experience entry %d", i), [][2]string{
			{b.Company, t.Company},
			{b.Title, t.Title},
			{b.Start, t.Start},
			{b.End, t.End},
		}); err != nil {
			return err
		}
	}

	for i := range base.Education {
		b, t := base.Education[i], tailored.Education[i]
		if err := sameFacts(fmt.Sprintf("education entry %d", i), [][2]string{
			{b.Institution, t.Institution},
			{b.Degree, t.Degree},
			{b.Start, t.Start},
			{b.End, t.End},
		}); err != nil {
			return err
		}
	}

	for i := range base.Projects {
		if !equalNormalized(base.Projects[i].Name, tailored.Projects[i].Name) {
			return factError(fmt.Sprintf("project entry %d name changed from %q to %q",
				i, base.Projects[i].Name, tailored.Projects[i].Name))
		}
	}

	for i := range base.Activities {
		b, t := base.Activities[i], tailored.Activities[i]
		if err := sameFacts(fmt.Sprintf("activity entry %d", i), [][2]string{
			{b.Organization, t.Organization},
			{b.Role, t.Role},
			{b.Start, t.Start},
			{b.End, t.End},
		}); err != nil {
			return err
		}
	}

	for i := range base.Certifications {
		b, t := base.Certifications[i], tailored.Certifications[i]
		if err := sameFacts(fmt.Sprintf("certification entry %d", i), [][2]string{
			{b.Name, t.Name},
			{b.Issuer, t.Issuer},
			{b.Date, t.Date},
		}); err != nil {
			return err
		}
	}

	return nil
}

func sameFacts(where string, pairs [][2]string) error {
	for _, p := range pairs {
		if !equalNormalized(p[0], p[1]) {
			return factError(fmt.Sprintf("%s changed %q to %q", where, p[0], p[1]))
		}
	}
	return nil
}

func equalNormalized(a, b string) bool {
	return diff.Normalize(a) == diff.Normalize(b)
}

func parityError(detail string) *errors.AppError {
	return errors.NewTailoringInvalidError(errors.CodeStructuralParity,
		"Tailoring output violates structural parity", nil).
		WithContext("detail", detail)
}

func factError(detail string) *errors.AppError {
	return errors.NewTailoringInvalidError(errors.CodeFabricatedFacts,
		"Tailoring output altered factual identifiers", nil).
		WithContext("detail", detail)
}
