package profile

import (
	"resumetailor/internal/types"
)

// ToResume projects a long-lived user profile into a point-in-time
// ResumeJSON snapshot. It is a pure field remapping with no tailoring
// involved: list fields copy through in order, header links are synthesized
// ahead of any other links in LinkedIn, GitHub, Portfolio order, and
// current positions map their end date to the "Present" sentinel. The
// function is total over any structurally valid profile.
func ToResume(p *types.UserProfile) types.ResumeJSON {
	links := make([]types.Link, 0, len(p.OtherLinks)+3)
	if p.LinkedInURL != "" {
		links = append(links, types.Link{Type: "LinkedIn", URL: p.LinkedInURL})
	}
	if p.GitHubURL != "" {
		links = append(links, types.Link{Type: "GitHub", URL: p.GitHubURL})
	}
	if p.PortfolioURL != "" {
		links = append(links, types.Link{Type: "Portfolio", URL: p.PortfolioURL})
	}
	links = append(links, p.OtherLinks...)

	experience := make([]types.Experience, len(p.Experience))
	for i, exp := range p.Experience {
		end := exp.End
		if exp.Current {
			end = "Present"
		}
		experience[i] = types.Experience{
			Company:      exp.Company,
			Title:        exp.Title,
			Location:     exp.Location,
			Start:        exp.Start,
			End:          end,
			Bullets:      exp.Bullets,
			Technologies: exp.Technologies,
		}
	}

	resume := types.ResumeJSON{
		Header: types.Header{
			Name:     p.FullName,
			Email:    p.Email,
			Phone:    p.Phone,
			Location: p.Location,
			Links:    links,
		},
		Summary:        p.Summary,
		Education:      append([]types.Education{}, p.Education...),
		Experience:     experience,
		Projects:       append([]types.Project{}, p.Projects...),
		Activities:     append([]types.Activity{}, p.Activities...),
		Skills:         types.Skills{Groups: append([]types.SkillGroup{}, p.Skills...)},
		Languages:      append([]types.Language{}, p.Languages...),
		Certifications: append([]types.Certification{}, p.Certifications...),
	}
	resume.Normalize()
	return resume
}
