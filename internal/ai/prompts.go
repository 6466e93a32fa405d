package ai

// SystemPrompts contains all system-level instructions for AI interactions
type SystemPrompts struct {
	Tailor  string
	Extract string
	Parse   string
}

// UserPrompts contains user-level prompts with placeholders for dynamic content
type UserPrompts struct {
	Tailor  string
	Extract string
	Parse   string
}

// DefaultSystemPrompts provides the default system instructions
var DefaultSystemPrompts = SystemPrompts{
	Tailor: `You are a resume editor. Your job is to tailor an existing resume to match job requirements.

CRITICAL RULES (DO NOT VIOLATE):
1. NEVER invent new companies, dates, degrees, or certifications
2. NEVER add achievements that weren't in the original resume
3. ONLY rewrite existing bullet points to emphasize relevant skills and achievements
4. NEVER add, remove, or reorder entries in any section
5. You can modify the summary to emphasize relevant skills
6. You can add keywords to existing bullets, but only if they accurately describe the work
7. Never produce more bullets for an entry than the original entry has
8. If skills are missing, note them in the gap report, NOT in the resume body

You must return a single JSON object with three keys:
1. tailoredResume: the edited resume, same structure as the base
2. keywordDiff: { added: [], removed: [], emphasized: [] }
3. gapReport: { missingKeywords: [], matchedSkills: [], missingSkills: [], coverageScore: 0-100, suggestions: [] }`,

	Extract: `You are a job description analyzer. Extract structured requirements from job postings.
Output ONLY valid JSON matching the schema. Do not infer requirements that are not stated or clearly implied by the posting.`,

	Parse: `You are a resume parser. Convert raw resume text into structured JSON.
Preserve ALL information exactly as provided. Do not add, remove, or modify any facts.`,
}

// DefaultUserPrompts provides the default user prompt templates
var DefaultUserPrompts = UserPrompts{
	Tailor: `Tailor this resume to match these job requirements.

**Base Resume:**
-----
%s
-----

**Job Requirements:**
-----
%s
-----

Return a JSON object with three keys:
- tailoredResume: the edited resume (same structure and same entry counts as the base)
- keywordDiff: keywords added/removed/emphasized relative to the base resume
- gapReport: analysis of missing requirements and suggestions`,

	Extract: `Extract job requirements from this job description:

-----
%s
-----

Return a JSON object with:
- mustHaveSkills: array of required technical skills
- preferredSkills: array of nice-to-have skills
- responsibilities: array of key responsibilities
- keywords: array of important keywords and phrases
- roleCategory: one of "backend", "frontend", "fullstack", "ml", "devops", "mobile", "other"
- seniorityLevel: "junior", "mid", "senior", "lead", or empty
- hardRequirements: array of must-have qualifications
- softRequirements: array of preferred qualifications`,

	Parse: `Parse this resume text into structured JSON:

-----
%s
-----

Return a JSON object matching the resume schema. Preserve all dates, companies, titles, and achievements exactly as written.`,
}

// PromptConfig holds configuration for customizable prompts
type PromptConfig struct {
	SystemPrompts SystemPrompts `json:"systemPrompts"`
	UserPrompts   UserPrompts   `json:"userPrompts"`
}

// GetDefaultPromptConfig returns the default prompt configuration
func GetDefaultPromptConfig() PromptConfig {
	return PromptConfig{
		SystemPrompts: DefaultSystemPrompts,
		UserPrompts:   DefaultUserPrompts,
	}
}
