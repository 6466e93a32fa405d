package types

// Link is a labeled URL in the resume header
type Link struct {
	Type string `json:"type"` // "LinkedIn", "GitHub", "Portfolio", etc.
	URL  string `json:"url"`
}

// Header holds contact information and links
type Header struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	Links    []Link `json:"links"`
}

// StudyAbroad is an optional sub-record of an education entry
type StudyAbroad struct {
	Institution string `json:"institution"`
	Location    string `json:"location"`
	Program     string `json:"program"`
	Start       string `json:"start"`
	End         string `json:"end"`
}

// Education is one education entry, kept in display order
type Education struct {
	Institution string       `json:"institution"`
	Degree      string       `json:"degree"`
	Field       string       `json:"field,omitempty"`
	Location    string       `json:"location,omitempty"`
	Start       string       `json:"start,omitempty"`
	End         string       `json:"end,omitempty"`
	GPA         string       `json:"gpa,omitempty"`
	Honors      string       `json:"honors,omitempty"` // e.g. "Dean's List 2015-2016"
	Coursework  []string     `json:"coursework,omitempty"`
	StudyAbroad *StudyAbroad `json:"studyAbroad,omitempty"`
}

// Experience is one work experience entry
type Experience struct {
	Company      string   `json:"company"`
	Title        string   `json:"title"`
	Location     string   `json:"location"`
	Start        string   `json:"start"` // YYYY-MM or "Jun 2017"
	End          string   `json:"end"`   // YYYY-MM or "Present"
	Bullets      []string `json:"bullets"`
	Technologies []string `json:"technologies"`
}

// Project is one project entry
type Project struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	URL          string   `json:"url,omitempty"`
	Date         string   `json:"date,omitempty"`        // e.g. "Feb 2017"
	Achievement  string   `json:"achievement,omitempty"` // e.g. "First Prize among 100 teams"
}

// Activity is one extracurricular entry
type Activity struct {
	Organization string   `json:"organization"`
	Role         string   `json:"role"`
	Start        string   `json:"start,omitempty"`
	End          string   `json:"end,omitempty"`
	Bullets      []string `json:"bullets"`
}

// SkillGroup is a named, ordered list of skills. Group order and item order
// are meaningful: earlier items are assumed more prominent.
type SkillGroup struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

// Skills wraps the ordered skill groups
type Skills struct {
	Groups []SkillGroup `json:"groups"`
}

// Language is a spoken language with a display proficiency string
type Language struct {
	Name        string `json:"name"`
	Proficiency string `json:"proficiency"` // "Native", "Fluent", "Conversational", "Basic"
}

// Certification is one certification entry
type Certification struct {
	Name   string `json:"name"`
	Issuer string `json:"issuer"`
	Date   string `json:"date,omitempty"`
	Expiry string `json:"expiry,omitempty"`
	URL    string `json:"url,omitempty"`
}

// ResumeJSON is the canonical snapshot of a resume at a point in time.
// All other components read and write this shape exclusively.
type ResumeJSON struct {
	Header         Header          `json:"header"`
	Summary        string          `json:"summary,omitempty"`
	Education      []Education     `json:"education"`
	Experience     []Experience    `json:"experience"`
	Projects       []Project       `json:"projects"`
	Activities     []Activity      `json:"activities"`
	Skills         Skills          `json:"skills"`
	Languages      []Language      `json:"languages"`
	Certifications []Certification `json:"certifications"`
}

// JobRequirements is the structured extraction of a job posting.
// Read-only once produced; consumed by the tailoring engine.
type JobRequirements struct {
	MustHaveSkills   []string `json:"mustHaveSkills"`
	PreferredSkills  []string `json:"preferredSkills"`
	Responsibilities []string `json:"responsibilities"`
	Keywords         []string `json:"keywords"`
	RoleCategory     string   `json:"roleCategory"`             // "backend", "frontend", "ml", "devops", etc.
	SeniorityLevel   string   `json:"seniorityLevel,omitempty"` // "junior", "mid", "senior", "lead"
	HardRequirements []string `json:"hardRequirements"`
	SoftRequirements []string `json:"softRequirements"`
}

// ATSKeywordDiff classifies requirement keywords by how tailoring affected them
type ATSKeywordDiff struct {
	Added      []string `json:"added"`      // in tailored text, not in original
	Removed    []string `json:"removed"`    // in original text, not in tailored
	Emphasized []string `json:"emphasized"` // in both, with more prominence after tailoring
}

// ATSGapReport describes which requirements the resume does not demonstrably meet
type ATSGapReport struct {
	MissingKeywords []string `json:"missingKeywords"`
	MatchedSkills   []string `json:"matchedSkills"`
	MissingSkills   []string `json:"missingSkills"`
	CoverageScore   int      `json:"coverageScore"` // 0-100
	Suggestions     []string `json:"suggestions"`
}

// TailorResult is the full output of one tailoring invocation
type TailorResult struct {
	TailoredResume ResumeJSON     `json:"tailoredResume"`
	KeywordDiff    ATSKeywordDiff `json:"keywordDiff"`
	GapReport      ATSGapReport   `json:"gapReport"`
}

// TailoredResume is the persisted artifact for one (user, job) pair. At most
// one live record exists per pair; regeneration deletes before creating.
type TailoredResume struct {
	ID                 string         `json:"id"`
	UserID             string         `json:"userId"`
	JobID              string         `json:"jobId"`
	OriginalResumeJSON ResumeJSON     `json:"originalResumeJson"`
	TailoredResumeJSON ResumeJSON     `json:"tailoredResumeJson"`
	ATSKeywordDiff     ATSKeywordDiff `json:"atsKeywordDiff"`
	ATSGapReport       ATSGapReport   `json:"atsGapReport"`
	CreatedAt          string         `json:"createdAt"`
}

// ProfileExperience is an experience entry as stored on a profile. The
// current flag maps to the "Present" end sentinel at projection time.
type ProfileExperience struct {
	Company      string   `json:"company"`
	Title        string   `json:"title"`
	Location     string   `json:"location"`
	Start        string   `json:"start"`
	End          string   `json:"end"`
	Current      bool     `json:"current"`
	Bullets      []string `json:"bullets"`
	Technologies []string `json:"technologies"`
}

// UserProfile is the long-lived career record, one per user. It is a
// superset of ResumeJSON plus identity and upload provenance fields.
type UserProfile struct {
	ID     string `json:"id,omitempty"`
	UserID string `json:"userId,omitempty"`

	FullName     string `json:"fullName"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Location     string `json:"location"`
	LinkedInURL  string `json:"linkedinUrl,omitempty"`
	GitHubURL    string `json:"githubUrl,omitempty"`
	PortfolioURL string `json:"portfolioUrl,omitempty"`
	OtherLinks   []Link `json:"otherLinks"`

	Summary string `json:"summary"`

	Skills         []SkillGroup        `json:"skills"`
	Experience     []ProfileExperience `json:"experience"`
	Education      []Education         `json:"education"`
	Projects       []Project           `json:"projects"`
	Activities     []Activity          `json:"activities"`
	Languages      []Language          `json:"languages"`
	Certifications []Certification     `json:"certifications"`

	UploadedFileName string `json:"uploadedFileName,omitempty"`
	UploadedFileType string `json:"uploadedFileType,omitempty"`
	UploadedAt       string `json:"uploadedAt,omitempty"`

	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}
