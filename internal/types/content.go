package types

// ResumeContent is the canonical validated representation of a generated
// resume. Instances are immutable once accepted by the workflow; rejection
// loops supersede them with new instances rather than mutating in place.
type ResumeContent struct {
	ProfessionalSummary string            `json:"professionalSummary"`
	Experience          []ExperienceEntry `json:"experience"`
	Skills              []SkillCategory   `json:"skills"`
	Projects            []ProjectEntry    `json:"projects"`
	Education           []EducationEntry  `json:"education"`
}

// ExperienceEntry is a single work-history entry.
type ExperienceEntry struct {
	Company      string   `json:"company"`
	Role         string   `json:"role"`
	Location     string   `json:"location"`
	StartDate    string   `json:"startDate"`
	EndDate      *string  `json:"endDate"` // nil means present
	Highlights   []string `json:"highlights"`
	Technologies []string `json:"technologies"`
}

// SkillCategory groups related skills under a heading.
type SkillCategory struct {
	Category string   `json:"category"`
	Items    []string `json:"items"`
}

// ProjectEntry is a single portfolio project.
type ProjectEntry struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	Highlights   []string `json:"highlights"`
}

// EducationEntry is a single education record.
type EducationEntry struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Location    string `json:"location"`
}

// CoverLetterContent is the canonical validated representation of a generated
// cover letter.
type CoverLetterContent struct {
	Greeting       string   `json:"greeting"`
	BodyParagraphs []string `json:"bodyParagraphs"`
	Closing        string   `json:"closing"`
	Signature      string   `json:"signature"`
}
