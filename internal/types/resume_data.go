// Package types provides type definitions for structured data used throughout the talentsync system.
package types

import "github.com/go-playground/validator/v10"

// ResumeData is the structured resume record produced by resume analysis and
// consumed by the LaTeX generator. Every list may be empty.
type ResumeData struct {
	Name             string           `json:"name" validate:"required"`
	Email            string           `json:"email" validate:"required,email"`
	Contact          string           `json:"contact"`
	PredictedField   string           `json:"predicted_field"`
	SkillsAnalysis   []SkillAnalysis  `json:"skills_analysis"`
	RecommendedRoles []string         `json:"recommended_roles"`
	Languages        []Language       `json:"languages"`
	Education        []Education      `json:"education"`
	WorkExperience   []WorkExperience `json:"work_experience"`
	Projects         []Project        `json:"projects"`
}

// SkillAnalysis is a single skill with its proficiency estimate.
type SkillAnalysis struct {
	SkillName  string  `json:"skill_name"`
	Percentage float64 `json:"percentage"`
}

// Language is a spoken language entry.
type Language struct {
	Language string `json:"language"`
}

// Education is a free-form education entry (degree, school, dates).
type Education struct {
	EducationDetail string `json:"education_detail"`
}

// WorkExperience is one position held by the candidate.
type WorkExperience struct {
	Role               string   `json:"role"`
	CompanyAndDuration string   `json:"company_and_duration"`
	BulletPoints       []string `json:"bullet_points"`
}

// Project is a portfolio project.
type Project struct {
	Title            string   `json:"title"`
	TechnologiesUsed []string `json:"technologies_used"`
	Description      string   `json:"description"`
}

// PDFGenerationRequest wraps resume data with the template id and presentation options.
type PDFGenerationRequest struct {
	ResumeData ResumeData  `json:"resumeData"`
	Template   string      `json:"template,omitempty"`
	Options    *PDFOptions `json:"options,omitempty"`
}

// PDFOptions holds optional presentation settings. Zero values mean "use the template default".
type PDFOptions struct {
	FontSize    int     `json:"fontSize,omitempty" validate:"omitempty,min=8,max=12"`
	Margins     Margins `json:"margins"`
	ColorScheme string  `json:"colorScheme,omitempty"`
}

// Margins are page margins in inches.
type Margins struct {
	Top    float64 `json:"top,omitempty" validate:"gte=0,lte=3"`
	Bottom float64 `json:"bottom,omitempty" validate:"gte=0,lte=3"`
	Left   float64 `json:"left,omitempty" validate:"gte=0,lte=3"`
	Right  float64 `json:"right,omitempty" validate:"gte=0,lte=3"`
}

// Validate validates the request using the validator.
// The generator itself never validates; callers (HTTP handlers, CLI) do.
func (r *PDFGenerationRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
