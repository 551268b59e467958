package types

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPDFGenerationRequest_JSONUnmarshaling(t *testing.T) {
	jsonInput := `{
		"resumeData": {
			"name": "Jane Doe",
			"email": "jane@x.com",
			"contact": "555-0100",
			"predicted_field": "Data Science",
			"skills_analysis": [{"skill_name": "Python", "percentage": 85}],
			"recommended_roles": ["Data Analyst"],
			"languages": [{"language": "English"}],
			"education": [{"education_detail": "B.S. Computer Science"}],
			"work_experience": [{"role": "Analyst", "company_and_duration": "Acme 2021", "bullet_points": ["Built dashboards"]}],
			"projects": [{"title": "Churn model", "technologies_used": ["sklearn"], "description": "Predicts churn"}]
		},
		"template": "modern",
		"options": {"fontSize": 11, "margins": {"top": 1, "left": 0.5}, "colorScheme": "blue"}
	}`

	var req PDFGenerationRequest
	err := json.Unmarshal([]byte(jsonInput), &req)
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", req.ResumeData.Name)
	assert.Equal(t, "Data Science", req.ResumeData.PredictedField)
	require.Len(t, req.ResumeData.SkillsAnalysis, 1)
	assert.Equal(t, "Python", req.ResumeData.SkillsAnalysis[0].SkillName)
	assert.InDelta(t, 85.0, req.ResumeData.SkillsAnalysis[0].Percentage, 0.001)
	assert.Equal(t, "Acme 2021", req.ResumeData.WorkExperience[0].CompanyAndDuration)
	assert.Equal(t, []string{"sklearn"}, req.ResumeData.Projects[0].TechnologiesUsed)
	assert.Equal(t, "modern", req.Template)
	require.NotNil(t, req.Options)
	assert.Equal(t, 11, req.Options.FontSize)
	assert.InDelta(t, 1.0, req.Options.Margins.Top, 0.001)
	assert.InDelta(t, 0.0, req.Options.Margins.Bottom, 0.001)
	assert.Equal(t, "blue", req.Options.ColorScheme)
}

func TestPDFGenerationRequest_Validate(t *testing.T) {
	valid := func() PDFGenerationRequest {
		return PDFGenerationRequest{ResumeData: ResumeData{Name: "Jane Doe", Email: "jane@x.com"}}
	}

	tests := []struct {
		name      string
		mutate    func(*PDFGenerationRequest)
		wantField string
	}{
		{name: "minimal", mutate: func(*PDFGenerationRequest) {}},
		{name: "missing name", mutate: func(r *PDFGenerationRequest) { r.ResumeData.Name = "" }, wantField: "Name"},
		{name: "missing email", mutate: func(r *PDFGenerationRequest) { r.ResumeData.Email = "" }, wantField: "Email"},
		{name: "bad email", mutate: func(r *PDFGenerationRequest) { r.ResumeData.Email = "not-an-email" }, wantField: "Email"},
		{name: "font too small", mutate: func(r *PDFGenerationRequest) { r.Options = &PDFOptions{FontSize: 7} }, wantField: "FontSize"},
		{name: "font too large", mutate: func(r *PDFGenerationRequest) { r.Options = &PDFOptions{FontSize: 13} }, wantField: "FontSize"},
		{name: "font in range", mutate: func(r *PDFGenerationRequest) { r.Options = &PDFOptions{FontSize: 8} }},
		{name: "margin too large", mutate: func(r *PDFGenerationRequest) { r.Options = &PDFOptions{Margins: Margins{Left: 3.5}} }, wantField: "Left"},
		{name: "negative margin", mutate: func(r *PDFGenerationRequest) { r.Options = &PDFOptions{Margins: Margins{Top: -1}} }, wantField: "Top"},
		{name: "unknown scheme and template accepted", mutate: func(r *PDFGenerationRequest) {
			r.Template = "fancy"
			r.Options = &PDFOptions{ColorScheme: "purple"}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(&req)
			err := req.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Equal(t, tt.wantField, verrs[0].Field())
		})
	}
}
