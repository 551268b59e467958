package observability

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/jonathan/talentsync/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestPrintResumeSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	data := &types.ResumeData{
		Name:           "Jane Doe",
		Email:          "jane@x.com",
		PredictedField: "Data Science",
		SkillsAnalysis: []types.SkillAnalysis{
			{SkillName: "Python", Percentage: 90},
			{SkillName: "SQL", Percentage: 75},
		},
		Education: []types.Education{{EducationDetail: "B.S."}},
	}

	p.PrintResumeSummary(data, "modern")
	output := buf.String()

	assert.Contains(t, output, "RESUME SUMMARY")
	assert.Contains(t, output, "Jane Doe")
	assert.Contains(t, output, "Data Science")
	assert.Contains(t, output, "modern")
	assert.Contains(t, output, "Education: 1")
	assert.Contains(t, output, "Python (90%)")
}

func TestPrintResumeSummary_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintResumeSummary(nil, "professional")
	assert.Empty(t, buf.String())
}

func TestPrintResumeSummary_TruncatesSkills(t *testing.T) {
	var buf bytes.Buffer
	data := &types.ResumeData{Name: "A", Email: "a@b.c"}
	for i := 0; i < 8; i++ {
		data.SkillsAnalysis = append(data.SkillsAnalysis, types.SkillAnalysis{SkillName: fmt.Sprintf("skill-%d", i)})
	}

	NewPrinter(&buf).PrintResumeSummary(data, "professional")

	assert.Contains(t, buf.String(), "... and 3 more")
	assert.NotContains(t, buf.String(), "skill-7")
}

func TestPrintCompileSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintCompileSummary("out.pdf", 2048, 1, true)
	assert.Contains(t, buf.String(), "PDF COMPILED")
	assert.Contains(t, buf.String(), "2048 bytes")
	assert.Contains(t, buf.String(), "Pages:   1")
	assert.Contains(t, buf.String(), "cache")

	buf.Reset()
	p.PrintCompileSummary("out.pdf", 10, 0, false)
	assert.Contains(t, buf.String(), "unknown")
	assert.Contains(t, buf.String(), "compiled")
}

func TestPrintCompileFailure(t *testing.T) {
	var buf bytes.Buffer
	log := strings.Repeat("noise\n", 20) + "! Undefined control sequence.\nl.12 \\foo\n"

	NewPrinter(&buf).PrintCompileFailure("LaTeX compilation failed", log)

	assert.Contains(t, buf.String(), "COMPILATION FAILED")
	assert.Contains(t, buf.String(), "Undefined control sequence")
	assert.Equal(t, 8, strings.Count(buf.String(), "noise"))
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).printBox("T", strings.Repeat("x", 100))
	assert.Contains(t, buf.String(), "...")
	assert.NotContains(t, buf.String(), strings.Repeat("x", 60))
}
