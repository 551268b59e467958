package rendering

import (
	"github.com/jonathan/talentsync/internal/types"
)

// Generator renders complete LaTeX documents. It holds the skill categories
// used to group the skills section and is safe for concurrent use.
type Generator struct {
	categories []SkillCategory
}

// NewGenerator returns a Generator using the given skill categories.
// A nil or empty slice selects DefaultSkillCategories.
func NewGenerator(categories []SkillCategory) *Generator {
	if len(categories) == 0 {
		categories = DefaultSkillCategories()
	}
	cp := make([]SkillCategory, len(categories))
	copy(cp, categories)
	return &Generator{categories: cp}
}

// Categories returns a copy of the generator's skill categories.
func (g *Generator) Categories() []SkillCategory {
	cp := make([]SkillCategory, len(g.categories))
	copy(cp, g.categories)
	return cp
}

// Generate renders the request into a complete LaTeX document.
// The template id selects the layout (unknown ids fall back to professional);
// missing options take their defaults. The output is deterministic.
func (g *Generator) Generate(req *types.PDFGenerationRequest) string {
	if req == nil {
		req = &types.PDFGenerationRequest{}
	}
	tmpl := SelectTemplate(req.Template)
	return tmpl.render(&req.ResumeData, resolveOptions(req.Options), g.categories)
}

var defaultGenerator = NewGenerator(nil)

// GenerateLatexDocument renders req with the default skill categories.
func GenerateLatexDocument(req *types.PDFGenerationRequest) string {
	return defaultGenerator.Generate(req)
}
