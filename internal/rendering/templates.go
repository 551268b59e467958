package rendering

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jonathan/talentsync/internal/types"
)

// Template ids.
const (
	TemplateProfessional = "professional"
	TemplateModern       = "modern"
)

// Option defaults for the professional template.
const (
	DefaultFontSize = 10
	DefaultMargin   = 0.75
)

// Fixed settings of the modern template.
const (
	modernFontSize = 11
	modernMargin   = 0.6
)

// Template is a named document layout. Templates are fixed at build time.
type Template struct {
	ID     string
	Name   string
	render func(data *types.ResumeData, opts resolvedOptions, categories []SkillCategory) string
}

// TemplateInfo is the public description of a template.
type TemplateInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// templates is ordered; the first entry is the fallback.
var templates = [...]Template{
	{ID: TemplateProfessional, Name: "Professional", render: renderProfessional},
	{ID: TemplateModern, Name: "Modern", render: renderModern},
}

// SelectTemplate returns the template with the given id, or the first
// (professional) template when id is empty or unknown.
func SelectTemplate(id string) Template {
	for _, t := range templates {
		if t.ID == id {
			return t
		}
	}
	return templates[0]
}

// ListTemplates returns the available templates in registry order.
func ListTemplates() []TemplateInfo {
	out := make([]TemplateInfo, 0, len(templates))
	for _, t := range templates {
		out = append(out, TemplateInfo{ID: t.ID, Name: t.Name})
	}
	return out
}

// resolvedOptions has every option filled in.
type resolvedOptions struct {
	FontSize    int
	Margins     types.Margins
	ColorScheme string
}

// resolveOptions applies defaults to each option independently.
func resolveOptions(o *types.PDFOptions) resolvedOptions {
	r := resolvedOptions{
		FontSize: DefaultFontSize,
		Margins: types.Margins{
			Top:    DefaultMargin,
			Bottom: DefaultMargin,
			Left:   DefaultMargin,
			Right:  DefaultMargin,
		},
		ColorScheme: DefaultColorScheme,
	}
	if o == nil {
		return r
	}
	if o.FontSize > 0 {
		r.FontSize = o.FontSize
	}
	if o.Margins.Top > 0 {
		r.Margins.Top = o.Margins.Top
	}
	if o.Margins.Bottom > 0 {
		r.Margins.Bottom = o.Margins.Bottom
	}
	if o.Margins.Left > 0 {
		r.Margins.Left = o.Margins.Left
	}
	if o.Margins.Right > 0 {
		r.Margins.Right = o.Margins.Right
	}
	if o.ColorScheme != "" {
		r.ColorScheme = o.ColorScheme
	}
	return r
}

func inches(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "in"
}

// documentClass picks extarticle for sizes the standard article class lacks.
func documentClass(fontSize int) string {
	class := "article"
	if fontSize < 10 {
		class = "extarticle"
	}
	return fmt.Sprintf("\\documentclass[%dpt,letterpaper]{%s}\n", fontSize, class)
}

const commonPackages = `\usepackage[utf8]{inputenc}
\usepackage[T1]{fontenc}
\usepackage{lmodern}
`

func professionalPreamble(opts resolvedOptions) string {
	var sb strings.Builder
	sb.WriteString(documentClass(opts.FontSize))
	sb.WriteString(commonPackages)
	fmt.Fprintf(&sb, "\\usepackage[top=%s,bottom=%s,left=%s,right=%s]{geometry}\n",
		inches(opts.Margins.Top), inches(opts.Margins.Bottom), inches(opts.Margins.Left), inches(opts.Margins.Right))
	sb.WriteString("\\usepackage{xcolor}\n")
	sb.WriteString("\\usepackage{enumitem}\n")
	sb.WriteString("\\pagestyle{empty}\n")
	sb.WriteString("\\setlength{\\parindent}{0pt}\n\n")
	sb.WriteString(colorDefinitions(PaletteFor(opts.ColorScheme)))
	sb.WriteString(`
\newcommand{\sectionheader}[1]{%
  \vspace{8pt}%
  {\large\bfseries\color{primary}#1}\par\vspace{-4pt}%
  {\color{accent}\rule{\linewidth}{0.8pt}}\par\vspace{2pt}%
}

\begin{document}

`)
	return sb.String()
}

func modernPreamble() string {
	var sb strings.Builder
	sb.WriteString(documentClass(modernFontSize))
	sb.WriteString(commonPackages)
	fmt.Fprintf(&sb, "\\usepackage[margin=%s]{geometry}\n", inches(modernMargin))
	sb.WriteString("\\usepackage{xcolor}\n")
	sb.WriteString("\\usepackage{enumitem}\n")
	sb.WriteString("\\usepackage{fontawesome5}\n")
	sb.WriteString("\\usepackage{titlesec}\n")
	sb.WriteString("\\pagestyle{empty}\n")
	sb.WriteString("\\setlength{\\parindent}{0pt}\n")
	sb.WriteString("\\setcounter{secnumdepth}{0}\n\n")
	sb.WriteString(colorDefinitions(modernPalette))
	sb.WriteString(`
\titleformat{\section}{\Large\bfseries\color{primary}}{}{0em}{}[{\color{primary}\titlerule}]
\titlespacing*{\section}{0pt}{10pt}{6pt}

\begin{document}

`)
	return sb.String()
}

// contactLine joins the non-empty parts with sep.
func contactLine(sep string, parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

func professionalHeader(data *types.ResumeData) string {
	var sb strings.Builder
	sb.WriteString("\\begin{center}\n")
	fmt.Fprintf(&sb, "  {\\LARGE\\bfseries\\color{primary} %s}", EscapeLaTeX(SingleLine(data.Name)))

	contact := contactLine(" \\textbar{} ",
		EscapeLaTeX(SingleLine(data.Email)),
		EscapeLaTeX(SingleLine(data.Contact)))
	if contact != "" {
		fmt.Fprintf(&sb, "\\\\[4pt]\n  {\\color{secondary} %s}", contact)
	}
	if field := EscapeLaTeX(SingleLine(data.PredictedField)); field != "" {
		fmt.Fprintf(&sb, "\\\\[2pt]\n  {\\small\\itshape\\color{secondary} %s}", field)
	}
	sb.WriteString("\n\\end{center}\n\n")
	return sb.String()
}

func modernHeader(data *types.ResumeData) string {
	var sb strings.Builder
	sb.WriteString("\\begin{center}\n")
	fmt.Fprintf(&sb, "  {\\Huge\\bfseries\\color{primary} %s}", EscapeLaTeX(SingleLine(data.Name)))

	var email, phone string
	if v := EscapeLaTeX(SingleLine(data.Email)); v != "" {
		email = "\\faEnvelope\\ " + v
	}
	if v := EscapeLaTeX(SingleLine(data.Contact)); v != "" {
		phone = "\\faPhone\\ " + v
	}
	if contact := contactLine(" \\quad ", email, phone); contact != "" {
		fmt.Fprintf(&sb, "\\\\[6pt]\n  {\\color{secondary} %s}", contact)
	}
	if field := EscapeLaTeX(SingleLine(data.PredictedField)); field != "" {
		fmt.Fprintf(&sb, "\\\\[2pt]\n  {\\color{accent}\\itshape %s}", field)
	}
	sb.WriteString("\n\\end{center}\n\n")
	return sb.String()
}

func renderProfessional(data *types.ResumeData, opts resolvedOptions, categories []SkillCategory) string {
	var sb strings.Builder
	sb.WriteString(professionalPreamble(opts))
	sb.WriteString(professionalHeader(data))
	sb.WriteString(EducationSection(data.Education, false))
	sb.WriteString(SkillsSection(data.SkillsAnalysis, data.Languages, categories, false))
	sb.WriteString(ExperienceSection(data.WorkExperience, false))
	sb.WriteString(ProjectsSection(data.Projects, false))
	sb.WriteString(RecommendedRolesSection(data.RecommendedRoles, false))
	sb.WriteString("\\end{document}\n")
	return sb.String()
}

// renderModern ignores the caller's options: size, margins and colors are fixed.
func renderModern(data *types.ResumeData, _ resolvedOptions, categories []SkillCategory) string {
	var sb strings.Builder
	sb.WriteString(modernPreamble())
	sb.WriteString(modernHeader(data))
	sb.WriteString(EducationSection(data.Education, true))
	sb.WriteString(SkillsSection(data.SkillsAnalysis, data.Languages, categories, true))
	sb.WriteString(ExperienceSection(data.WorkExperience, true))
	sb.WriteString(ProjectsSection(data.Projects, true))
	sb.WriteString("\\end{document}\n")
	return sb.String()
}
