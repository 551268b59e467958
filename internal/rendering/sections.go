package rendering

import (
	"fmt"
	"strings"

	"github.com/jonathan/talentsync/internal/types"
)

// Section titles as they appear in the rendered document.
const (
	TitleEducation        = "Education"
	TitleSkills           = "Skills"
	TitleExperience       = "Experience"
	TitleProjects         = "Projects"
	TitleRecommendedRoles = "Recommended Roles"
)

// sectionHeader returns the header macro for a section.
// The modern template uses the native \section; professional uses its own macro.
func sectionHeader(title string, modern bool) string {
	if modern {
		return fmt.Sprintf("\\section{%s}\n", title)
	}
	return fmt.Sprintf("\\sectionheader{%s}\n", title)
}

// itemPrefix starts an item whose text is user supplied. The empty group keeps
// a leading "[" from being read as the item's optional label.
const itemPrefix = "  \\item{} "

// itemizeOpen is the list environment shared by every section.
const itemizeOpen = "\\begin{itemize}[leftmargin=*, itemsep=2pt, topsep=2pt]\n"

// EducationSection renders one bullet per education entry.
func EducationSection(entries []types.Education, modern bool) string {
	var items []string
	for _, e := range entries {
		if detail := strings.TrimSpace(e.EducationDetail); detail != "" {
			items = append(items, EscapeLaTeX(detail))
		}
	}
	if len(items) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(sectionHeader(TitleEducation, modern))
	sb.WriteString(itemizeOpen)
	for _, item := range items {
		sb.WriteString(itemPrefix + item + "\n")
	}
	sb.WriteString("\\end{itemize}\n\n")
	return sb.String()
}

// SkillsSection renders one bullet line per non-empty skill bucket plus a
// languages line. It is omitted only when there are neither skills nor languages.
func SkillsSection(skills []types.SkillAnalysis, languages []types.Language, categories []SkillCategory, modern bool) string {
	buckets := categorizeSkills(skills, categories)

	langs := make([]string, 0, len(languages))
	for _, l := range languages {
		langs = append(langs, l.Language)
	}
	langLine := FormatList(langs, true)

	if len(buckets) == 0 && langLine == "" {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(sectionHeader(TitleSkills, modern))
	sb.WriteString(itemizeOpen)
	for _, b := range buckets {
		fmt.Fprintf(&sb, "  \\item \\textbf{%s:} %s\n", EscapeLaTeX(b.Label), FormatList(b.Skills, true))
	}
	if langLine != "" {
		fmt.Fprintf(&sb, "  \\item \\textbf{Languages:} %s\n", langLine)
	}
	sb.WriteString("\\end{itemize}\n\n")
	return sb.String()
}

// ExperienceSection renders one item per position with nested bullet points.
func ExperienceSection(entries []types.WorkExperience, modern bool) string {
	if len(entries) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(sectionHeader(TitleExperience, modern))
	sb.WriteString(itemizeOpen)
	for _, e := range entries {
		role := EscapeLaTeX(SingleLine(e.Role))
		company := EscapeLaTeX(SingleLine(e.CompanyAndDuration))

		switch {
		case role != "" && company != "":
			fmt.Fprintf(&sb, "  \\item \\textbf{%s} -- %s\n", role, company)
		case role != "":
			fmt.Fprintf(&sb, "  \\item \\textbf{%s}\n", role)
		default:
			sb.WriteString(itemPrefix + company + "\n")
		}

		var bullets []string
		for _, b := range e.BulletPoints {
			if b = strings.TrimSpace(b); b != "" {
				bullets = append(bullets, EscapeLaTeX(b))
			}
		}
		if len(bullets) > 0 {
			sb.WriteString("  \\begin{itemize}[leftmargin=1.5em, itemsep=1pt, topsep=1pt]\n")
			for _, b := range bullets {
				sb.WriteString("  " + itemPrefix + b + "\n")
			}
			sb.WriteString("  \\end{itemize}\n")
		}
	}
	sb.WriteString("\\end{itemize}\n\n")
	return sb.String()
}

// ProjectsSection renders a block per project: bold title, italic
// technologies line and a description line.
func ProjectsSection(projects []types.Project, modern bool) string {
	var blocks []string
	for _, p := range projects {
		var lines []string
		if title := EscapeLaTeX(SingleLine(p.Title)); title != "" {
			lines = append(lines, "\\textbf{"+title+"}")
		}
		if tech := FormatList(p.TechnologiesUsed, true); tech != "" {
			lines = append(lines, "\\textit{Technologies: "+tech+"}")
		}
		if desc := strings.TrimSpace(p.Description); desc != "" {
			lines = append(lines, EscapeLaTeX(desc))
		}
		if len(lines) > 0 {
			blocks = append(blocks, strings.Join(lines, "\\\\\n"))
		}
	}
	if len(blocks) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(sectionHeader(TitleProjects, modern))
	for _, block := range blocks {
		sb.WriteString("\\noindent " + block + "\n\\vspace{4pt}\n\n")
	}
	return sb.String()
}

// RecommendedRolesSection renders a single comma-joined bullet line.
func RecommendedRolesSection(roles []string, modern bool) string {
	line := FormatList(roles, true)
	if line == "" {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(sectionHeader(TitleRecommendedRoles, modern))
	sb.WriteString(itemizeOpen)
	sb.WriteString(itemPrefix + line + "\n")
	sb.WriteString("\\end{itemize}\n\n")
	return sb.String()
}
