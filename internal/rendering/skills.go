package rendering

import (
	"strings"

	"github.com/jonathan/talentsync/internal/types"
)

// SkillCategory groups skills whose names contain one of Keywords
// (case-insensitive substring match).
type SkillCategory struct {
	Label    string   `toml:"label"`
	Keywords []string `toml:"keywords"`
}

// otherSkillsLabel is the bucket for skills matching no category.
const otherSkillsLabel = "Other Skills"

// DefaultSkillCategories returns the built-in programming and tooling keyword lists.
func DefaultSkillCategories() []SkillCategory {
	return []SkillCategory{
		{
			Label: "Programming & Frameworks",
			Keywords: []string{
				"javascript", "typescript", "python", "java", "c++", "c#", "golang",
				"rust", "ruby", "php", "swift", "kotlin", "scala", "html", "css",
				"sql", "react", "angular", "vue", "node", "next.js", "express",
				"django", "flask", "fastapi", "spring", ".net", "tensorflow",
				"pytorch", "pandas", "numpy", "scikit",
			},
		},
		{
			Label: "Tools & Technologies",
			Keywords: []string{
				"git", "docker", "kubernetes", "aws", "azure", "gcp", "jenkins",
				"terraform", "ansible", "linux", "jira", "figma", "postgres",
				"mysql", "mongodb", "redis", "kafka", "graphql", "firebase",
				"tableau", "excel", "power bi", "ci/cd",
			},
		},
	}
}

// skillBucket is one rendered line of the skills section.
type skillBucket struct {
	Label  string
	Skills []string
}

// categorizeSkills partitions skills into the given categories in order.
// A skill lands in the first category with a matching keyword; the rest go to
// a trailing "Other Skills" bucket. Empty buckets are dropped.
func categorizeSkills(skills []types.SkillAnalysis, categories []SkillCategory) []skillBucket {
	buckets := make([]skillBucket, len(categories)+1)
	for i, c := range categories {
		buckets[i].Label = c.Label
	}
	buckets[len(categories)].Label = otherSkillsLabel

	for _, skill := range skills {
		name := strings.TrimSpace(skill.SkillName)
		if name == "" {
			continue
		}
		idx := matchCategory(name, categories)
		if idx < 0 {
			idx = len(categories)
		}
		buckets[idx].Skills = append(buckets[idx].Skills, name)
	}

	out := buckets[:0]
	for _, b := range buckets {
		if len(b.Skills) > 0 {
			out = append(out, b)
		}
	}
	return out
}

func matchCategory(skill string, categories []SkillCategory) int {
	lower := strings.ToLower(skill)
	for i, c := range categories {
		for _, kw := range c.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" && strings.Contains(lower, kw) {
				return i
			}
		}
	}
	return -1
}
