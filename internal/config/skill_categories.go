package config

import (
	"encoding/json"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/jonathan/talentsync/internal/rendering"
	"github.com/jonathan/talentsync/internal/schemas"
)

// skillCategoriesFile is the TOML layout:
//
//	[[category]]
//	label = "Cloud"
//	keywords = ["aws", "gcp"]
type skillCategoriesFile struct {
	Category []rendering.SkillCategory `json:"category"`
}

// LoadSkillCategories reads skill categories from a TOML file and checks
// them against the embedded skill category schema. Order in the file is
// the matching order. An empty path returns the defaults.
func LoadSkillCategories(path string) ([]rendering.SkillCategory, error) {
	if path == "" {
		return rendering.DefaultSkillCategories(), nil
	}

	var raw map[string]any
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, &Error{Message: fmt.Sprintf("failed to parse skill categories %s", path), Cause: err}
	}

	doc, err := json.Marshal(raw)
	if err != nil {
		return nil, &Error{Message: "failed to encode skill categories", Cause: err}
	}
	if err := schemas.ValidateSkillCategories(doc); err != nil {
		return nil, &Error{Message: fmt.Sprintf("invalid skill categories in %s", path), Cause: err}
	}

	var f skillCategoriesFile
	if err := json.Unmarshal(doc, &f); err != nil {
		return nil, &Error{Message: "failed to decode skill categories", Cause: err}
	}
	return f.Category, nil
}
