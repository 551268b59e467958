// Package schemas holds the JSON Schemas for the service's input documents.
package schemas

import (
	"embed"
	"io/fs"
)

// Schema file names.
const (
	PDFGenerationRequestFile = "pdf_generation_request.schema.json"
	SkillCategoriesFile      = "skill_categories.schema.json"
)

//go:embed *.schema.json
var files embed.FS

// FS returns the embedded schema files.
func FS() fs.FS {
	return files
}

// Read returns the contents of an embedded schema file.
func Read(name string) (string, error) {
	data, err := files.ReadFile(name)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
