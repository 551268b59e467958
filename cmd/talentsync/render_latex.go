package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jonathan/talentsync/internal/observability"
	"github.com/jonathan/talentsync/internal/rendering"
	"github.com/jonathan/talentsync/internal/schemas"
	"github.com/jonathan/talentsync/internal/types"
	"github.com/spf13/cobra"
)

var renderLaTeXCmd = &cobra.Command{
	Use:   "render-latex",
	Short: "Render a LaTeX resume from a generation request",
	Long: "Reads a PDF generation request (resumeData, template, options) as JSON, validates it " +
		"against the request schema and writes the LaTeX document.",
	RunE: runRenderLaTeX,
}

var (
	renderLaTeXInputFile      string
	renderLaTeXOutputFile     string
	renderLaTeXTemplate       string
	renderLaTeXCategoriesFile string
	renderLaTeXSchemaFile     string
)

func init() {
	renderLaTeXCmd.Flags().StringVarP(&renderLaTeXInputFile, "in", "i", "", "Path to request JSON file, or - for stdin (required)")
	renderLaTeXCmd.Flags().StringVarP(&renderLaTeXOutputFile, "out", "o", "", "Path to output .tex file; stdout when empty")
	renderLaTeXCmd.Flags().StringVarP(&renderLaTeXTemplate, "template", "t", "", "Template id, overriding the request")
	renderLaTeXCmd.Flags().StringVar(&renderLaTeXCategoriesFile, "categories", "", "Skill categories TOML file")
	renderLaTeXCmd.Flags().StringVar(&renderLaTeXSchemaFile, "schema", "", "Additional JSON Schema file the request must satisfy")

	_ = renderLaTeXCmd.MarkFlagRequired("in")
	rootCmd.AddCommand(renderLaTeXCmd)
}

func runRenderLaTeX(cmd *cobra.Command, _ []string) error {
	req, err := readRequest(cmd, renderLaTeXInputFile, renderLaTeXSchemaFile)
	if err != nil {
		return err
	}
	if renderLaTeXTemplate != "" {
		req.Template = renderLaTeXTemplate
	}

	generator, err := newGenerator(renderLaTeXCategoriesFile)
	if err != nil {
		return err
	}
	latex := generator.Generate(req)
	templateID := rendering.SelectTemplate(req.Template).ID
	logger.Debug("rendered document", "template", templateID, "bytes", len(latex))

	if renderLaTeXOutputFile == "" {
		_, err := io.WriteString(cmd.OutOrStdout(), latex)
		return err
	}

	if err := writeFile(renderLaTeXOutputFile, []byte(latex)); err != nil {
		return err
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintResumeSummary(&req.ResumeData, templateID)
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", renderLaTeXOutputFile)
	return nil
}

// readRequest loads and validates a generation request from path or stdin.
// When schemaPath is set the document must also satisfy that schema.
func readRequest(cmd *cobra.Command, path, schemaPath string) (*types.PDFGenerationRequest, error) {
	var (
		content []byte
		err     error
	)
	if path == "-" {
		content, err = io.ReadAll(cmd.InOrStdin())
	} else {
		content, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read request: %w", err)
	}

	if err := schemas.ValidatePDFRequest(content); err != nil {
		return nil, err
	}
	if schemaPath != "" {
		if err := validateExtraSchema(schemaPath, path, content); err != nil {
			return nil, err
		}
	}

	var req types.PDFGenerationRequest
	if err := json.Unmarshal(content, &req); err != nil {
		return nil, fmt.Errorf("failed to unmarshal request JSON: %w", err)
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	return &req, nil
}

// validateExtraSchema checks the request against a caller-supplied schema.
// Files are validated in place; stdin content is validated from memory.
func validateExtraSchema(schemaPath, path string, content []byte) error {
	if path != "-" {
		return schemas.ValidateJSON(schemaPath, path)
	}
	schema, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("failed to read schema: %w", err)
	}
	return schemas.ValidateJSONString(string(schema), string(content))
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
