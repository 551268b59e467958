package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jonathan/talentsync/internal/compiler"
	"github.com/jonathan/talentsync/internal/observability"
	"github.com/spf13/cobra"
)

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Compile a LaTeX document to PDF",
	Long: "Compiles a .tex file with the configured LaTeX engine. A .json input is treated as a " +
		"generation request and rendered first. Compiled PDFs are cached when a cache backend is configured.",
	RunE: runCompile,
}

var (
	compileInputFile  string
	compileOutputFile string
	compileNoCache    bool
)

func init() {
	compileCmd.Flags().StringVarP(&compileInputFile, "in", "i", "", "Path to .tex source or request .json (required)")
	compileCmd.Flags().StringVarP(&compileOutputFile, "out", "o", "resume.pdf", "Path to output PDF")
	compileCmd.Flags().BoolVar(&compileNoCache, "no-cache", false, "Bypass the PDF cache")

	_ = compileCmd.MarkFlagRequired("in")
	rootCmd.AddCommand(compileCmd)
}

func runCompile(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	source, err := loadSource(cmd, compileInputFile)
	if err != nil {
		return err
	}

	stack, err := newCompileStack(ctx, appConfig, nil)
	if err != nil {
		return err
	}
	defer stack.Close()

	var pdfCompiler compiler.PDFCompiler = stack.compiler
	if compileNoCache {
		pdfCompiler = stack.breaker
	}

	printer := observability.NewPrinter(cmd.OutOrStdout())
	res, err := pdfCompiler.Compile(ctx, source)
	if err != nil {
		var cerr *compiler.CompilationError
		if errors.As(err, &cerr) {
			printer.PrintCompileFailure(cerr.Message, cerr.LogOutput)
		}
		return err
	}

	if err := writeFile(compileOutputFile, res.PDF); err != nil {
		return err
	}
	printer.PrintCompileSummary(compileOutputFile, len(res.PDF), res.Pages, res.Cached)
	return nil
}

// loadSource returns LaTeX from a .tex file, or renders a request .json.
func loadSource(cmd *cobra.Command, path string) (string, error) {
	if strings.HasSuffix(strings.ToLower(path), ".json") {
		req, err := readRequest(cmd, path, "")
		if err != nil {
			return "", err
		}
		generator, err := newGenerator("")
		if err != nil {
			return "", err
		}
		return generator.Generate(req), nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read LaTeX source: %w", err)
	}
	return string(content), nil
}
