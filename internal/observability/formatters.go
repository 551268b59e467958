// Package observability provides metrics and formatted output for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/talentsync/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		if r := []rune(line); len(r) > boxWidth-4 {
			line = string(r[:boxWidth-7]) + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintResumeSummary outputs a short overview of the resume being rendered.
func (p *Printer) PrintResumeSummary(data *types.ResumeData, template string) {
	if data == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:      %s\n", data.Name))
	sb.WriteString(fmt.Sprintf("Email:     %s\n", data.Email))
	if data.PredictedField != "" {
		sb.WriteString(fmt.Sprintf("Field:     %s\n", data.PredictedField))
	}
	sb.WriteString(fmt.Sprintf("Template:  %s\n", template))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Education: %d  Experience: %d  Projects: %d\n",
		len(data.Education), len(data.WorkExperience), len(data.Projects)))

	if len(data.SkillsAnalysis) > 0 {
		sb.WriteString("\nTop skills:\n")
		count := min(len(data.SkillsAnalysis), maxItemsToShow)
		for i := 0; i < count; i++ {
			s := data.SkillsAnalysis[i]
			sb.WriteString(fmt.Sprintf("  • %s (%.0f%%)\n", s.SkillName, s.Percentage))
		}
		if len(data.SkillsAnalysis) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(data.SkillsAnalysis)-maxItemsToShow))
		}
	}

	p.printBox("RESUME SUMMARY", strings.TrimRight(sb.String(), "\n"))
}

// PrintCompileSummary outputs where a PDF was written and what it contains.
// pages is zero when the page count could not be determined.
func (p *Printer) PrintCompileSummary(outPath string, size int, pages int, cached bool) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Output:  %s\n", outPath))
	sb.WriteString(fmt.Sprintf("Size:    %d bytes\n", size))
	if pages > 0 {
		sb.WriteString(fmt.Sprintf("Pages:   %d\n", pages))
	} else {
		sb.WriteString("Pages:   unknown\n")
	}
	if cached {
		sb.WriteString("Source:  cache")
	} else {
		sb.WriteString("Source:  compiled")
	}
	p.printBox("PDF COMPILED", sb.String())
}

// PrintCompileFailure outputs the tail of a failed LaTeX log.
func (p *Printer) PrintCompileFailure(message, logOutput string) {
	var sb strings.Builder
	sb.WriteString(message)
	if tail := logTail(logOutput, maxItemsToShow*2); tail != "" {
		sb.WriteString("\n\n")
		sb.WriteString(tail)
	}
	p.printBox("COMPILATION FAILED", sb.String())
}

// logTail returns the last n non-blank lines of a log.
func logTail(logOutput string, n int) string {
	var lines []string
	for _, l := range strings.Split(logOutput, "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
