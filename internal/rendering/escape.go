// Package rendering generates LaTeX resume documents from structured resume data.
package rendering

import "strings"

// EscapeLaTeX escapes special LaTeX characters in text.
// Special characters: \ & % $ # _ { } ~ ^ < > "
//
// The text is scanned once, so backslashes and braces introduced by an
// escape sequence are never escaped again.
func EscapeLaTeX(text string) string {
	if text == "" {
		return ""
	}

	var result strings.Builder
	result.Grow(len(text) * 2)

	for _, r := range text {
		switch r {
		case '\\':
			result.WriteString(`\textbackslash{}`)
		case '&':
			result.WriteString(`\&`)
		case '%':
			result.WriteString(`\%`)
		case '$':
			result.WriteString(`\$`)
		case '#':
			result.WriteString(`\#`)
		case '_':
			result.WriteString(`\_`)
		case '{':
			result.WriteString(`\{`)
		case '}':
			result.WriteString(`\}`)
		case '~':
			result.WriteString(`\textasciitilde{}`)
		case '^':
			result.WriteString(`\textasciicircum{}`)
		case '<':
			result.WriteString(`\textless{}`)
		case '>':
			result.WriteString(`\textgreater{}`)
		case '"':
			result.WriteString(`''`)
		case '\'':
			// Passed through as-is; no typographic quote conversion.
			result.WriteRune(r)
		default:
			result.WriteRune(r)
		}
	}

	return result.String()
}

// SingleLine collapses embedded line breaks into single spaces.
// Headers (name, role, project title) must stay on one line.
func SingleLine(text string) string {
	if text == "" {
		return ""
	}
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == '\n' || r == '\r'
	})
	for i, f := range fields {
		fields[i] = strings.TrimSpace(f)
	}
	return strings.TrimSpace(strings.Join(nonEmpty(fields), " "))
}

// FormatList joins items with ", ", escaping each one when escape is true.
// Blank items are skipped.
func FormatList(items []string, escape bool) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if escape {
			item = EscapeLaTeX(item)
		}
		parts = append(parts, item)
	}
	return strings.Join(parts, ", ")
}

func nonEmpty(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
