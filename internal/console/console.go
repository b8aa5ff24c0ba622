// Package console renders diagnostics and progress for the terminal.
package console

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/RepreZen/SwagEdit/validation"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF5555"))

	warningStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFB86C"))

	successStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#50FA7B"))

	filePathStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#BD93F9"))

	ruleStyle = lipgloss.NewStyle().
			Faint(true)

	lineNumberStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6272A4"))
)

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Formatter renders diagnostics in the IDE-parseable form file:line:col: severity: message [rule].
type Formatter struct {
	// Styled enables colors.
	Styled bool
	// Context renders the offending source line below each diagnostic.
	Context bool
}

// NewFormatter returns a formatter for w, styled when w is a terminal.
func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{Styled: IsTerminal(w)}
}

func (f *Formatter) apply(style lipgloss.Style, text string) string {
	if f.Styled {
		return style.Render(text)
	}
	return text
}

// FormatDiagnostic renders one diagnostic of the document at file. source is only read when Context is set.
func (f *Formatter) FormatDiagnostic(file string, e *validation.Error, source []byte) string {
	var sb strings.Builder

	if e.DocumentLocation != "" {
		file = e.DocumentLocation
	}
	if file != "" {
		location := fmt.Sprintf("%s:%d:%d:", ToRelativePath(file), e.GetLineNumber(), e.GetColumnNumber())
		sb.WriteString(f.apply(filePathStyle, location))
		sb.WriteString(" ")
	}

	severity := e.GetSeverity()
	style := errorStyle
	if severity == validation.SeverityWarning {
		style = warningStyle
	}
	sb.WriteString(f.apply(style, severity.String()+":"))
	sb.WriteString(" ")
	sb.WriteString(e.Message)
	if e.Rule != "" {
		sb.WriteString(" ")
		sb.WriteString(f.apply(ruleStyle, "["+e.Rule+"]"))
	}
	sb.WriteString("\n")

	if f.Context && e.DocumentLocation == "" {
		sb.WriteString(f.renderContext(e, source))
	}

	return sb.String()
}

// renderContext renders the diagnostic's line with a caret under its column.
func (f *Formatter) renderContext(e *validation.Error, source []byte) string {
	lines := strings.Split(string(source), "\n")
	if e.Line <= 0 || e.Line > len(lines) {
		return ""
	}
	line := strings.TrimRight(lines[e.Line-1], "\r")

	lineNum := fmt.Sprintf("%d", e.Line)
	var sb strings.Builder
	sb.WriteString(f.apply(lineNumberStyle, lineNum))
	sb.WriteString(" | ")
	sb.WriteString(line)
	sb.WriteString("\n")

	if e.Column > 0 && e.Column <= len(line)+1 {
		width := 1
		if e.EndLine == e.Line && e.EndColumn > e.Column {
			width = e.EndColumn - e.Column
		}
		sb.WriteString(strings.Repeat(" ", len(lineNum)+3+e.Column-1))
		sb.WriteString(f.apply(errorStyle, strings.Repeat("^", width)))
		sb.WriteString("\n")
	}
	return sb.String()
}

// FormatSummary renders the totals of a run.
func (f *Formatter) FormatSummary(files, errors, warnings int) string {
	if errors == 0 && warnings == 0 {
		return f.apply(successStyle, "✓ ") + fmt.Sprintf("%s valid\n", plural(files, "document"))
	}

	summary := fmt.Sprintf("%s, %s in %s\n", plural(errors, "error"), plural(warnings, "warning"), plural(files, "document"))
	if errors > 0 {
		return f.apply(errorStyle, "✗ ") + summary
	}
	return f.apply(warningStyle, "⚠ ") + summary
}

// FormatError renders a failure that is not a diagnostic, such as an unreadable file.
func (f *Formatter) FormatError(file string, err error) string {
	prefix := ""
	if file != "" {
		prefix = f.apply(filePathStyle, ToRelativePath(file)+":") + " "
	}
	return prefix + f.apply(errorStyle, "error:") + " " + err.Error() + "\n"
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// ToRelativePath converts an absolute path to a path relative to the working directory when possible.
func ToRelativePath(path string) string {
	if !filepath.IsAbs(path) {
		return path
	}

	wd, err := os.Getwd()
	if err != nil {
		return path
	}

	relPath, err := filepath.Rel(wd, path)
	if err != nil || strings.HasPrefix(relPath, "..") {
		return path
	}

	return relPath
}

// FormatRule renders the documentation of a rule. The summary is always shown, the description and
// fix only when detailed is set.
func (f *Formatter) FormatRule(id string, info validation.RuleInfo, detailed bool) string {
	var sb strings.Builder
	sb.WriteString(f.apply(filePathStyle, id))
	sb.WriteString("  ")
	sb.WriteString(info.Summary)
	sb.WriteString("\n")
	if detailed {
		if info.Description != "" {
			sb.WriteString("  " + info.Description + "\n")
		}
		if info.HowToFix != "" {
			sb.WriteString("  " + f.apply(ruleStyle, "Fix: ") + info.HowToFix + "\n")
		}
	}
	return sb.String()
}
