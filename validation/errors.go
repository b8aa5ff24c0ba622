// Package validation holds the diagnostics produced by validating a document: the Error type,
// severities, rule identifiers and the deduplicating Set the validators accumulate into.
package validation

import (
	"fmt"
	"strings"

	"github.com/RepreZen/SwagEdit/errors"
	"github.com/RepreZen/SwagEdit/jsonpointer"
	"github.com/RepreZen/SwagEdit/model"
	"gopkg.in/yaml.v3"
)

const (
	// ErrUnknownSeverity is returned when parsing a severity name that is not error or warning.
	ErrUnknownSeverity = errors.Error("unknown severity")
)

// Severity is the severity of a diagnostic.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

func (s Severity) String() string {
	return string(s)
}

// Rank orders severities, errors first.
func (s Severity) Rank() int {
	switch s {
	case SeverityError:
		return 0
	case SeverityWarning:
		return 1
	default:
		return 2
	}
}

// ParseSeverity parses a severity name case-insensitively.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return SeverityError, nil
	case "warning", "warn":
		return SeverityWarning, nil
	default:
		return "", ErrUnknownSeverity.Wrap(fmt.Errorf("%q", s))
	}
}

// UnmarshalText allows severities to be read from YAML, TOML and JSON configuration.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Error is a diagnostic anchored to a position in the source text.
// Two errors are considered the same diagnostic when their line, severity and message match.
type Error struct {
	Line      int
	Column    int
	EndLine   int
	EndColumn int
	Severity  Severity
	Rule      string
	Message   string
	// Pointer locates the offending node in the semantic model, empty for raw-tree diagnostics
	// that have no model counterpart.
	Pointer jsonpointer.JSONPointer
	// Node is the raw node the diagnostic was derived from, if any.
	Node *yaml.Node
	// DocumentLocation is set when the diagnostic belongs to a document other than the one being validated.
	DocumentLocation string
}

var _ error = (*Error)(nil)

func (e *Error) Error() string {
	return fmt.Sprintf("[%d:%d] %s", e.GetLineNumber(), e.GetColumnNumber(), e.Message)
}

// GetLineNumber returns the 1-based line of the diagnostic, or -1 when unknown.
func (e *Error) GetLineNumber() int {
	if e == nil || e.Line <= 0 {
		return -1
	}
	return e.Line
}

// GetColumnNumber returns the 1-based column of the diagnostic, or -1 when unknown.
func (e *Error) GetColumnNumber() int {
	if e == nil || e.Column <= 0 {
		return -1
	}
	return e.Column
}

// GetSeverity returns the severity, defaulting to error.
func (e *Error) GetSeverity() Severity {
	if e == nil || e.Severity == "" {
		return SeverityError
	}
	return e.Severity
}

// Key returns the identity of the diagnostic within a Set.
func (e *Error) Key() Key {
	return Key{Line: e.Line, Severity: e.GetSeverity(), Message: e.Message}
}

// Key is the structural identity of a diagnostic.
type Key struct {
	Line     int
	Severity Severity
	Message  string
}

// NewNodeError creates a diagnostic on a semantic model node, taking the position from its span.
func NewNodeError(severity Severity, rule, message string, node model.Node) *Error {
	err := &Error{
		Severity: severity,
		Rule:     rule,
		Message:  message,
		Line:     1,
		Column:   1,
	}
	if node == nil {
		return err
	}

	span := node.Span()
	if span.Start.Line > 0 {
		err.Line = span.Start.Line
		err.Column = span.Start.Column
		err.EndLine = span.End.Line
		err.EndColumn = span.End.Column
	}
	err.Pointer = node.Pointer()
	err.Node = node.Raw()

	return err
}

// NewRawError creates a diagnostic on a raw tree node, taking the position from its mark.
func NewRawError(severity Severity, rule, message string, node *yaml.Node) *Error {
	err := &Error{
		Severity: severity,
		Rule:     rule,
		Message:  message,
		Line:     1,
		Column:   1,
		Node:     node,
	}
	if node == nil || node.Line <= 0 {
		return err
	}

	err.Line = node.Line
	err.Column = node.Column
	err.EndLine = node.Line
	err.EndColumn = node.Column + len(node.Value)
	if node.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0 {
		err.EndColumn += 2
	}

	return err
}

// NewLineError creates a diagnostic at a line and column, used for positions reported by parsers.
func NewLineError(severity Severity, rule, message string, line, column int) *Error {
	if line <= 0 {
		line = 1
	}
	if column <= 0 {
		column = 1
	}
	return &Error{
		Severity: severity,
		Rule:     rule,
		Message:  message,
		Line:     line,
		Column:   column,
	}
}
