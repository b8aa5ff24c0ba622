package validation

import "strings"

// compareValidationErrors compares two diagnostics by line, column, severity, rule,
// message, and document location.
func compareValidationErrors(a, b *Error) int {
	if a.GetLineNumber() != b.GetLineNumber() {
		return a.GetLineNumber() - b.GetLineNumber()
	}
	if a.GetColumnNumber() != b.GetColumnNumber() {
		return a.GetColumnNumber() - b.GetColumnNumber()
	}
	if ra, rb := a.GetSeverity().Rank(), b.GetSeverity().Rank(); ra != rb {
		return ra - rb
	}
	if c := strings.Compare(a.Rule, b.Rule); c != 0 {
		return c
	}
	if c := strings.Compare(a.Message, b.Message); c != 0 {
		return c
	}
	return strings.Compare(a.DocumentLocation, b.DocumentLocation)
}
