// Package jsonpointer provides JSONPointer an implementation of RFC6901 https://datatracker.ietf.org/doc/html/rfc6901
package jsonpointer

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/RepreZen/SwagEdit/errors"
)

const (
	// ErrNotFound is returned when the target is not found.
	ErrNotFound = errors.Error("not found")
	// ErrInvalidPath is returned when the path cannot be navigated in the target.
	ErrInvalidPath = errors.Error("invalid path")
	// ErrValidation is returned when the jsonpointer is invalid.
	ErrValidation = errors.Error("validation error")
)

// JSONPointer represents a JSON Pointer value as defined by RFC6901.
// The empty pointer addresses the whole document.
type JSONPointer string

// Root is the pointer of the document root.
const Root JSONPointer = ""

func (j JSONPointer) String() string {
	return string(j)
}

// Validate will validate the JSONPointer is valid as per RFC6901.
func (j JSONPointer) Validate() error {
	if _, err := j.Parts(); err != nil {
		return err
	}
	return nil
}

// Parts returns the unescaped reference tokens of the pointer.
func (j JSONPointer) Parts() ([]string, error) {
	if j == Root {
		return nil, nil
	}
	if !strings.HasPrefix(string(j), "/") {
		return nil, ErrValidation.Wrapf("jsonpointer must start with /: %s", string(j))
	}

	tokens := strings.Split(string(j)[1:], "/")
	parts := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if err := validateToken(token); err != nil {
			return nil, ErrValidation.Wrapf("%s: %w", string(j), err)
		}
		parts = append(parts, Unescape(token))
	}

	return parts, nil
}

func validateToken(token string) error {
	for i := 0; i < len(token); i++ {
		if token[i] != '~' {
			continue
		}
		if i+1 >= len(token) || (token[i+1] != '0' && token[i+1] != '1') {
			return fmt.Errorf("invalid escape sequence in token %q", token)
		}
	}
	return nil
}

// Append returns a new pointer with the given unescaped parts appended.
func (j JSONPointer) Append(parts ...string) JSONPointer {
	var sb strings.Builder
	sb.WriteString(string(j))
	for _, part := range parts {
		sb.WriteByte('/')
		sb.WriteString(Escape(part))
	}
	return JSONPointer(sb.String())
}

// Parent returns the pointer of the parent location, false for the root.
func (j JSONPointer) Parent() (JSONPointer, bool) {
	if j == Root {
		return Root, false
	}
	idx := strings.LastIndexByte(string(j), '/')
	if idx < 0 {
		return Root, false
	}
	return j[:idx], true
}

// Last returns the unescaped last token of the pointer, empty for the root.
func (j JSONPointer) Last() string {
	idx := strings.LastIndexByte(string(j), '/')
	if idx < 0 {
		return ""
	}
	return Unescape(string(j)[idx+1:])
}

// HasPrefix reports whether prefix addresses j or one of its ancestors.
func (j JSONPointer) HasPrefix(prefix JSONPointer) bool {
	if prefix == Root || j == prefix {
		return true
	}
	return strings.HasPrefix(string(j), string(prefix)+"/")
}

// PartsToJSONPointer will convert the exploded parts of a JSONPointer to a JSONPointer.
func PartsToJSONPointer(parts []string) JSONPointer {
	return Root.Append(parts...)
}

// FromFragment converts a URI fragment (the part after '#') into a pointer, decoding percent escapes.
func FromFragment(fragment string) (JSONPointer, error) {
	decoded, err := url.PathUnescape(fragment)
	if err != nil {
		return "", ErrValidation.Wrap(err)
	}
	p := JSONPointer(decoded)
	if err := p.Validate(); err != nil {
		return "", err
	}
	return p, nil
}

// Escape escapes a reference token, '~' becomes "~0" and '/' becomes "~1".
func Escape(part string) string {
	if !strings.ContainsAny(part, "~/") {
		return part
	}
	part = strings.ReplaceAll(part, "~", "~0")
	return strings.ReplaceAll(part, "/", "~1")
}

// Unescape reverses Escape.
func Unescape(token string) string {
	if !strings.Contains(token, "~") {
		return token
	}
	token = strings.ReplaceAll(token, "~1", "/")
	return strings.ReplaceAll(token, "~0", "~")
}
