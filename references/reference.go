// Package references parses, resolves and validates JSON references ($ref) of API descriptions.
package references

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/RepreZen/SwagEdit/errors"
	"github.com/RepreZen/SwagEdit/jsonpointer"
)

const (
	// ErrInvalidReference is returned for references that are not a valid URI with a JSON pointer fragment.
	ErrInvalidReference = errors.Error("invalid reference")
	// ErrUnresolved is returned when the referenced document or the target inside it does not exist.
	ErrUnresolved = errors.Error("reference target not found")
	// ErrUnloadable is returned when a referenced document exists but cannot be read or parsed.
	ErrUnloadable = errors.Error("referenced document cannot be loaded")
	// ErrExternalDisabled is returned for references to other documents when external references are disabled.
	ErrExternalDisabled = errors.Error("external references are disabled")
)

// Reference is the value of a $ref field.
type Reference string

var _ fmt.Stringer = (*Reference)(nil)

var simpleReferencePattern = regexp.MustCompile(`^[A-Za-z0-9_\-]+$`)

// GetURI returns the document part of the reference, empty for references inside the same document.
func (r Reference) GetURI() string {
	uri, _, _ := strings.Cut(string(r), "#")
	return strings.TrimSpace(uri)
}

func (r Reference) HasJSONPointer() bool {
	return strings.Contains(string(r), "#")
}

// GetJSONPointer returns the decoded fragment of the reference. The fragment of "api.yaml" and "api.yaml#" is the
// root pointer.
func (r Reference) GetJSONPointer() jsonpointer.JSONPointer {
	_, fragment, found := strings.Cut(string(r), "#")
	if !found {
		return jsonpointer.Root
	}

	fragment = strings.TrimSpace(fragment)
	if decoded, err := url.PathUnescape(fragment); err == nil {
		fragment = decoded
	}

	return jsonpointer.JSONPointer(fragment)
}

// IsSimple reports whether the reference is a bare definition name such as "Pet", the short form
// Swagger 2.0 accepts for "#/definitions/Pet".
func (r Reference) IsSimple() bool {
	return simpleReferencePattern.MatchString(string(r))
}

func (r Reference) Validate() error {
	if strings.TrimSpace(string(r)) == "" {
		return ErrInvalidReference.Wrap(errors.New("empty reference"))
	}

	if uri := r.GetURI(); uri != "" {
		if _, err := ParseURLCached(uri); err != nil {
			return ErrInvalidReference.Wrap(fmt.Errorf("invalid reference URI: %w", err))
		}
	}

	if r.HasJSONPointer() {
		_, fragment, _ := strings.Cut(string(r), "#")
		if _, err := jsonpointer.FromFragment(strings.TrimSpace(fragment)); err != nil {
			return ErrInvalidReference.Wrap(fmt.Errorf("invalid reference JSON pointer: %w", err))
		}
	}

	return nil
}

func (r Reference) String() string {
	return string(r)
}
