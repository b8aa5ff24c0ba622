package schema

import (
	"sort"
	"strings"

	"github.com/RepreZen/SwagEdit/jsonpointer"
)

// DefaultTemplate is the type definition content shared by schema objects in the dialect schemas.
const DefaultTemplate = `{"$ref": "#/definitions/schema"}`

// Type is the type definition a dialect schema assigns to one document location: the raw,
// unresolved sub-schema found while walking the schema alongside the document path.
type Type struct {
	schema  *Schema
	content any
	pointer jsonpointer.JSONPointer
}

// Content returns the raw sub-schema, $ref left unresolved.
func (t *Type) Content() any {
	if t == nil {
		return nil
	}
	return t.content
}

// Pointer returns the location of the type definition inside the schema document.
func (t *Type) Pointer() jsonpointer.JSONPointer {
	if t == nil {
		return ""
	}
	return t.pointer
}

// Matches reports whether the content structurally equals template.
func (t *Type) Matches(template any) bool {
	if t == nil || template == nil {
		return false
	}
	return Equal(t.content, template)
}

// Property returns the type of the named member of an object at this location, nil when the schema does not describe it.
func (t *Type) Property(name string) *Type {
	if t == nil {
		return nil
	}
	c, p := t.schema.property(t.content, t.pointer, name, 0)
	if c == nil {
		return nil
	}
	return &Type{schema: t.schema, content: c, pointer: p}
}

// Item returns the type of the index-th element of an array at this location.
func (t *Type) Item(index int) *Type {
	if t == nil {
		return nil
	}
	c, p := t.schema.item(t.content, t.pointer, index, 0)
	if c == nil {
		return nil
	}
	return &Type{schema: t.schema, content: c, pointer: p}
}

// DefinitionNames returns the names of the schema definitions this type refers to, following $ref and
// oneOf/anyOf alternatives a few levels deep. Definitions of JSON reference objects are left out.
// Two locations whose names do not intersect expect different kinds of objects.
func (t *Type) DefinitionNames() []string {
	if t == nil {
		return nil
	}

	names := map[string]struct{}{}
	t.schema.collectNames(t.content, names, 0)

	out := make([]string, 0, len(names))
	for n := range names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

const maxNameDepth = 4

func (s *Schema) collectNames(content any, names map[string]struct{}, depth int) {
	if depth > maxNameDepth {
		return
	}
	obj, ok := content.(map[string]any)
	if !ok {
		return
	}

	if ref, ok := obj["$ref"].(string); ok {
		name := definitionName(ref)
		if name == "" {
			return
		}
		if _, seen := names[name]; seen {
			return
		}
		target, _, ok := s.Resolve(ref)
		if ok && isReferenceDefinition(target) {
			return
		}
		names[name] = struct{}{}
		if ok {
			s.collectNames(target, names, depth+1)
		}
		return
	}

	for _, kw := range []string{"oneOf", "anyOf"} {
		alts, _ := obj[kw].([]any)
		for _, alt := range alts {
			s.collectNames(alt, names, depth+1)
		}
	}
}

// isReferenceDefinition reports whether content describes a JSON reference object, {"$ref": "..."}.
// Any location accepting references accepts any reference, so these names say nothing about the target kind.
func isReferenceDefinition(content any) bool {
	obj, ok := content.(map[string]any)
	if !ok {
		return false
	}
	required, _ := obj["required"].([]any)
	return len(required) == 1 && required[0] == "$ref"
}

func definitionName(ref string) string {
	idx := strings.Index(ref, "#/definitions/")
	if idx < 0 {
		return ""
	}
	name := ref[idx+len("#/definitions/"):]
	if strings.Contains(name, "/") {
		return ""
	}
	return jsonpointer.Unescape(name)
}

// Intersects reports whether two definition name lists share a name.
func Intersects(a, b []string) bool {
	set := make(map[string]struct{}, len(a))
	for _, n := range a {
		set[n] = struct{}{}
	}
	for _, n := range b {
		if _, ok := set[n]; ok {
			return true
		}
	}
	return false
}
