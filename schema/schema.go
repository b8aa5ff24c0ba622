// Package schema holds the JSON schema documents describing each API description dialect and
// binds document locations to the sub-schema that governs them.
package schema

import (
	"bytes"
	stdjson "encoding/json"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/RepreZen/SwagEdit/errors"
	"github.com/RepreZen/SwagEdit/jsonpointer"
	json "github.com/goccy/go-json"
)

const (
	// ErrInvalidSchema is returned when a schema document cannot be decoded.
	ErrInvalidSchema = errors.Error("invalid schema")
)

// maxDepth bounds $ref chains and combinator nesting while walking a schema.
const maxDepth = 32

// Schema is a decoded dialect schema. It is immutable and safe for concurrent use.
type Schema struct {
	id   string
	data []byte
	root map[string]any

	patterns sync.Map // pattern string -> *regexp.Regexp (nil when invalid)
}

// Parse decodes a JSON schema document.
func Parse(data []byte) (*Schema, error) {
	v, err := decode(data)
	if err != nil {
		return nil, ErrInvalidSchema.Wrap(err)
	}

	root, ok := v.(map[string]any)
	if !ok {
		return nil, ErrInvalidSchema.Wrapf("expected object at root, got %T", v)
	}

	id, _ := root["id"].(string)
	if id == "" {
		id, _ = root["$id"].(string)
	}

	return &Schema{
		id:   strings.TrimSuffix(id, "#"),
		data: data,
		root: root,
	}, nil
}

// MustParse is like Parse but panics on error. Intended for embedded schemas.
func MustParse(data []byte) *Schema {
	s, err := Parse(data)
	if err != nil {
		panic(err)
	}
	return s
}

// ParseTemplate decodes a JSON value the same way schema documents are decoded so it can be
// compared structurally with type definitions.
func ParseTemplate(data string) (any, error) {
	return decode([]byte(data))
}

func decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// ID returns the schema's declared id without a trailing '#'.
func (s *Schema) ID() string {
	return s.id
}

// Data returns the raw schema document.
func (s *Schema) Data() []byte {
	return s.data
}

// Root returns the type of the document root.
func (s *Schema) Root() *Type {
	return &Type{schema: s, content: s.root, pointer: jsonpointer.Root}
}

// Resolve resolves a $ref local to this schema, either "#/..." or "<id>#/...".
func (s *Schema) Resolve(ref string) (any, jsonpointer.JSONPointer, bool) {
	fragment, ok := s.localFragment(ref)
	if !ok {
		return nil, "", false
	}

	pointer, err := jsonpointer.FromFragment(fragment)
	if err != nil {
		return nil, "", false
	}
	parts, _ := pointer.Parts()

	var current any = s.root
	for _, part := range parts {
		switch c := current.(type) {
		case map[string]any:
			next, ok := c[part]
			if !ok {
				return nil, "", false
			}
			current = next
		case []any:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(c) {
				return nil, "", false
			}
			current = c[i]
		default:
			return nil, "", false
		}
	}

	return current, pointer, true
}

func (s *Schema) localFragment(ref string) (string, bool) {
	idx := strings.IndexByte(ref, '#')
	if idx < 0 {
		return "", false
	}
	base := ref[:idx]
	if base != "" && base != s.id {
		return "", false
	}
	return ref[idx+1:], true
}

// deref follows $ref chains until it reaches a schema object.
func (s *Schema) deref(content any, pointer jsonpointer.JSONPointer, depth int) (map[string]any, jsonpointer.JSONPointer) {
	for ; depth < maxDepth; depth++ {
		obj, ok := content.(map[string]any)
		if !ok {
			return nil, ""
		}
		ref, ok := obj["$ref"].(string)
		if !ok {
			return obj, pointer
		}
		content, pointer, ok = s.Resolve(ref)
		if !ok {
			return nil, ""
		}
	}
	return nil, ""
}

func (s *Schema) pattern(p string) *regexp.Regexp {
	if v, ok := s.patterns.Load(p); ok {
		re, _ := v.(*regexp.Regexp)
		return re
	}
	re, err := regexp.Compile(p)
	if err != nil {
		re = nil
	}
	s.patterns.Store(p, re)
	return re
}

var combinators = []string{"allOf", "oneOf", "anyOf"}

func (s *Schema) property(content any, pointer jsonpointer.JSONPointer, name string, depth int) (any, jsonpointer.JSONPointer) {
	if depth > maxDepth {
		return nil, ""
	}

	obj, pointer := s.deref(content, pointer, depth)
	if obj == nil {
		return nil, ""
	}

	if props, ok := obj["properties"].(map[string]any); ok {
		if c, ok := props[name]; ok {
			return c, pointer.Append("properties", name)
		}
	}

	if pp, ok := obj["patternProperties"].(map[string]any); ok {
		for _, p := range sortedKeys(pp) {
			if re := s.pattern(p); re != nil && re.MatchString(name) {
				return pp[p], pointer.Append("patternProperties", p)
			}
		}
	}

	if ap, ok := obj["additionalProperties"].(map[string]any); ok {
		return ap, pointer.Append("additionalProperties")
	}

	for _, kw := range combinators {
		alts, _ := obj[kw].([]any)
		for i, alt := range alts {
			if c, p := s.property(alt, pointer.Append(kw, strconv.Itoa(i)), name, depth+1); c != nil {
				return c, p
			}
		}
	}

	return nil, ""
}

func (s *Schema) item(content any, pointer jsonpointer.JSONPointer, index int, depth int) (any, jsonpointer.JSONPointer) {
	if depth > maxDepth {
		return nil, ""
	}

	obj, pointer := s.deref(content, pointer, depth)
	if obj == nil {
		return nil, ""
	}

	switch items := obj["items"].(type) {
	case map[string]any:
		return items, pointer.Append("items")
	case []any:
		if index < len(items) {
			return items[index], pointer.Append("items", strconv.Itoa(index))
		}
		if ai, ok := obj["additionalItems"].(map[string]any); ok {
			return ai, pointer.Append("additionalItems")
		}
		return nil, ""
	}

	for _, kw := range combinators {
		alts, _ := obj[kw].([]any)
		for i, alt := range alts {
			if c, p := s.item(alt, pointer.Append(kw, strconv.Itoa(i)), index, depth+1); c != nil {
				return c, p
			}
		}
	}

	return nil, ""
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Equal reports whether two decoded JSON values are structurally equal.
// Numbers compare by value so 1, 1.0 and json.Number("1") are equal.
func Equal(a, b any) bool {
	switch av := a.(type) {
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			other, ok := bv[k]
			if !ok || !Equal(v, other) {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	}

	if an, ok := number(a); ok {
		bn, ok := number(b)
		return ok && an == bn
	}

	return reflect.DeepEqual(a, b)
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case stdjson.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
