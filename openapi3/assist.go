package openapi3

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/RepreZen/SwagEdit/errors"
	"github.com/RepreZen/SwagEdit/json"
	"github.com/RepreZen/SwagEdit/jsonpointer"
	"github.com/RepreZen/SwagEdit/model"
	"github.com/RepreZen/SwagEdit/sequencedmap"
	gojson "github.com/goccy/go-json"
)

// ErrNotExampleContext is returned when an example is requested for a location that does not hold one.
const ErrNotExampleContext = errors.Error("not an example location")

const securitySchemesPointer jsonpointer.JSONPointer = "/components/securitySchemes"

// SecuritySchemeNames returns the names of the security schemes declared under components, in document order.
func SecuritySchemeNames(m *model.Model) []string {
	node, ok := m.Find(securitySchemesPointer)
	if !ok {
		return nil
	}
	obj, ok := node.(*model.ObjectNode)
	if !ok {
		return nil
	}
	return obj.FieldNames()
}

var exampleContexts = []*regexp.Regexp{
	regexp.MustCompile(`.*/content/\S+/example$`),
	regexp.MustCompile(`.*/content/\S+/examples/\S+/value$`),
	regexp.MustCompile(`.*/parameters/\S+/example$`),
	regexp.MustCompile(`.*/parameters/\S+/examples/\S+/value$`),
	regexp.MustCompile(`.*/headers/\S+/example$`),
	regexp.MustCompile(`.*/headers/\S+/examples/\S+/value$`),
	regexp.MustCompile(`.*/components/schemas/\S+/example$`),
}

var componentSchemaExample = regexp.MustCompile(`^/components/schemas/[^/]+(/.+)?/example$`)

// IsExampleContext reports whether pointer is a location where an example value can be generated.
func IsExampleContext(pointer jsonpointer.JSONPointer) bool {
	for _, re := range exampleContexts {
		if re.MatchString(pointer.String()) {
			return true
		}
	}
	return false
}

// GenerateExample builds an example value for the example location at pointer from the schema that
// governs it: the enclosing schema inside components, otherwise the schema field of the nearest
// ancestor that has one. Internal references are followed. The value is nil when no schema applies.
func GenerateExample(m *model.Model, pointer jsonpointer.JSONPointer) (any, error) {
	if !IsExampleContext(pointer) {
		return nil, ErrNotExampleContext.Wrapf("%s", pointer)
	}

	node := nearestNode(m, pointer)

	g := &generator{model: m, visiting: map[jsonpointer.JSONPointer]bool{}}

	var schemaNode model.Node
	if componentSchemaExample.MatchString(pointer.String()) {
		if parent, ok := m.Find(mustParent(pointer)); ok {
			schemaNode = parent
			// the schema's own example is the value being generated
			g.skipLiterals = parent
		}
	} else if owner, ok := schemaOwner(node, pointer); ok {
		schemaNode, _ = model.Field(owner, "schema")
	}
	if schemaNode == nil {
		return nil, nil
	}

	return g.generate(schemaNode, 0), nil
}

// GenerateExampleJSON is GenerateExample rendered as indented JSON.
func GenerateExampleJSON(m *model.Model, pointer jsonpointer.JSONPointer) (string, error) {
	v, err := GenerateExample(m, pointer)
	if err != nil {
		return "", err
	}
	data, err := gojson.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to render example: %w", err)
	}
	return string(data), nil
}

// nearestNode returns the node at pointer, or its closest existing ancestor when the example is not written yet.
func nearestNode(m *model.Model, pointer jsonpointer.JSONPointer) model.Node {
	for p := pointer; ; {
		if n, ok := m.Find(p); ok {
			return n
		}
		parent, ok := p.Parent()
		if !ok {
			return m.Root()
		}
		p = parent
	}
}

// schemaOwner returns the object holding the schema for an example at pointer. node is the example
// itself or, when it does not exist yet, its closest ancestor.
func schemaOwner(node model.Node, pointer jsonpointer.JSONPointer) (model.Node, bool) {
	if obj, ok := node.(*model.ObjectNode); ok && node.Pointer() != pointer && obj.Has("schema") {
		return obj, true
	}
	return model.FindParentContainingField(node, "schema")
}

func mustParent(p jsonpointer.JSONPointer) jsonpointer.JSONPointer {
	parent, _ := p.Parent()
	return parent
}

const maxExampleDepth = 16

type generator struct {
	model        *model.Model
	visiting     map[jsonpointer.JSONPointer]bool
	skipLiterals model.Node
}

func (g *generator) generate(n model.Node, depth int) any {
	if depth > maxExampleDepth {
		return nil
	}
	obj, ok := n.(*model.ObjectNode)
	if !ok {
		return nil
	}

	if ref, ok := model.StringField(obj, "$ref"); ok {
		return g.generateRef(ref, depth)
	}

	if n != g.skipLiterals {
		if v, ok := literalOf(obj); ok {
			return v
		}
	}

	if allOf, ok := obj.Get("allOf"); ok {
		return g.generateAllOf(allOf, depth)
	}
	for _, field := range []string{"oneOf", "anyOf"} {
		if alts, ok := obj.Get(field); ok {
			if arr, ok := alts.(*model.ArrayNode); ok {
				if first, ok := arr.At(0); ok {
					return g.generate(first, depth+1)
				}
			}
		}
	}

	typ, _ := model.StringField(obj, "type")
	switch {
	case typ == "object" || (typ == "" && obj.Has("properties")):
		return g.generateObject(obj, depth)
	case typ == "array":
		items, ok := obj.Get("items")
		if !ok {
			return []any{}
		}
		return []any{g.generate(items, depth+1)}
	case typ == "string":
		format, _ := model.StringField(obj, "format")
		return sampleString(format)
	case typ == "integer":
		return 0
	case typ == "number":
		return 0.0
	case typ == "boolean":
		return true
	}
	return nil
}

func (g *generator) generateRef(ref string, depth int) any {
	fragment, ok := strings.CutPrefix(ref, "#")
	if !ok {
		return nil
	}
	pointer, err := jsonpointer.FromFragment(fragment)
	if err != nil || g.visiting[pointer] {
		return nil
	}
	target, ok := g.model.Find(pointer)
	if !ok {
		return nil
	}

	g.visiting[pointer] = true
	defer delete(g.visiting, pointer)
	return g.generate(target, depth+1)
}

func (g *generator) generateObject(obj *model.ObjectNode, depth int) any {
	out := sequencedmap.New[string, any](0)

	props, ok := obj.Get("properties")
	if !ok {
		return out
	}
	propsObj, ok := props.(*model.ObjectNode)
	if !ok {
		return out
	}
	for name, prop := range propsObj.Fields() {
		out.Set(name, g.generate(prop, depth+1))
	}
	return out
}

func (g *generator) generateAllOf(allOf model.Node, depth int) any {
	arr, ok := allOf.(*model.ArrayNode)
	if !ok {
		return nil
	}

	out := sequencedmap.New[string, any](0)
	var last any
	for _, part := range arr.Elements() {
		last = g.generate(part, depth+1)
		if m, ok := last.(*sequencedmap.Map[string, any]); ok {
			for k, v := range m.All() {
				out.Set(k, v)
			}
		}
	}
	if out.Len() == 0 {
		return last
	}
	return out
}

// literalOf returns the example, default or first enum value declared by the schema.
func literalOf(obj *model.ObjectNode) (any, bool) {
	for _, field := range []string{"example", "default"} {
		if v, ok := obj.Get(field); ok {
			return literal(v), true
		}
	}
	if enum, ok := obj.Get("enum"); ok {
		if arr, ok := enum.(*model.ArrayNode); ok {
			if first, ok := arr.At(0); ok {
				return literal(first), true
			}
		}
	}
	return nil, false
}

func literal(n model.Node) any {
	v, err := json.ToValue(n.Raw())
	if err != nil {
		return nil
	}
	return v
}

func sampleString(format string) string {
	switch format {
	case "date":
		return "2000-01-01"
	case "date-time":
		return "2000-01-01T00:00:00Z"
	case "email":
		return "user@example.com"
	case "uuid":
		return "3fa85f64-5717-4562-b3fc-2c963f66afa6"
	case "uri", "url":
		return "https://example.com"
	case "byte":
		return "c3RyaW5n"
	case "password":
		return "********"
	default:
		return "string"
	}
}
