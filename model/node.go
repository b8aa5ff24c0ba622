// Package model provides the position-aware semantic model of a document: a deduplicated,
// pointer-addressable tree derived from the raw YAML tree.
package model

import (
	"fmt"
	"iter"

	"github.com/RepreZen/SwagEdit/jsonpointer"
	"github.com/RepreZen/SwagEdit/schema"
	"github.com/RepreZen/SwagEdit/sequencedmap"
	"gopkg.in/yaml.v3"
)

// Kind identifies the variant of a Node.
type Kind int

const (
	KindObject Kind = iota + 1
	KindArray
	KindValue
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindValue:
		return "value"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Position is a 1-based line and column in the source text.
type Position struct {
	Line   int
	Column int
}

// Span is the source range covered by a node.
type Span struct {
	Start Position
	End   Position
}

// Node is a node of the semantic model. It is implemented only by *ObjectNode, *ArrayNode and
// *ValueNode, so a type switch over those three is exhaustive.
type Node interface {
	Kind() Kind
	// Pointer uniquely identifies the node within its model.
	Pointer() jsonpointer.JSONPointer
	// Property is the last segment of the pointer: the field name or the array index.
	Property() string
	// Parent is nil for the root.
	Parent() Node
	Span() Span
	// Raw is the raw value node this node was built from.
	Raw() *yaml.Node
	// KeyNode is the raw mapping key of an object field, nil for the root and array elements.
	KeyNode() *yaml.Node
	// KeySpan is the source range of the field name, false when the node is not an object field.
	KeySpan() (Span, bool)
	// Type is the type definition the dialect schema assigns to this location, nil when unknown.
	Type() *schema.Type

	sealed()
}

type base struct {
	pointer  jsonpointer.JSONPointer
	property string
	parent   Node
	span     Span
	raw      *yaml.Node
	key      *yaml.Node
	typ      *schema.Type
}

func (b *base) Pointer() jsonpointer.JSONPointer { return b.pointer }
func (b *base) Property() string                 { return b.property }
func (b *base) Parent() Node                     { return b.parent }
func (b *base) Span() Span                       { return b.span }
func (b *base) Raw() *yaml.Node                  { return b.raw }
func (b *base) KeyNode() *yaml.Node              { return b.key }
func (b *base) Type() *schema.Type               { return b.typ }

func (b *base) sealed() {}

func (b *base) KeySpan() (Span, bool) {
	if b.key == nil {
		return Span{}, false
	}
	start := Position{Line: b.key.Line, Column: b.key.Column}
	return Span{Start: start, End: endOf(b.key, start, 0)}, true
}

// ObjectNode is a mapping. Field order follows the source; repeated keys keep the last value.
type ObjectNode struct {
	base
	fields *sequencedmap.Map[string, Node]
}

func (o *ObjectNode) Kind() Kind { return KindObject }

// Get returns the field with the given name.
func (o *ObjectNode) Get(name string) (Node, bool) {
	return o.fields.Get(name)
}

// Has reports whether the field exists.
func (o *ObjectNode) Has(name string) bool {
	return o.fields.Has(name)
}

// FieldNames returns the field names in source order.
func (o *ObjectNode) FieldNames() []string {
	return o.fields.Keys()
}

// Fields iterates the fields in source order.
func (o *ObjectNode) Fields() iter.Seq2[string, Node] {
	return o.fields.All()
}

// Len returns the number of fields.
func (o *ObjectNode) Len() int {
	return o.fields.Len()
}

// ArrayNode is a sequence.
type ArrayNode struct {
	base
	elements []Node
}

func (a *ArrayNode) Kind() Kind { return KindArray }

// Len returns the number of elements.
func (a *ArrayNode) Len() int {
	return len(a.elements)
}

// At returns the element at index i.
func (a *ArrayNode) At(i int) (Node, bool) {
	if i < 0 || i >= len(a.elements) {
		return nil, false
	}
	return a.elements[i], true
}

// Elements iterates the elements with their index.
func (a *ArrayNode) Elements() iter.Seq2[int, Node] {
	return func(yield func(int, Node) bool) {
		for i, e := range a.elements {
			if !yield(i, e) {
				return
			}
		}
	}
}

// ValueNode is a scalar. Its value is a string, bool, nil or json.Number.
type ValueNode struct {
	base
	value any
}

func (v *ValueNode) Kind() Kind { return KindValue }

// Value returns the decoded scalar value.
func (v *ValueNode) Value() any {
	return v.value
}

// String returns the value if it is a string.
func (v *ValueNode) String() (string, bool) {
	s, ok := v.value.(string)
	return s, ok
}

// IsNull reports whether the scalar is null.
func (v *ValueNode) IsNull() bool {
	return v.value == nil
}

// Text returns the source text of the scalar regardless of its type.
func (v *ValueNode) Text() string {
	if v.raw == nil {
		return fmt.Sprint(v.value)
	}
	return v.raw.Value
}
