package model

import (
	"strconv"
	"strings"

	"github.com/RepreZen/SwagEdit/errors"
	"github.com/RepreZen/SwagEdit/json"
	"github.com/RepreZen/SwagEdit/jsonpointer"
	"github.com/RepreZen/SwagEdit/schema"
	"github.com/RepreZen/SwagEdit/sequencedmap"
	"github.com/RepreZen/SwagEdit/yml"
	"gopkg.in/yaml.v3"
)

const (
	// ErrBuild is returned when the raw tree cannot be turned into a model.
	ErrBuild = errors.Error("cannot build model")
)

const (
	maxDepth = 1000
	maxNodes = 5_000_000
)

// Model is the semantic model of one document snapshot. It is never mutated after Build
// and is safe for concurrent readers.
type Model struct {
	root  Node
	index map[jsonpointer.JSONPointer]Node
	all   []Node
}

// Root returns the root node.
func (m *Model) Root() Node {
	return m.root
}

// Find returns the node at the given pointer.
func (m *Model) Find(pointer jsonpointer.JSONPointer) (Node, bool) {
	n, ok := m.index[pointer]
	return n, ok
}

// AllNodes returns every node in pre-order.
func (m *Model) AllNodes() []Node {
	return m.all
}

// Len returns the number of nodes.
func (m *Model) Len() int {
	return len(m.all)
}

// BuildOption configures Build.
type BuildOption func(b *builder)

// WithSchema binds every node to the type definition the schema assigns to its location.
func WithSchema(s *schema.Schema) BuildOption {
	return func(b *builder) {
		b.schema = s
	}
}

type builder struct {
	schema *schema.Schema
	model  *Model
}

// Build derives the semantic model from a raw tree. Repeated keys resolve last-wins,
// aliases are expanded and merge keys applied, so each pointer identifies exactly one node.
func Build(root *yaml.Node, opts ...BuildOption) (*Model, error) {
	if root == nil {
		return nil, ErrBuild.Wrap(errors.New("nil root"))
	}

	b := &builder{model: &Model{index: map[jsonpointer.JSONPointer]Node{}}}
	for _, opt := range opts {
		opt(b)
	}

	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return nil, ErrBuild.Wrap(yml.ErrEmptyDocument)
		}
		root = root.Content[0]
	}

	var rootType *schema.Type
	if b.schema != nil {
		rootType = b.schema.Root()
	}

	n, err := b.build(root, nil, nil, jsonpointer.Root, "", rootType, 0)
	if err != nil {
		return nil, ErrBuild.Wrap(err)
	}
	b.model.root = n

	return b.model, nil
}

func (b *builder) build(raw, key *yaml.Node, parent Node, pointer jsonpointer.JSONPointer, property string, typ *schema.Type, depth int) (Node, error) {
	if depth > maxDepth {
		return nil, errors.New("document nesting too deep")
	}
	if len(b.model.all) >= maxNodes {
		return nil, errors.New("document too large")
	}

	value := yml.ResolveAlias(raw)
	if value == nil {
		return nil, errors.New("unresolvable alias at " + pointer.String())
	}

	nb := base{
		pointer:  pointer,
		property: property,
		parent:   parent,
		span:     spanOf(key, raw, value),
		raw:      value,
		key:      key,
		typ:      typ,
	}

	switch value.Kind {
	case yaml.MappingNode:
		obj := &ObjectNode{base: nb}
		b.register(obj)

		pairs := lastWins(yml.Pairs(value))
		obj.fields = sequencedmap.New[string, Node](len(pairs))
		for _, p := range pairs {
			name := yml.KeyValue(p.Key)
			child, err := b.build(p.Value, p.Key, obj, pointer.Append(name), name, typ.Property(name), depth+1)
			if err != nil {
				return nil, err
			}
			obj.fields.Set(name, child)
		}
		return obj, nil
	case yaml.SequenceNode:
		arr := &ArrayNode{base: nb}
		b.register(arr)

		arr.elements = make([]Node, 0, len(value.Content))
		for i, item := range value.Content {
			idx := strconv.Itoa(i)
			child, err := b.build(item, nil, arr, pointer.Append(idx), idx, typ.Item(i), depth+1)
			if err != nil {
				return nil, err
			}
			arr.elements = append(arr.elements, child)
		}
		return arr, nil
	case yaml.ScalarNode:
		v, err := json.ScalarValue(value)
		if err != nil {
			return nil, err
		}
		n := &ValueNode{base: nb, value: v}
		b.register(n)
		return n, nil
	default:
		return nil, errors.New("unexpected " + yml.NodeKindToString(value.Kind) + " node at " + pointer.String())
	}
}

func (b *builder) register(n Node) {
	b.model.index[n.Pointer()] = n
	b.model.all = append(b.model.all, n)
}

// lastWins keeps only the last pair of every repeated key, preserving the order of the kept pairs.
func lastWins(pairs []yml.Pair) []yml.Pair {
	last := make(map[string]int, len(pairs))
	for i, p := range pairs {
		last[yml.KeyValue(p.Key)] = i
	}
	if len(last) == len(pairs) {
		return pairs
	}

	kept := make([]yml.Pair, 0, len(last))
	for i, p := range pairs {
		if last[yml.KeyValue(p.Key)] == i {
			kept = append(kept, p)
		}
	}
	return kept
}

// spanOf computes the source range of a node. Object fields start at their key.
// yaml.v3 only records start positions, so the end is the end of the last scalar reached from the node.
func spanOf(key, raw, value *yaml.Node) Span {
	start := Position{Line: raw.Line, Column: raw.Column}
	if key != nil {
		start = Position{Line: key.Line, Column: key.Column}
	}
	return Span{Start: start, End: endOf(value, start, 0)}
}

func endOf(n *yaml.Node, fallback Position, depth int) Position {
	if n == nil || depth > 64 {
		return fallback
	}

	switch n.Kind {
	case yaml.ScalarNode:
		lines := strings.Split(n.Value, "\n")
		if len(lines) == 1 || n.Style&(yaml.LiteralStyle|yaml.FoldedStyle) == 0 {
			width := len(n.Value)
			if n.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0 {
				width += 2
			}
			return Position{Line: n.Line, Column: n.Column + width}
		}
		last := lines[len(lines)-1]
		if last == "" && len(lines) > 1 {
			last = lines[len(lines)-2]
			lines = lines[:len(lines)-1]
		}
		return Position{Line: n.Line + len(lines), Column: n.Column + len(last)}
	case yaml.AliasNode:
		return Position{Line: n.Line, Column: n.Column + len(n.Value) + 1}
	case yaml.MappingNode, yaml.SequenceNode:
		if len(n.Content) == 0 {
			return Position{Line: n.Line, Column: n.Column + 2}
		}
		return endOf(n.Content[len(n.Content)-1], Position{Line: n.Line, Column: n.Column}, depth+1)
	default:
		return fallback
	}
}
