package providers

import (
	stdjson "encoding/json"

	"github.com/RepreZen/SwagEdit/document"
	"github.com/RepreZen/SwagEdit/json"
	"github.com/RepreZen/SwagEdit/model"
)

// jsNode is the view of a model node handed to scripts. Method names are lowercased in JavaScript.
type jsNode struct {
	node model.Node
}

func wrapNode(n model.Node) any {
	if n == nil {
		return nil
	}
	return &jsNode{node: n}
}

func (n *jsNode) Pointer() string  { return n.node.Pointer().String() }
func (n *jsNode) Property() string { return n.node.Property() }
func (n *jsNode) Kind() string     { return n.node.Kind().String() }
func (n *jsNode) Line() int        { return n.node.Span().Start.Line }
func (n *jsNode) Parent() any      { return wrapNode(n.node.Parent()) }

// Value returns the JSON value of the node, numbers as JavaScript numbers.
func (n *jsNode) Value() any {
	if v, ok := n.node.(*model.ValueNode); ok {
		return jsValue(v.Value())
	}
	v, err := json.ToValue(n.node.Raw())
	if err != nil {
		return nil
	}
	return jsValue(v)
}

func (n *jsNode) FieldNames() []string {
	obj, ok := n.node.(*model.ObjectNode)
	if !ok {
		return []string{}
	}
	return obj.FieldNames()
}

func (n *jsNode) Has(name string) bool {
	_, ok := model.Field(n.node, name)
	return ok
}

func (n *jsNode) Get(name string) any {
	f, ok := model.Field(n.node, name)
	if !ok {
		return nil
	}
	return wrapNode(f)
}

func (n *jsNode) Len() int {
	switch t := n.node.(type) {
	case *model.ObjectNode:
		return t.Len()
	case *model.ArrayNode:
		return t.Len()
	case *model.ValueNode:
		return 0
	}
	return 0
}

func (n *jsNode) At(i int) any {
	arr, ok := n.node.(*model.ArrayNode)
	if !ok {
		return nil
	}
	el, ok := arr.At(i)
	if !ok {
		return nil
	}
	return wrapNode(el)
}

func (n *jsNode) DefinitionNames() []string {
	names := n.node.Type().DefinitionNames()
	if names == nil {
		return []string{}
	}
	return names
}

func jsValue(v any) any {
	switch t := v.(type) {
	case stdjson.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = jsValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = jsValue(e)
		}
		return out
	default:
		return v
	}
}

type jsDocument struct {
	doc *document.Document
}

func (d *jsDocument) Location() string { return d.doc.Location() }
func (d *jsDocument) Version() string  { return string(d.doc.Version()) }
