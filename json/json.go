// Package json converts raw YAML trees into JSON values.
package json

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/RepreZen/SwagEdit/errors"
	"github.com/RepreZen/SwagEdit/sequencedmap"
	"github.com/RepreZen/SwagEdit/yml"
	gojson "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// ErrTooComplex is returned when alias expansion exceeds the node limit.
const ErrTooComplex = errors.Error("document too complex")

const (
	maxDepth = 1000
	maxNodes = 5_000_000
)

// ToValue converts a raw YAML tree to a JSON compatible value made of map[string]any, []any,
// string, bool, nil and json.Number. Repeated mapping keys resolve last-wins, aliases are
// expanded and merge keys are applied.
func ToValue(node *yaml.Node) (any, error) {
	c := &converter{}
	return c.convert(node, 0)
}

// YAMLToJSON will convert the provided YAML node to JSON in a stable way not reordering keys.
func YAMLToJSON(node *yaml.Node, indentation int, w io.Writer) error {
	c := &converter{ordered: true}
	v, err := c.convert(node, 0)
	if err != nil {
		return err
	}

	e := gojson.NewEncoder(w)
	e.SetIndent("", strings.Repeat(" ", indentation))

	return e.Encode(v)
}

type converter struct {
	ordered bool
	visited int
}

func (c *converter) convert(node *yaml.Node, depth int) (any, error) {
	if node == nil {
		return nil, nil
	}
	if depth > maxDepth {
		return nil, ErrTooComplex.Wrapf("nesting deeper than %d", maxDepth)
	}
	c.visited++
	if c.visited > maxNodes {
		return nil, ErrTooComplex.Wrapf("more than %d nodes", maxNodes)
	}

	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}
		return c.convert(node.Content[0], depth+1)
	case yaml.AliasNode:
		return c.convert(node.Alias, depth+1)
	case yaml.MappingNode:
		return c.convertMapping(node, depth)
	case yaml.SequenceNode:
		s := make([]any, 0, len(node.Content))
		for _, item := range node.Content {
			v, err := c.convert(item, depth+1)
			if err != nil {
				return nil, err
			}
			s = append(s, v)
		}
		return s, nil
	case yaml.ScalarNode:
		return ScalarValue(node)
	default:
		return nil, fmt.Errorf("unknown node kind: %s", yml.NodeKindToString(node.Kind))
	}
}

func (c *converter) convertMapping(node *yaml.Node, depth int) (any, error) {
	pairs := yml.Pairs(node)

	if c.ordered {
		m := sequencedmap.New[string, any](len(pairs))
		for _, p := range pairs {
			v, err := c.convert(p.Value, depth+1)
			if err != nil {
				return nil, err
			}
			m.Set(yml.KeyValue(p.Key), v)
		}
		return m, nil
	}

	m := make(map[string]any, len(pairs))
	for _, p := range pairs {
		v, err := c.convert(p.Value, depth+1)
		if err != nil {
			return nil, err
		}
		m[yml.KeyValue(p.Key)] = v
	}
	return m, nil
}

// ScalarValue returns the JSON value of a scalar node according to its resolved YAML tag.
// Numbers are returned as json.Number so integer precision is preserved. Infinities and NaN have
// no JSON representation and keep their source text, see NonFiniteNumber.
func ScalarValue(node *yaml.Node) (any, error) {
	switch node.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return nil, err
		}
		return b, nil
	case "!!int":
		var v any
		if err := node.Decode(&v); err != nil {
			return nil, err
		}
		switch n := v.(type) {
		case int:
			return json.Number(strconv.Itoa(n)), nil
		case int64:
			return json.Number(strconv.FormatInt(n, 10)), nil
		case uint64:
			return json.Number(strconv.FormatUint(n, 10)), nil
		case float64:
			return floatNumber(n, node)
		default:
			return json.Number(fmt.Sprint(n)), nil
		}
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return nil, err
		}
		return floatNumber(f, node)
	default:
		// strings, timestamps, binary and custom tags keep their source text
		return node.Value, nil
	}
}

func floatNumber(f float64, node *yaml.Node) (any, error) {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return node.Value, nil
	}
	return json.Number(strconv.FormatFloat(f, 'g', -1, 64)), nil
}

// NonFiniteNumber reports whether node is a YAML float scalar such as .inf or .nan.
func NonFiniteNumber(node *yaml.Node) bool {
	if node == nil || node.Kind != yaml.ScalarNode || node.ShortTag() != "!!float" {
		return false
	}
	var f float64
	if err := node.Decode(&f); err != nil {
		return false
	}
	return math.IsInf(f, 0) || math.IsNaN(f)
}
