// Package yml contains helpers for working with the raw yaml.v3 node tree produced by parsing a document.
// The raw tree keeps duplicate keys and source positions, unlike decoding into Go maps.
package yml

import (
	"bytes"
	"fmt"
	"io"

	"github.com/RepreZen/SwagEdit/errors"
	"gopkg.in/yaml.v3"
)

const (
	// ErrEmptyDocument is returned when the parsed text holds no YAML content.
	ErrEmptyDocument = errors.Error("empty document")
	// ErrMultipleDocuments is returned when the text contains more than one YAML document.
	ErrMultipleDocuments = errors.Error("multiple documents are not supported")
)

// Pair is a single key/value entry of a mapping node.
type Pair struct {
	Key   *yaml.Node
	Value *yaml.Node
}

// Parse parses YAML (or JSON) text into its raw tree, returning the root content node.
func Parse(data []byte) (*yaml.Node, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var doc yaml.Node
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyDocument
		}
		return nil, err
	}

	var extra yaml.Node
	if err := dec.Decode(&extra); err == nil {
		return nil, ErrMultipleDocuments
	}

	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, ErrEmptyDocument
	}

	return doc.Content[0], nil
}

// ResolveAlias follows alias nodes to the node they reference.
func ResolveAlias(node *yaml.Node) *yaml.Node {
	for depth := 0; node != nil && node.Kind == yaml.AliasNode; depth++ {
		if depth > 1000 {
			return nil
		}
		node = node.Alias
	}
	return node
}

// IsMergeKey returns true if the given node is a YAML merge key (<<).
func IsMergeKey(node *yaml.Node) bool {
	return node != nil && node.Kind == yaml.ScalarNode && node.Tag == "!!merge" && node.Value == "<<"
}

// KeyValue returns the text of a mapping key, following aliases.
func KeyValue(key *yaml.Node) string {
	if resolved := ResolveAlias(key); resolved != nil {
		return resolved.Value
	}
	return key.Value
}

// RawPairs returns the key/value pairs of a mapping node exactly as written, duplicates and merge keys included.
func RawPairs(mapping *yaml.Node) []Pair {
	if mapping == nil || mapping.Kind != yaml.MappingNode {
		return nil
	}

	pairs := make([]Pair, 0, len(mapping.Content)/2)
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		pairs = append(pairs, Pair{Key: mapping.Content[i], Value: mapping.Content[i+1]})
	}
	return pairs
}

// Pairs returns the key/value pairs of a mapping node with merge keys (<<) expanded.
// Merged entries come first so that explicit keys declared in the mapping take precedence
// when the caller applies last-wins semantics.
func Pairs(mapping *yaml.Node) []Pair {
	return pairs(ResolveAlias(mapping), map[*yaml.Node]bool{})
}

func pairs(mapping *yaml.Node, seen map[*yaml.Node]bool) []Pair {
	if mapping == nil || mapping.Kind != yaml.MappingNode || seen[mapping] {
		return nil
	}
	seen[mapping] = true
	defer delete(seen, mapping)

	raw := RawPairs(mapping)

	var merged, explicit []Pair
	for _, p := range raw {
		if !IsMergeKey(p.Key) {
			explicit = append(explicit, p)
			continue
		}

		target := ResolveAlias(p.Value)
		if target == nil {
			continue
		}
		switch target.Kind {
		case yaml.MappingNode:
			merged = append(merged, pairs(target, seen)...)
		case yaml.SequenceNode:
			for _, item := range target.Content {
				merged = append(merged, pairs(ResolveAlias(item), seen)...)
			}
		}
	}

	if len(merged) == 0 {
		return explicit
	}
	return append(merged, explicit...)
}

// GetMapElementNodes returns the last key and value nodes for the given key in a mapping node.
func GetMapElementNodes(mapNode *yaml.Node, key string) (*yaml.Node, *yaml.Node, bool) {
	ps := Pairs(mapNode)
	for i := len(ps) - 1; i >= 0; i-- {
		if KeyValue(ps[i].Key) == key {
			return ps[i].Key, ps[i].Value, true
		}
	}
	return nil, nil, false
}

// NodeKindToString returns a human-readable name for a yaml.Kind.
func NodeKindToString(kind yaml.Kind) string {
	switch kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return fmt.Sprintf("unknown(%d)", kind)
	}
}
