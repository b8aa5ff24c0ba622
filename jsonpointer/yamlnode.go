package jsonpointer

import (
	"strconv"

	"github.com/RepreZen/SwagEdit/yml"
	"gopkg.in/yaml.v3"
)

// GetYAMLTarget evaluates the pointer against a raw YAML tree.
// Mapping keys resolve last-wins, matching how the document is decoded; aliases and merge keys are followed.
func GetYAMLTarget(root *yaml.Node, pointer JSONPointer) (*yaml.Node, error) {
	parts, err := pointer.Parts()
	if err != nil {
		return nil, err
	}

	current := yml.ResolveAlias(root)
	if current != nil && current.Kind == yaml.DocumentNode && len(current.Content) > 0 {
		current = yml.ResolveAlias(current.Content[0])
	}

	for i, part := range parts {
		if current == nil {
			return nil, ErrNotFound.Wrapf("%s", PartsToJSONPointer(parts[:i+1]))
		}

		switch current.Kind {
		case yaml.MappingNode:
			_, value, ok := yml.GetMapElementNodes(current, part)
			if !ok {
				return nil, ErrNotFound.Wrapf("%s", PartsToJSONPointer(parts[:i+1]))
			}
			current = yml.ResolveAlias(value)
		case yaml.SequenceNode:
			index, err := strconv.Atoi(part)
			if err != nil || index < 0 || (len(part) > 1 && part[0] == '0') {
				return nil, ErrInvalidPath.Wrapf("expected array index at %s, got %q", PartsToJSONPointer(parts[:i]), part)
			}
			if index >= len(current.Content) {
				return nil, ErrNotFound.Wrapf("%s", PartsToJSONPointer(parts[:i+1]))
			}
			current = yml.ResolveAlias(current.Content[index])
		default:
			return nil, ErrInvalidPath.Wrapf("cannot navigate into %s at %s", yml.NodeKindToString(current.Kind), PartsToJSONPointer(parts[:i]))
		}
	}

	if current == nil {
		return nil, ErrNotFound.Wrapf("%s", pointer)
	}
	return current, nil
}
