package references

import (
	"context"
	"fmt"

	"github.com/RepreZen/SwagEdit/jsonpointer"
	"github.com/RepreZen/SwagEdit/model"
)

// Locate resolves the reference at pointer in the model: either a $ref field or an object holding one.
// It returns where the reference leads, the data behind navigating from a reference to its target.
func Locate(ctx context.Context, resolver *Resolver, baseURI string, m *model.Model, pointer jsonpointer.JSONPointer) (*Target, error) {
	node, ok := m.Find(pointer)
	if !ok {
		return nil, fmt.Errorf("no node at %s: %w", pointer, jsonpointer.ErrNotFound)
	}

	if node.Property() != "$ref" {
		ref, ok := model.Field(node, "$ref")
		if !ok {
			return nil, ErrInvalidReference.Wrapf("no reference at %s", pointer)
		}
		node = ref
	}

	value, ok := node.(*model.ValueNode)
	if !ok {
		return nil, ErrInvalidReference.Wrapf("%s is not a string", node.Pointer())
	}
	text, ok := value.String()
	if !ok {
		return nil, ErrInvalidReference.Wrapf("%s is not a string", node.Pointer())
	}

	if resolver == nil {
		resolver = NewResolver()
	}
	return resolver.Resolve(ctx, baseURI, m.Root().Raw(), Reference(text))
}
