package yml

import (
	"context"

	"github.com/RepreZen/SwagEdit/errors"
	"gopkg.in/yaml.v3"
)

// ErrSkipChildren can be returned from a Walk function to skip the children of the current node.
const ErrSkipChildren = errors.Error("skip children")

// VisitFunc is called for each node of the raw tree.
// key is the mapping key node when node is a mapping value, nil otherwise.
type VisitFunc func(ctx context.Context, node, parent, key *yaml.Node) error

// Walk visits node and its descendants in document order.
// Mapping keys are not visited on their own, they are passed alongside their values.
// Alias nodes are visited but not followed, so shared anchors are walked once.
// Any other error returned by visit, or the context error, stops the walk and is returned.
func Walk(ctx context.Context, node *yaml.Node, visit VisitFunc) error {
	return walkNode(ctx, node, nil, nil, visit)
}

func walkNode(ctx context.Context, node, parent, key *yaml.Node, visit VisitFunc) error {
	if node == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := visit(ctx, node, parent, key); err != nil {
		if errors.Is(err, ErrSkipChildren) {
			return nil
		}
		return err
	}

	switch node.Kind {
	case yaml.DocumentNode, yaml.SequenceNode:
		for _, child := range node.Content {
			if err := walkNode(ctx, child, node, nil, visit); err != nil {
				return err
			}
		}
	case yaml.MappingNode:
		for _, p := range RawPairs(node) {
			if err := walkNode(ctx, p.Value, node, p.Key, visit); err != nil {
				return err
			}
		}
	}

	return nil
}
