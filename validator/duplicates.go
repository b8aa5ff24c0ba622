package validator

import (
	"context"
	"fmt"

	"github.com/RepreZen/SwagEdit/validation"
	"github.com/RepreZen/SwagEdit/yml"
	"gopkg.in/yaml.v3"
)

// duplicateKey identifies a key within one mapping. Mappings are numbered in traversal order.
type duplicateKey struct {
	mapping int
	key     string
}

type duplicateAccumulator struct {
	mappings int
	order    []duplicateKey
	keys     map[duplicateKey][]*yaml.Node
}

// CheckDuplicateKeys reports every key node that shares its text with a sibling key of the same mapping.
// The raw tree is used because the semantic model keeps only the last occurrence of a key.
func CheckDuplicateKeys(ctx context.Context, raw *yaml.Node) *validation.Set {
	errs := validation.NewSet()
	if raw == nil {
		return errs
	}

	acc := &duplicateAccumulator{keys: map[duplicateKey][]*yaml.Node{}}
	if err := yml.Walk(ctx, raw, acc.visit); err != nil {
		return errs
	}

	for _, k := range acc.order {
		nodes := acc.keys[k]
		if len(nodes) < 2 {
			continue
		}
		for _, n := range nodes {
			errs.Add(validation.NewRawError(validation.SeverityWarning, validation.RuleValidationDuplicateKey, fmt.Sprintf(validation.MessageDuplicateKey, k.key), n))
		}
	}

	return errs
}

func (acc *duplicateAccumulator) visit(_ context.Context, node, _, _ *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return nil
	}

	id := acc.mappings
	acc.mappings++

	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := node.Content[i]

		// merge keys are expanded by the parser, an explicit key overriding a merged one is not a duplicate
		if keyNode.Kind != yaml.ScalarNode || keyNode.Tag == "!!merge" {
			continue
		}
		k := duplicateKey{mapping: id, key: keyNode.Value}
		if _, ok := acc.keys[k]; !ok {
			acc.order = append(acc.order, k)
		}
		acc.keys[k] = append(acc.keys[k], keyNode)
	}

	return nil
}
