package validator

import (
	"context"
	"fmt"

	"github.com/RepreZen/SwagEdit/json"
	"github.com/RepreZen/SwagEdit/validation"
	"github.com/RepreZen/SwagEdit/yml"
	"gopkg.in/yaml.v3"
)

// CheckNonFiniteNumbers reports every float scalar such as .inf or .nan. The document keeps such values
// as their source text since JSON cannot represent them.
func CheckNonFiniteNumbers(ctx context.Context, raw *yaml.Node) *validation.Set {
	errs := validation.NewSet()
	if raw == nil {
		return errs
	}

	_ = yml.Walk(ctx, raw, func(_ context.Context, node, _, _ *yaml.Node) error {
		if json.NonFiniteNumber(node) {
			errs.Add(validation.NewRawError(validation.SeverityError, validation.RuleValidationSchema, fmt.Sprintf(validation.MessageNonFiniteNumber, node.Value), node))
		}
		return nil
	})

	return errs
}
