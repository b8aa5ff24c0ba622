package validator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/RepreZen/SwagEdit/model"
	"github.com/RepreZen/SwagEdit/validation"
)

// DefinitionsPatterns match the pointers of the sections holding reusable schema definitions.
var DefinitionsPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^/definitions/.+`),
	regexp.MustCompile(`^/components/schemas/.+`),
}

const refProperty = "$ref"

// IsInDefinitions reports whether pointer lies inside a definitions section.
func IsInDefinitions(pointer string) bool {
	for _, re := range DefinitionsPatterns {
		if re.MatchString(pointer) {
			return true
		}
	}
	return false
}

// checkNode runs the structural rules on one node.
func (v *Validator) checkNode(node model.Node) []*validation.Error {
	obj, ok := node.(*model.ObjectNode)
	if !ok {
		return nil
	}

	var errs []*validation.Error
	if err := checkArrayTypeDefinition(obj); err != nil {
		errs = append(errs, err)
	}
	if IsInDefinitions(obj.Pointer().String()) {
		if err := v.checkMissingType(obj); err != nil {
			errs = append(errs, err)
		}
		errs = append(errs, checkMissingRequiredProperties(obj)...)
	}
	return errs
}

func hasArrayType(obj *model.ObjectNode) bool {
	typ, ok := obj.Get("type")
	if !ok {
		return false
	}
	switch t := typ.(type) {
	case *model.ValueNode:
		return !t.IsNull() && strings.EqualFold(t.Text(), "array")
	case *model.ObjectNode, *model.ArrayNode:
		return false
	}
	return false
}

func checkArrayTypeDefinition(obj *model.ObjectNode) *validation.Error {
	if !hasArrayType(obj) {
		return nil
	}

	items, ok := obj.Get("items")
	if !ok {
		return validation.NewNodeError(validation.SeverityError, validation.RuleValidationArrayItems, validation.MessageArrayMissingItems, obj)
	}

	switch items.(type) {
	case *model.ObjectNode:
		return nil
	case *model.ArrayNode, *model.ValueNode:
		return validation.NewNodeError(validation.SeverityError, validation.RuleValidationArrayItems, validation.MessageArrayItemsNotObject, items)
	}
	return nil
}

func (v *Validator) checkMissingType(obj *model.ObjectNode) *validation.Error {
	if obj.Has("properties") {
		// the container of property definitions
		if obj.Property() == "properties" {
			return nil
		}

		typ, ok := obj.Get("type")
		if !ok {
			return validation.NewNodeError(validation.SeverityWarning, validation.RuleValidationObjectType, validation.MessageObjectTypeMissing, obj)
		}
		if s, isString := stringValue(typ); !isString || s != "object" {
			return validation.NewNodeError(validation.SeverityError, validation.RuleValidationObjectType, validation.MessageWrongType, obj)
		}
		return nil
	}

	if v.isSchemaDefinition(obj) && !obj.Has("type") {
		return validation.NewNodeError(validation.SeverityWarning, validation.RuleValidationTypeMissing, validation.MessageTypeMissing, obj)
	}

	return nil
}

// isSchemaDefinition reports whether the dialect schema types the node as a plain schema object,
// one that is neither a reference nor a composition.
func (v *Validator) isSchemaDefinition(obj *model.ObjectNode) bool {
	return obj.Type().Matches(v.template) && !obj.Has(refProperty) && !obj.Has("allOf")
}

func checkMissingRequiredProperties(obj *model.ObjectNode) []*validation.Error {
	field, ok := obj.Get("required")
	if !ok {
		return nil
	}
	required, ok := field.(*model.ArrayNode)
	if !ok {
		return nil
	}

	properties, ok := obj.Get("properties")
	if !ok {
		return []*validation.Error{
			validation.NewNodeError(validation.SeverityWarning, validation.RuleValidationRequiredProperties, validation.MessageMissingProperties, obj),
		}
	}

	var errs []*validation.Error
	for _, el := range required.Elements() {
		value, ok := el.(*model.ValueNode)
		if !ok || value.IsNull() {
			continue
		}
		name := value.Text()
		if _, found := model.Field(properties, name); !found {
			errs = append(errs, validation.NewNodeError(validation.SeverityWarning, validation.RuleValidationRequiredProperties, fmt.Sprintf(validation.MessageRequiredNotFound, name), value))
		}
	}
	return errs
}

func stringValue(n model.Node) (string, bool) {
	v, ok := n.(*model.ValueNode)
	if !ok {
		return "", false
	}
	return v.String()
}
