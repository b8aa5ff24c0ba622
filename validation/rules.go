package validation

import (
	"maps"
	"slices"
)

const (
	RuleValidationSchema              = "validation-schema"
	RuleValidationArrayItems          = "validation-array-items"
	RuleValidationObjectType          = "validation-object-type"
	RuleValidationTypeMissing         = "validation-type-missing"
	RuleValidationRequiredProperties  = "validation-required-properties"
	RuleValidationDuplicateKey        = "validation-duplicate-key"
	RuleValidationInvalidReference    = "validation-invalid-reference"
	RuleValidationUnresolvedReference = "validation-unresolved-reference"
	RuleValidationReferenceType       = "validation-reference-type"
	RuleValidationSimpleReference     = "validation-simple-reference"
	RuleValidationProvider            = "validation-provider"
)

// RuleInfo documents a rule for CLI output and configuration help.
type RuleInfo struct {
	Summary     string
	Description string
	HowToFix    string
}

var rulesInfo = map[string]RuleInfo{
	RuleValidationSchema: {
		Summary:     "Schema violation.",
		Description: "The document must conform to the JSON schema of its API description format.",
		HowToFix:    "Change the value so it matches the type, format and constraints the format requires.",
	},
	RuleValidationArrayItems: {
		Summary:     "Array type without items.",
		Description: "A schema whose type is array must describe its elements with an items schema object.",
		HowToFix:    "Add an items object to the array schema.",
	},
	RuleValidationObjectType: {
		Summary:     "Object definition type.",
		Description: "A definition declaring properties must declare type object.",
		HowToFix:    "Set type: object on the definition.",
	},
	RuleValidationTypeMissing: {
		Summary:     "Definition type missing.",
		Description: "Schema definitions should declare their type explicitly.",
		HowToFix:    "Add a type field to the definition.",
	},
	RuleValidationRequiredProperties: {
		Summary:     "Required property not declared.",
		Description: "Every name listed in required should be declared under properties.",
		HowToFix:    "Declare the property or remove it from required.",
	},
	RuleValidationDuplicateKey: {
		Summary:     "Duplicate key.",
		Description: "Duplicate keys are not allowed in objects. Only the last occurrence is kept by parsers, silently dropping the others.",
		HowToFix:    "Remove or rename the repeated keys.",
	},
	RuleValidationInvalidReference: {
		Summary:     "Invalid reference.",
		Description: "A $ref value must be a string holding a valid URI with an optional JSON pointer fragment.",
		HowToFix:    "Fix the syntax of the $ref value.",
	},
	RuleValidationUnresolvedReference: {
		Summary:     "Unresolved reference.",
		Description: "The target of a $ref must exist in the referenced document.",
		HowToFix:    "Fix the $ref target or define the referenced component.",
	},
	RuleValidationReferenceType: {
		Summary:     "Reference target of wrong type.",
		Description: "A $ref must point at an object of the kind expected at the referencing location.",
		HowToFix:    "Point the $ref at a definition of the expected kind.",
	},
	RuleValidationSimpleReference: {
		Summary:     "Simple reference.",
		Description: "Swagger 2.0 simple references such as $ref: Pet are deprecated in favour of JSON references.",
		HowToFix:    "Use the full form #/definitions/Pet.",
	},
	RuleValidationProvider: {
		Summary:     "Extension rule.",
		Description: "Diagnostics reported by extension providers.",
		HowToFix:    "See the provider documentation.",
	},
}

// Rules returns the ids of every documented rule in alphabetical order.
func Rules() []string {
	return slices.Sorted(maps.Keys(rulesInfo))
}

// RuleInfoForID returns the documentation for a rule.
func RuleInfoForID(rule string) (RuleInfo, bool) {
	info, ok := rulesInfo[rule]
	return info, ok
}

func RuleSummary(rule string) string {
	return rulesInfo[rule].Summary
}

func RuleDescription(rule string) string {
	return rulesInfo[rule].Description
}

func RuleHowToFix(rule string) string {
	return rulesInfo[rule].HowToFix
}
