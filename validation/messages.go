package validation

const (
	MessageArrayMissingItems    = "array missing items"
	MessageArrayItemsNotObject  = "array items should be object"
	MessageObjectTypeMissing    = "object type missing"
	MessageWrongType            = "wrong type"
	MessageTypeMissing          = "type missing"
	MessageMissingProperties    = "missing properties"
	MessageRequiredNotFound     = "required property '%s' not found"
	MessageDuplicateKey         = "duplicate key: %s"
	MessageNonFiniteNumber      = "number '%s' has no JSON representation"
	MessageInvalidReference     = "invalid reference '%s'"
	MessageReferenceNotString   = "invalid reference: value must be a string"
	MessageUnresolvedReference  = "reference '%s' cannot be resolved"
	MessageUnloadableReference  = "reference '%s' cannot be loaded"
	MessageInvalidReferenceType = "invalid object type for reference '%s'"
	MessageSimpleReference      = "simple reference '%s' is deprecated, use '#/definitions/%s'"
)
