package references

import (
	"context"
	"fmt"
	"strings"

	"github.com/RepreZen/SwagEdit/document"
	"github.com/RepreZen/SwagEdit/errors"
	"github.com/RepreZen/SwagEdit/jsonpointer"
	"github.com/RepreZen/SwagEdit/model"
	"github.com/RepreZen/SwagEdit/schema"
	"github.com/RepreZen/SwagEdit/validation"
	"github.com/RepreZen/SwagEdit/yml"
	"gopkg.in/yaml.v3"
)

// SimpleReferences selects how bare definition names such as "$ref: Pet" are treated.
type SimpleReferences int

const (
	// SimpleReferencesUnsupported resolves bare names as relative file references.
	SimpleReferencesUnsupported SimpleReferences = iota
	// SimpleReferencesAllowed resolves bare names against #/definitions.
	SimpleReferencesAllowed
	// SimpleReferencesWarn resolves bare names against #/definitions and reports them as deprecated.
	SimpleReferencesWarn
)

// Validator reports invalid, unresolved and mistyped references of a document.
type Validator struct {
	simple       SimpleReferences
	resolverOpts []ResolverOption
}

// Option configures a Validator.
type Option func(v *Validator)

func WithSimpleReferences(mode SimpleReferences) Option {
	return func(v *Validator) {
		v.simple = mode
	}
}

// WithResolverOptions configures the resolver created for each validation run.
func WithResolverOptions(opts ...ResolverOption) Option {
	return func(v *Validator) {
		v.resolverOpts = append(v.resolverOpts, opts...)
	}
}

func NewValidator(opts ...Option) *Validator {
	v := &Validator{}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// reference is a $ref field found in the model.
type reference struct {
	owner *model.ObjectNode
	value model.Node
}

// Validate resolves every reference of the document. Documents are resolved relative to baseURI,
// or to the document location when baseURI is empty.
func (v *Validator) Validate(ctx context.Context, baseURI string, doc *document.Document) *validation.Set {
	errs := validation.NewSet()

	m, err := doc.Model()
	if err != nil {
		return errs
	}
	root, err := doc.RawTree()
	if err != nil {
		return errs
	}
	if baseURI == "" {
		baseURI = doc.Location()
	}

	refs := collectReferences(m)
	if len(refs) == 0 {
		return errs
	}

	resolver := NewResolver(v.resolverOpts...)
	resolver.Prefetch(ctx, v.externalLocations(baseURI, refs))

	for _, ref := range refs {
		if ctx.Err() != nil {
			break
		}
		if err := v.check(ctx, resolver, baseURI, root, m, ref); err != nil {
			errs.Add(err)
		}
	}

	return errs
}

func (v *Validator) check(ctx context.Context, resolver *Resolver, baseURI string, root *yaml.Node, m *model.Model, ref reference) *validation.Error {
	value, ok := ref.value.(*model.ValueNode)
	if !ok {
		return validation.NewNodeError(validation.SeverityError, validation.RuleValidationInvalidReference, validation.MessageReferenceNotString, ref.value)
	}
	text, ok := value.String()
	if !ok {
		return validation.NewNodeError(validation.SeverityError, validation.RuleValidationInvalidReference, validation.MessageReferenceNotString, ref.value)
	}

	r := Reference(text)
	if v.simple != SimpleReferencesUnsupported && r.IsSimple() {
		return v.checkSimple(ctx, resolver, baseURI, root, text, ref.value)
	}

	target, err := resolver.Resolve(ctx, baseURI, root, r)
	switch {
	case err == nil:
	case errors.Is(err, ErrExternalDisabled):
		return nil
	case errors.Is(err, ErrInvalidReference):
		return newError(validation.SeverityError, validation.RuleValidationInvalidReference, validation.MessageInvalidReference, text, ref.value)
	case errors.Is(err, ErrUnresolved):
		return newError(validation.SeverityWarning, validation.RuleValidationUnresolvedReference, validation.MessageUnresolvedReference, text, ref.value)
	default:
		return newError(validation.SeverityWarning, validation.RuleValidationUnresolvedReference, validation.MessageUnloadableReference, text, ref.value)
	}

	if !isTypeCompatible(ref.owner, target, m) {
		return newError(validation.SeverityError, validation.RuleValidationReferenceType, validation.MessageInvalidReferenceType, text, ref.value)
	}
	return nil
}

func (v *Validator) checkSimple(ctx context.Context, resolver *Resolver, baseURI string, root *yaml.Node, name string, node model.Node) *validation.Error {
	full := Reference("#/definitions/" + jsonpointer.Escape(name))
	if _, err := resolver.Resolve(ctx, baseURI, root, full); err != nil {
		return newError(validation.SeverityWarning, validation.RuleValidationUnresolvedReference, validation.MessageUnresolvedReference, name, node)
	}
	if v.simple == SimpleReferencesWarn {
		msg := fmt.Sprintf(validation.MessageSimpleReference, name, name)
		return validation.NewNodeError(validation.SeverityWarning, validation.RuleValidationSimpleReference, msg, node)
	}
	return nil
}

func (v *Validator) externalLocations(baseURI string, refs []reference) []string {
	var locations []string
	for _, ref := range refs {
		text, ok := model.StringField(ref.owner, "$ref")
		if !ok {
			continue
		}
		r := Reference(text)
		if r.GetURI() == "" || (v.simple != SimpleReferencesUnsupported && r.IsSimple()) || r.Validate() != nil {
			continue
		}
		result, err := ResolveAbsoluteReference(r, baseURI)
		if err != nil || result.AbsoluteReference == baseURI {
			continue
		}
		locations = append(locations, result.AbsoluteReference)
	}
	return locations
}

// isTypeCompatible reports whether the target can stand where the reference is. Targets must be objects;
// internal targets must also be of a kind the referring location accepts.
func isTypeCompatible(owner *model.ObjectNode, target *Target, m *model.Model) bool {
	if n := yml.ResolveAlias(target.Node); n == nil || n.Kind != yaml.MappingNode {
		return false
	}
	if !target.Internal {
		return true
	}

	node, ok := m.Find(target.Pointer)
	if !ok {
		return true
	}
	if obj, ok := node.(*model.ObjectNode); ok && obj.Has("$ref") {
		return true
	}

	expected := owner.Type().DefinitionNames()
	actual := node.Type().DefinitionNames()
	if len(expected) == 0 || len(actual) == 0 {
		return true
	}
	return schema.Intersects(expected, actual)
}

func collectReferences(m *model.Model) []reference {
	var refs []reference
	for _, n := range m.AllNodes() {
		obj, ok := n.(*model.ObjectNode)
		if !ok || isNameMap(obj) || isLiteral(obj) {
			continue
		}
		value, ok := obj.Get("$ref")
		if !ok {
			continue
		}
		refs = append(refs, reference{owner: obj, value: value})
	}
	return refs
}

// isNameMap reports whether the keys of n are user chosen names rather than keywords.
func isNameMap(n model.Node) bool {
	switch n.Property() {
	case "properties", "patternProperties", "definitions", "schemas", "responses":
		if parent := n.Parent(); parent != nil && isNameMap(parent) {
			return false
		}
		return true
	}
	return false
}

// isLiteral reports whether n is inside a value taken literally, such as an example or a vendor extension.
func isLiteral(n model.Node) bool {
	for current := n; current != nil; current = current.Parent() {
		if parent := current.Parent(); parent != nil && isNameMap(parent) {
			continue
		}
		p := current.Property()
		if p == "example" || p == "default" || p == "enum" || strings.HasPrefix(p, "x-") {
			return true
		}
	}
	return false
}

func newError(severity validation.Severity, rule, format, ref string, node model.Node) *validation.Error {
	return validation.NewNodeError(severity, rule, fmt.Sprintf(format, ref), node)
}
