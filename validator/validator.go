// Package validator runs the validation passes over a parsed document and merges their diagnostics.
//
// The passes run in a fixed order: schema validation, structural rules and extension providers
// over every model node, duplicate keys and non-finite numbers over the raw tree, then references. The result is a set,
// so the order only affects which work is done first; reference validation runs last as it may
// need to load other documents.
package validator

import (
	"context"
	"slices"

	"github.com/RepreZen/SwagEdit/document"
	"github.com/RepreZen/SwagEdit/logging"
	"github.com/RepreZen/SwagEdit/model"
	"github.com/RepreZen/SwagEdit/validation"
)

// SchemaValidator validates a document against the schema of its format.
// Validate must be deterministic and free of side effects.
type SchemaValidator interface {
	Validate(ctx context.Context, doc *document.Document) *validation.Set
}

// ReferenceValidator resolves every reference of a document and reports the broken ones.
// Failures to load other documents are reported as diagnostics, never returned.
type ReferenceValidator interface {
	Validate(ctx context.Context, baseURI string, doc *document.Document) *validation.Set
}

// Dialect supplies the schema and reference semantics of one API description format version.
type Dialect interface {
	SchemaValidator() SchemaValidator
	// ReferenceValidator is called once per Validator; prefs carries the dialect toggles.
	ReferenceValidator(prefs Preferences) ReferenceValidator
}

// Validator validates documents of one dialect. It holds no per-run state and is safe for concurrent use.
type Validator struct {
	schemaValidator    SchemaValidator
	referenceValidator ReferenceValidator
	providers          []Provider
	prefs              Preferences
	template           any
	logger             logging.Logger
}

// New creates a Validator for the dialect.
func New(d Dialect, opts ...Option) *Validator {
	o := &options{
		prefs:    MapPreferences{},
		template: defaultTemplate,
		logger:   logging.NopLogger{},
	}
	for _, opt := range opts {
		opt(o)
	}

	return &Validator{
		schemaValidator:    d.SchemaValidator(),
		referenceValidator: d.ReferenceValidator(o.prefs),
		providers:          slices.Clone(o.providers),
		prefs:              o.prefs,
		template:           o.template,
		logger:             o.logger,
	}
}

// Preferences returns the preferences the validator was created with.
func (v *Validator) Preferences() Preferences {
	return v.prefs
}

// Validate runs every pass over the document and returns the union of their diagnostics.
// A document that is not parsed or is malformed yields an empty set.
func (v *Validator) Validate(ctx context.Context, doc *document.Document, baseURI string) *validation.Set {
	errs := validation.NewSet()
	if doc == nil {
		return errs
	}

	if _, err := doc.AsJSON(); err != nil {
		v.logger.Debug("skipping validation", "location", doc.Location(), "error", err)
		return errs
	}
	raw, err := doc.RawTree()
	if err != nil || raw == nil {
		return errs
	}
	m, err := doc.Model()
	if err != nil || m == nil {
		return errs
	}

	passes := []func() *validation.Set{
		func() *validation.Set { return v.validateSchema(ctx, doc) },
		func() *validation.Set { return v.ValidateDocument(ctx, doc, baseURI, m) },
		func() *validation.Set { return CheckDuplicateKeys(ctx, raw) },
		func() *validation.Set { return CheckNonFiniteNumbers(ctx, raw) },
		func() *validation.Set { return v.validateReferences(ctx, baseURI, doc) },
	}
	for _, pass := range passes {
		// an abandoned run returns what it has, the caller discards it anyway
		if ctx.Err() != nil {
			break
		}
		errs.Union(pass())
	}

	return errs
}

func (v *Validator) validateSchema(ctx context.Context, doc *document.Document) *validation.Set {
	if v.schemaValidator == nil {
		return nil
	}
	return v.schemaValidator.Validate(ctx, doc)
}

func (v *Validator) validateReferences(ctx context.Context, baseURI string, doc *document.Document) *validation.Set {
	if v.referenceValidator == nil {
		return nil
	}
	return v.referenceValidator.Validate(ctx, baseURI, doc)
}

// ValidateDocument runs the structural rules and the active providers over every node of the model.
func (v *Validator) ValidateDocument(ctx context.Context, doc *document.Document, baseURI string, m *model.Model) *validation.Set {
	errs := validation.NewSet()
	if m == nil || m.Root() == nil {
		return errs
	}

	active := activeProviders(v.logger, v.providers, doc)

	for _, node := range m.AllNodes() {
		errs.AddAll(v.checkNode(node)...)
		for _, p := range active {
			errs.AddAll(runProvider(ctx, v.logger, p, doc, baseURI, node)...)
		}
	}

	return errs
}
