// Package openapi3 is the OpenAPI 3.0 dialect: its JSON schema, the validators built on it and
// the data behind content assist.
package openapi3

import (
	_ "embed"
	"sync"

	"github.com/RepreZen/SwagEdit/document"
	"github.com/RepreZen/SwagEdit/jsonschema"
	"github.com/RepreZen/SwagEdit/logging"
	"github.com/RepreZen/SwagEdit/references"
	"github.com/RepreZen/SwagEdit/schema"
	"github.com/RepreZen/SwagEdit/validator"
)

//go:embed schema.json
var schemaData []byte

var loadSchema = sync.OnceValue(func() *schema.Schema {
	return schema.MustParse(schemaData)
})

// Schema returns the OpenAPI 3.0 JSON schema.
func Schema() *schema.Schema {
	return loadSchema()
}

const Version = document.VersionOpenAPI3

// Dialect validates OpenAPI 3.0 documents.
type Dialect struct {
	logger       logging.Logger
	resolverOpts []references.ResolverOption

	schemaValidator *jsonschema.Validator
}

var _ validator.Dialect = (*Dialect)(nil)

type Option func(d *Dialect)

func WithLogger(logger logging.Logger) Option {
	return func(d *Dialect) {
		d.logger = logging.OrNop(logger)
	}
}

func WithResolverOptions(opts ...references.ResolverOption) Option {
	return func(d *Dialect) {
		d.resolverOpts = append(d.resolverOpts, opts...)
	}
}

func NewDialect(opts ...Option) *Dialect {
	d := &Dialect{logger: logging.NopLogger{}}
	for _, opt := range opts {
		opt(d)
	}
	d.schemaValidator = jsonschema.New(Schema(), jsonschema.WithLogger(d.logger))
	return d
}

func (d *Dialect) SchemaValidator() validator.SchemaValidator {
	return d.schemaValidator
}

// ReferenceValidator returns the reference validator configured from prefs. OpenAPI 3.0 has no
// simple references: a bare name is a relative file reference.
func (d *Dialect) ReferenceValidator(prefs validator.Preferences) validator.ReferenceValidator {
	opts := []references.ResolverOption{
		references.WithTimeout(validator.ReferenceTimeout(prefs)),
		references.WithExternalReferences(validator.ExternalReferences(prefs)),
		references.WithLogger(d.logger),
	}

	return references.NewValidator(
		references.WithSimpleReferences(references.SimpleReferencesUnsupported),
		references.WithResolverOptions(append(opts, d.resolverOpts...)...),
	)
}
