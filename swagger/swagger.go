// Package swagger is the Swagger 2.0 dialect: its JSON schema and the validators built on it.
package swagger

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

// Schema returns the Swagger 2.0 JSON schema.
func Schema() *schema.Schema {
	return loadSchema()
}

// Version is the document version handled by the dialect.
const Version = document.VersionSwagger2

// Dialect validates Swagger 2.0 documents.
type Dialect struct {
	logger       logging.Logger
	resolverOpts []references.ResolverOption

	schemaValidator *jsonschema.Validator
}

var _ validator.Dialect = (*Dialect)(nil)

// Option configures a Dialect.
type Option func(d *Dialect)

func WithLogger(logger logging.Logger) Option {
	return func(d *Dialect) {
		d.logger = logging.OrNop(logger)
	}
}

// WithResolverOptions configures how referenced documents are loaded, for example with a virtual file system.
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

// ReferenceValidator returns the reference validator configured from prefs. Simple references
// such as "$ref: Pet" resolve against #/definitions and are reported unless
// validator.PrefSwaggerSimpleReferences is false.
func (d *Dialect) ReferenceValidator(prefs validator.Preferences) validator.ReferenceValidator {
	simple := references.SimpleReferencesWarn
	if prefs != nil && !prefs.Bool(validator.PrefSwaggerSimpleReferences, true) {
		simple = references.SimpleReferencesAllowed
	}

	opts := []references.ResolverOption{
		references.WithTimeout(validator.ReferenceTimeout(prefs)),
		references.WithExternalReferences(validator.ExternalReferences(prefs)),
		references.WithLogger(d.logger),
	}

	return references.NewValidator(
		references.WithSimpleReferences(simple),
		references.WithResolverOptions(append(opts, d.resolverOpts...)...),
	)
}
