// Package dialects maps document versions to their dialects and validates documents of any supported version.
package dialects

import (
	"context"
	"runtime"

	"github.com/RepreZen/SwagEdit/document"
	"github.com/RepreZen/SwagEdit/errors"
	"github.com/RepreZen/SwagEdit/logging"
	"github.com/RepreZen/SwagEdit/openapi3"
	"github.com/RepreZen/SwagEdit/references"
	"github.com/RepreZen/SwagEdit/schema"
	"github.com/RepreZen/SwagEdit/swagger"
	"github.com/RepreZen/SwagEdit/validation"
	"github.com/RepreZen/SwagEdit/validator"
	"golang.org/x/sync/errgroup"
)

// ErrUnsupportedVersion is returned for documents declaring neither swagger 2.0 nor openapi 3.0.x.
const ErrUnsupportedVersion = errors.Error("unsupported document version")

// SchemaFor returns the JSON schema of a version, nil when the version is not supported.
func SchemaFor(v document.Version) *schema.Schema {
	switch v {
	case document.VersionSwagger2:
		return swagger.Schema()
	case document.VersionOpenAPI3:
		return openapi3.Schema()
	default:
		return nil
	}
}

// Parse parses text and binds its model to the schema of the version it declares.
func Parse(location string, text []byte) *document.Document {
	return document.Parse(location, text, document.WithSchemaFor(SchemaFor))
}

type options struct {
	logger        logging.Logger
	resolverOpts  []references.ResolverOption
	validatorOpts []validator.Option
	concurrency   int
}

// Option configures a Registry.
type Option func(o *options)

func WithLogger(logger logging.Logger) Option {
	return func(o *options) {
		o.logger = logging.OrNop(logger)
	}
}

// WithResolverOptions configures how referenced documents are loaded by every dialect.
func WithResolverOptions(opts ...references.ResolverOption) Option {
	return func(o *options) {
		o.resolverOpts = append(o.resolverOpts, opts...)
	}
}

// WithValidatorOptions passes options, such as preferences and providers, to the validator of every dialect.
func WithValidatorOptions(opts ...validator.Option) Option {
	return func(o *options) {
		o.validatorOpts = append(o.validatorOpts, opts...)
	}
}

// WithConcurrency bounds the number of documents ValidateAll validates at once. Values below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// Registry holds one validator per supported version. It is safe for concurrent use.
type Registry struct {
	validators  map[document.Version]*validator.Validator
	logger      logging.Logger
	concurrency int
}

// New creates the validators of every supported version with the same options.
func New(opts ...Option) *Registry {
	o := &options{
		logger:      logging.NopLogger{},
		concurrency: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(o)
	}

	validatorOpts := append([]validator.Option{validator.WithLogger(o.logger)}, o.validatorOpts...)

	return &Registry{
		validators: map[document.Version]*validator.Validator{
			document.VersionSwagger2: validator.New(
				swagger.NewDialect(swagger.WithLogger(o.logger), swagger.WithResolverOptions(o.resolverOpts...)),
				validatorOpts...,
			),
			document.VersionOpenAPI3: validator.New(
				openapi3.NewDialect(openapi3.WithLogger(o.logger), openapi3.WithResolverOptions(o.resolverOpts...)),
				validatorOpts...,
			),
		},
		logger:      o.logger,
		concurrency: o.concurrency,
	}
}

// ForVersion returns the validator of a version.
func (r *Registry) ForVersion(v document.Version) (*validator.Validator, error) {
	val, ok := r.validators[v]
	if !ok {
		return nil, ErrUnsupportedVersion.Wrapf("%q", string(v))
	}
	return val, nil
}

// Validate validates a parsed document with the validator of its version. A malformed document
// yields an empty set; a document of an unknown version yields ErrUnsupportedVersion.
func (r *Registry) Validate(ctx context.Context, doc *document.Document, baseURI string) (*validation.Set, error) {
	if doc == nil || doc.State() != document.StateParsed {
		return validation.NewSet(), nil
	}

	val, err := r.ForVersion(doc.Version())
	if err != nil {
		return nil, err
	}
	return val.Validate(ctx, doc, baseURI), nil
}

// ValidateAll validates independent documents in parallel. The result holds one set per document,
// in input order; documents of an unsupported version get a nil set and the first such error is returned.
func (r *Registry) ValidateAll(ctx context.Context, docs []*document.Document) ([]*validation.Set, error) {
	results := make([]*validation.Set, len(docs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	var unsupported error
	for i, doc := range docs {
		val, err := r.ForVersion(docVersion(doc))
		if err != nil && doc != nil && doc.State() == document.StateParsed {
			if unsupported == nil {
				unsupported = ErrUnsupportedVersion.Wrapf("%s", doc.Location())
			}
			r.logger.Debug("skipping document", "location", doc.Location(), "error", err)
			continue
		}

		g.Go(func() error {
			if val == nil {
				results[i] = validation.NewSet()
				return nil
			}
			results[i] = val.Validate(ctx, doc, "")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, unsupported
}

func docVersion(doc *document.Document) document.Version {
	if doc == nil {
		return document.VersionUnknown
	}
	return doc.Version()
}
