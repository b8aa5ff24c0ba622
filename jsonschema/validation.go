// Package jsonschema validates documents against the JSON schema of their API description format.
package jsonschema

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/RepreZen/SwagEdit/document"
	"github.com/RepreZen/SwagEdit/jsonpointer"
	"github.com/RepreZen/SwagEdit/logging"
	"github.com/RepreZen/SwagEdit/model"
	"github.com/RepreZen/SwagEdit/schema"
	"github.com/RepreZen/SwagEdit/validation"
	jsValidator "github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Schema messages are rendered in English.
var defaultPrinter = message.NewPrinter(language.English)

// defaultLocation is used for schemas without an id.
const defaultLocation = "schema.json"

// Validator validates documents against one dialect schema. The schema is compiled on first use.
type Validator struct {
	schema *schema.Schema
	logger logging.Logger

	initMutex  sync.Mutex
	compiled   *jsValidator.Schema
	compileErr error
}

// Option configures a Validator.
type Option func(v *Validator)

func WithLogger(logger logging.Logger) Option {
	return func(v *Validator) {
		v.logger = logging.OrNop(logger)
	}
}

func New(s *schema.Schema, opts ...Option) *Validator {
	v := &Validator{
		schema: s,
		logger: logging.NopLogger{},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Compile compiles the schema, once. Later calls return the first result.
func (v *Validator) Compile() (*jsValidator.Schema, error) {
	v.initMutex.Lock()
	defer v.initMutex.Unlock()

	if v.compiled != nil || v.compileErr != nil {
		return v.compiled, v.compileErr
	}

	v.compiled, v.compileErr = v.compile()
	if v.compileErr != nil {
		v.logger.Error("failed to compile schema", "error", v.compileErr)
	} else {
		v.logger.Debug("compiled schema", "id", v.schema.ID())
	}
	return v.compiled, v.compileErr
}

func (v *Validator) compile() (*jsValidator.Schema, error) {
	if v.schema == nil {
		return nil, errors.New("no schema")
	}

	doc, err := jsValidator.UnmarshalJSON(bytes.NewReader(v.schema.Data()))
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}

	location := v.schema.ID()
	if location == "" {
		location = defaultLocation
	}

	c := jsValidator.NewCompiler()
	c.DefaultDraft(jsValidator.Draft4)
	if err := c.AddResource(location, doc); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}

	return c.Compile(location)
}

// Validate validates the structured value of the document and anchors every violation on
// the closest node of the model.
func (v *Validator) Validate(ctx context.Context, doc *document.Document) *validation.Set {
	errs := validation.NewSet()

	value, err := doc.AsJSON()
	if err != nil {
		return errs
	}
	m, err := doc.Model()
	if err != nil {
		return errs
	}
	if ctx.Err() != nil {
		return errs
	}

	compiled, err := v.Compile()
	if err != nil {
		return errs
	}

	err = compiled.Validate(value)
	if err == nil {
		return errs
	}

	var validationErr *jsValidator.ValidationError
	if !errors.As(err, &validationErr) {
		errs.Add(validation.NewNodeError(validation.SeverityError, validation.RuleValidationSchema, err.Error(), m.Root()))
		return errs
	}

	for _, cause := range getRootCauses(validationErr) {
		errs.AddAll(v.toErrors(m, cause)...)
	}

	return errs
}

func getRootCauses(err *jsValidator.ValidationError) []*jsValidator.ValidationError {
	if len(err.Causes) == 0 {
		return []*jsValidator.ValidationError{err}
	}

	var causes []*jsValidator.ValidationError
	for _, cause := range err.Causes {
		causes = append(causes, getRootCauses(cause)...)
	}
	return causes
}

func (v *Validator) toErrors(m *model.Model, cause *jsValidator.ValidationError) []*validation.Error {
	node := nearestNode(m, cause.InstanceLocation)
	if k, ok := cause.ErrorKind.(*kind.AdditionalProperties); ok {
		slices.Sort(k.Properties)
	}
	msg := cause.ErrorKind.LocalizedString(defaultPrinter)

	switch k := cause.ErrorKind.(type) {
	case *kind.AdditionalProperties:
		// anchor on the offending keys so each one is highlighted
		obj, ok := node.(*model.ObjectNode)
		if !ok {
			break
		}
		var errs []*validation.Error
		for _, name := range k.Properties {
			field, ok := obj.Get(name)
			if !ok {
				continue
			}
			errs = append(errs, validation.NewNodeError(validation.SeverityError, validation.RuleValidationSchema, msg, field))
		}
		if len(errs) > 0 {
			return errs
		}
	case *kind.Required:
		msg = fmt.Sprintf("%s %s", fieldName(cause.InstanceLocation), msg)
	case *kind.Type:
		msg = fmt.Sprintf("%s %s", fieldName(cause.InstanceLocation), msg)
	}

	return []*validation.Error{validation.NewNodeError(validation.SeverityError, validation.RuleValidationSchema, msg, node)}
}

// nearestNode returns the node at the location, or its closest existing ancestor.
func nearestNode(m *model.Model, location []string) model.Node {
	parts := slices.Clone(location)
	for {
		if n, ok := m.Find(jsonpointer.PartsToJSONPointer(parts)); ok {
			return n
		}
		if len(parts) == 0 {
			return m.Root()
		}
		parts = parts[:len(parts)-1]
	}
}

func fieldName(location []string) string {
	if len(location) == 0 {
		return "document"
	}
	return strings.Join(location, ".")
}
