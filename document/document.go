// Package document holds immutable snapshots of an API description document together with
// everything derived from its text: the raw tree, the structured value and the semantic model.
package document

import (
	stdjson "encoding/json"
	"fmt"
	"strings"

	"github.com/RepreZen/SwagEdit/errors"
	"github.com/RepreZen/SwagEdit/json"
	"github.com/RepreZen/SwagEdit/model"
	"github.com/RepreZen/SwagEdit/schema"
	"github.com/RepreZen/SwagEdit/yml"
	"gopkg.in/yaml.v3"
)

const (
	// ErrNotParsed is returned by the accessors of a document that has not been parsed yet.
	ErrNotParsed = errors.Error("document not parsed")
	// ErrMalformed is returned by the accessors of a document whose text could not be parsed.
	ErrMalformed = errors.Error("document is malformed")
)

// State is the parse state of a document snapshot.
type State int

const (
	StateUnparsed State = iota
	StateParsed
	StateMalformed
)

func (s State) String() string {
	switch s {
	case StateUnparsed:
		return "unparsed"
	case StateParsed:
		return "parsed"
	case StateMalformed:
		return "malformed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Version is the API description format version declared by a document.
type Version string

const (
	VersionUnknown  Version = ""
	VersionSwagger2 Version = "2.0"
	VersionOpenAPI3 Version = "3.0"
)

// ParseError describes why a document could not be parsed.
type ParseError struct {
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%d:%d] %s", e.Line, e.Column, e.Message)
	}
	return e.Message
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Document is one snapshot of a document's text. A snapshot is never mutated; parsing returns a new one.
type Document struct {
	location string
	text     []byte
	state    State

	raw      *yaml.Node
	value    any
	model    *model.Model
	version  Version
	parseErr *ParseError
}

// New creates an unparsed document. location is used as the base for relative references.
func New(location string, text []byte) *Document {
	return &Document{location: location, text: text, state: StateUnparsed}
}

// Parse creates a document and parses it.
func Parse(location string, text []byte, opts ...ParseOption) *Document {
	return New(location, text).Parse(opts...)
}

func (d *Document) Location() string {
	return d.location
}

func (d *Document) Text() []byte {
	return d.text
}

func (d *Document) State() State {
	return d.state
}

// Version returns the declared format version, VersionUnknown when not parsed or not declared.
func (d *Document) Version() Version {
	return d.version
}

// ParseError returns the parse failure of a malformed document, nil otherwise.
func (d *Document) ParseError() *ParseError {
	return d.parseErr
}

// AsJSON returns the structured value of the document: maps, slices, strings, bools, nil and json.Number.
func (d *Document) AsJSON() (any, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	return d.value, nil
}

// RawTree returns the raw tree, which preserves repeated keys and positions.
func (d *Document) RawTree() (*yaml.Node, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	return d.raw, nil
}

// Model returns the semantic model.
func (d *Document) Model() (*model.Model, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	return d.model, nil
}

func (d *Document) check() error {
	switch d.state {
	case StateParsed:
		return nil
	case StateMalformed:
		return ErrMalformed.Wrap(d.parseErr)
	default:
		return ErrNotParsed
	}
}

type parseOptions struct {
	schemaFor func(Version) *schema.Schema
}

// ParseOption configures Parse.
type ParseOption func(o *parseOptions)

// WithSchema binds the model to the given dialect schema regardless of the declared version.
func WithSchema(s *schema.Schema) ParseOption {
	return func(o *parseOptions) {
		o.schemaFor = func(Version) *schema.Schema { return s }
	}
}

// WithSchemaFor binds the model to the schema returned for the declared version. A nil schema leaves nodes untyped.
func WithSchemaFor(f func(Version) *schema.Schema) ParseOption {
	return func(o *parseOptions) {
		o.schemaFor = f
	}
}

// Parse parses the document text and returns the parsed (or malformed) snapshot.
// Parsing a snapshot that is already parsed or malformed returns it unchanged.
func (d *Document) Parse(opts ...ParseOption) *Document {
	if d.state != StateUnparsed {
		return d
	}

	o := &parseOptions{}
	for _, opt := range opts {
		opt(o)
	}

	parsed := &Document{location: d.location, text: d.text}

	raw, err := yml.Parse(d.text)
	if err != nil {
		return parsed.malformed(err)
	}

	value, err := json.ToValue(raw)
	if err != nil {
		return parsed.malformed(err)
	}
	version := DetectVersion(value)

	var buildOpts []model.BuildOption
	if o.schemaFor != nil {
		if s := o.schemaFor(version); s != nil {
			buildOpts = append(buildOpts, model.WithSchema(s))
		}
	}

	m, err := model.Build(raw, buildOpts...)
	if err != nil {
		return parsed.malformed(err)
	}

	parsed.state = StateParsed
	parsed.raw = raw
	parsed.value = value
	parsed.model = m
	parsed.version = version

	return parsed
}

func (d *Document) malformed(err error) *Document {
	d.state = StateMalformed
	d.parseErr = &ParseError{Message: err.Error(), Err: err}
	if line, column, msg, ok := yml.ErrorPosition(err); ok {
		d.parseErr.Line = line
		d.parseErr.Column = column
		d.parseErr.Message = msg
	}
	return d
}

// DetectVersion returns the version declared by the swagger or openapi field of a structured value.
func DetectVersion(value any) Version {
	root, ok := value.(map[string]any)
	if !ok {
		return VersionUnknown
	}

	// an unquoted version is a number; the document is still bound to the dialect so the
	// schema validator reports the type mismatch
	switch v := root["swagger"].(type) {
	case string:
		if v == string(VersionSwagger2) {
			return VersionSwagger2
		}
	case stdjson.Number:
		if f, err := v.Float64(); err == nil && f == 2 {
			return VersionSwagger2
		}
	}

	switch v := root["openapi"].(type) {
	case string:
		if v == string(VersionOpenAPI3) || strings.HasPrefix(v, string(VersionOpenAPI3)+".") {
			return VersionOpenAPI3
		}
	case stdjson.Number:
		if f, err := v.Float64(); err == nil && f == 3 {
			return VersionOpenAPI3
		}
	}

	return VersionUnknown
}
