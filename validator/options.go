package validator

import (
	"github.com/RepreZen/SwagEdit/logging"
	"github.com/RepreZen/SwagEdit/schema"
)

var defaultTemplate = mustTemplate(schema.DefaultTemplate)

func mustTemplate(s string) any {
	t, err := schema.ParseTemplate(s)
	if err != nil {
		panic(err)
	}
	return t
}

type options struct {
	providers []Provider
	prefs     Preferences
	template  any
	logger    logging.Logger
}

// Option configures a Validator.
type Option func(o *options)

// WithProviders appends extension providers. The list is fixed once the Validator is created.
func WithProviders(providers ...Provider) Option {
	return func(o *options) {
		o.providers = append(o.providers, providers...)
	}
}

// WithPreferences sets the preference store queried by the dialect.
func WithPreferences(prefs Preferences) Option {
	return func(o *options) {
		if prefs != nil {
			o.prefs = prefs
		}
	}
}

// WithLogger sets the logger used to report provider failures.
func WithLogger(logger logging.Logger) Option {
	return func(o *options) {
		o.logger = logging.OrNop(logger)
	}
}

// WithSchemaTemplate replaces the type definition content identifying schema objects,
// given as JSON. Invalid JSON leaves the default in place.
func WithSchemaTemplate(template string) Option {
	return func(o *options) {
		if t, err := schema.ParseTemplate(template); err == nil {
			o.template = t
		}
	}
}
