package validator

import (
	"context"
	"fmt"

	"github.com/RepreZen/SwagEdit/document"
	"github.com/RepreZen/SwagEdit/logging"
	"github.com/RepreZen/SwagEdit/model"
	"github.com/RepreZen/SwagEdit/validation"
)

// Provider is an extension validator invoked for every node of the model.
// Implementations must be safe for concurrent use: one provider serves every document being validated.
type Provider interface {
	ID() string
	// IsActive reports whether the provider applies to the document. It is asked once per validation run.
	IsActive(doc *document.Document) bool
	// Validate returns the diagnostics for one node. A nil slice means no diagnostics.
	Validate(ctx context.Context, doc *document.Document, baseURI string, node model.Node) ([]*validation.Error, error)
}

// ProviderFunc adapts a function to an always active Provider.
type ProviderFunc struct {
	Name string
	Func func(ctx context.Context, doc *document.Document, baseURI string, node model.Node) ([]*validation.Error, error)
}

var _ Provider = ProviderFunc{}

func (p ProviderFunc) ID() string                         { return p.Name }
func (p ProviderFunc) IsActive(_ *document.Document) bool { return p.Func != nil }

func (p ProviderFunc) Validate(ctx context.Context, doc *document.Document, baseURI string, node model.Node) ([]*validation.Error, error) {
	return p.Func(ctx, doc, baseURI, node)
}

// activeProviders returns the providers active for doc. A provider that panics is treated as inactive.
func activeProviders(logger logging.Logger, providers []Provider, doc *document.Document) []Provider {
	active := make([]Provider, 0, len(providers))
	for _, p := range providers {
		if isActive(logger, p, doc) {
			active = append(active, p)
		}
	}
	return active
}

func isActive(logger logging.Logger, p Provider, doc *document.Document) (active bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("provider panicked in IsActive", "provider", p.ID(), "panic", fmt.Sprint(r))
			active = false
		}
	}()
	return p.IsActive(doc)
}

// runProvider invokes a provider on one node. Failures are logged and yield no diagnostics.
func runProvider(ctx context.Context, logger logging.Logger, p Provider, doc *document.Document, baseURI string, node model.Node) (errs []*validation.Error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("provider panicked", "provider", p.ID(), "pointer", node.Pointer().String(), "panic", fmt.Sprint(r))
			errs = nil
		}
	}()

	errs, err := p.Validate(ctx, doc, baseURI, node)
	if err != nil {
		logger.Warn("provider failed", "provider", p.ID(), "pointer", node.Pointer().String(), "error", err)
		return nil
	}

	for _, e := range errs {
		if e != nil && e.Rule == "" {
			e.Rule = validation.RuleValidationProvider
		}
	}

	return errs
}
