package config

import (
	"context"

	"github.com/RepreZen/SwagEdit/document"
	"github.com/RepreZen/SwagEdit/validation"
	"github.com/RepreZen/SwagEdit/yml"
	"gopkg.in/yaml.v3"
)

// Filter applies the rule overrides and ignore paths to the diagnostics of a document. The input set is
// not modified; diagnostics with an overridden severity are copies.
func (c *Config) Filter(ctx context.Context, doc *document.Document, set *validation.Set) *validation.Set {
	if set == nil {
		return validation.NewSet()
	}

	ignored := c.ignoredNodes(ctx, doc)

	out := validation.NewSet()
	for e := range set.All() {
		if e.Node != nil {
			if _, ok := ignored[e.Node]; ok {
				continue
			}
		}

		rule, ok := c.Rule(e.Rule)
		if !ok {
			out.Add(e)
			continue
		}
		if !rule.IsEnabled() {
			continue
		}
		if severity := rule.GetSeverity(e.GetSeverity()); severity != e.GetSeverity() {
			clone := *e
			clone.Severity = severity
			e = &clone
		}
		out.Add(e)
	}
	return out
}

// ignoredNodes returns every node matched by an ignore path together with its descendants, keys included.
func (c *Config) ignoredNodes(ctx context.Context, doc *document.Document) map[*yaml.Node]struct{} {
	if len(c.ignorePaths) == 0 || doc == nil {
		return nil
	}
	root, err := doc.RawTree()
	if err != nil || root == nil {
		return nil
	}

	// queries expect the document node above the content
	wrapped := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}

	ignored := map[*yaml.Node]struct{}{}
	mark := func(_ context.Context, n, _, key *yaml.Node) error {
		if _, ok := ignored[n]; ok {
			return yml.ErrSkipChildren
		}
		if key != nil {
			ignored[key] = struct{}{}
		}
		ignored[n] = struct{}{}
		return nil
	}

	for _, q := range c.ignorePaths {
		for _, n := range q.Query(wrapped) {
			if err := yml.Walk(ctx, n, mark); err != nil {
				return ignored
			}
		}
	}
	return ignored
}
