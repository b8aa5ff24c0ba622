// Package config loads the .swagedit configuration file: dialect preferences, rule overrides,
// ignored document paths and extension provider scripts.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/RepreZen/SwagEdit/errors"
	"github.com/RepreZen/SwagEdit/providers"
	"github.com/RepreZen/SwagEdit/validation"
	"github.com/RepreZen/SwagEdit/validator"
)

// ErrInvalidConfig is returned for configurations that parse but cannot be applied.
const ErrInvalidConfig = errors.Error("invalid configuration")

// JSONPathMode selects the implementation evaluating ignore paths.
type JSONPathMode string

const (
	// JSONPathRFC9535 evaluates ignore paths per RFC 9535. It is the default.
	JSONPathRFC9535 JSONPathMode = "rfc9535"
	// JSONPathLegacy evaluates ignore paths with the yaml-jsonpath dialect.
	JSONPathLegacy JSONPathMode = "legacy"
)

// Config is the content of a configuration file.
type Config struct {
	// Preferences are passed to the dialects, see the validator.Pref* keys.
	Preferences map[string]any `yaml:"preferences,omitempty" toml:"preferences,omitempty" json:"preferences,omitempty"`

	// Rules override the severity of diagnostics or disable them, by rule ID. Later entries win.
	Rules []RuleEntry `yaml:"rules,omitempty" toml:"rules,omitempty" json:"rules,omitempty"`

	// Ignore holds JSONPath expressions; diagnostics anchored inside a matched node are dropped.
	Ignore []string `yaml:"ignore,omitempty" toml:"ignore,omitempty" json:"ignore,omitempty"`

	// JSONPath selects the ignore path implementation.
	JSONPath JSONPathMode `yaml:"jsonpath,omitempty" toml:"jsonpath,omitempty" json:"jsonpath,omitempty"`

	// Providers configures extension provider scripts. Relative paths are relative to the configuration file.
	Providers *providers.Config `yaml:"providers,omitempty" toml:"providers,omitempty" json:"providers,omitempty"`

	dir         string
	ignorePaths []queryable
	rules       map[string]RuleEntry
}

// RuleEntry configures one rule.
type RuleEntry struct {
	ID string `yaml:"id" toml:"id" json:"id"`

	// Enabled drops the rule's diagnostics when false.
	Enabled *bool `yaml:"enabled,omitempty" toml:"enabled,omitempty" json:"enabled,omitempty"`

	// Severity overrides the severity of the rule's diagnostics.
	Severity *validation.Severity `yaml:"severity,omitempty" toml:"severity,omitempty" json:"severity,omitempty"`
}

// IsEnabled reports whether the rule's diagnostics are kept.
func (r RuleEntry) IsEnabled() bool {
	return r.Enabled == nil || *r.Enabled
}

// GetSeverity returns the effective severity, falling back to the reported one.
func (r RuleEntry) GetSeverity(reported validation.Severity) validation.Severity {
	if r.Severity != nil {
		return *r.Severity
	}
	return reported
}

// NewConfig returns an empty configuration, which changes nothing.
func NewConfig() *Config {
	c := &Config{}
	_ = c.Validate()
	return c
}

// Validate checks the configuration and compiles its ignore paths.
func (c *Config) Validate() error {
	switch c.JSONPath {
	case "", JSONPathRFC9535, JSONPathLegacy:
	default:
		return ErrInvalidConfig.Wrapf("unknown jsonpath mode %q", c.JSONPath)
	}

	c.rules = make(map[string]RuleEntry, len(c.Rules))
	for i, r := range c.Rules {
		if r.ID == "" {
			return ErrInvalidConfig.Wrapf("rules[%d]: missing id", i)
		}
		c.rules[r.ID] = r
	}

	c.ignorePaths = make([]queryable, 0, len(c.Ignore))
	for i, expr := range c.Ignore {
		q, err := newPath(expr, c.JSONPath)
		if err != nil {
			return ErrInvalidConfig.Wrap(fmt.Errorf("ignore[%d] %q: %w", i, expr, err))
		}
		c.ignorePaths = append(c.ignorePaths, q)
	}

	return nil
}

// Rule returns the entry configuring a rule.
func (c *Config) Rule(id string) (RuleEntry, bool) {
	r, ok := c.rules[id]
	return r, ok
}

// PreferenceStore returns the preferences as the store read by the dialects.
func (c *Config) PreferenceStore() validator.MapPreferences {
	prefs := make(validator.MapPreferences, len(c.Preferences))
	for k, v := range c.Preferences {
		prefs[k] = v
	}
	return prefs
}

// ProviderConfig returns the provider configuration with paths resolved against the directory
// of the configuration file. It is nil when no providers are configured.
func (c *Config) ProviderConfig() *providers.Config {
	if c.Providers == nil || len(c.Providers.Paths) == 0 {
		return nil
	}

	out := &providers.Config{Timeout: c.Providers.Timeout}
	for _, p := range c.Providers.Paths {
		if c.dir != "" && !filepath.IsAbs(p) {
			p = filepath.Join(c.dir, p)
		}
		out.Paths = append(out.Paths, p)
	}
	return out
}
