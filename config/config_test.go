package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/RepreZen/SwagEdit/config"
	"github.com/RepreZen/SwagEdit/document"
	"github.com/RepreZen/SwagEdit/errors"
	"github.com/RepreZen/SwagEdit/jsonpointer"
	"github.com/RepreZen/SwagEdit/validation"
	"github.com/RepreZen/SwagEdit/validator"
	"github.com/RepreZen/SwagEdit/yml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const yamlConfig = `preferences:
  swagger.references.simple: false
  references.timeout: 2000
rules:
  - id: validation-duplicate-key
    severity: error
  - id: validation-unresolved-reference
    enabled: false
ignore:
  - "$['x-internal']"
providers:
  paths: ["rules/*.ts"]
  timeout: 2s
`

const tomlConfig = `ignore = ["$['x-internal']"]

[preferences]
"swagger.references.simple" = false
"references.timeout" = 2000

[[rules]]
id = "validation-duplicate-key"
severity = "error"

[[rules]]
id = "validation-unresolved-reference"
enabled = false

[providers]
paths = ["rules/*.ts"]
timeout = "2s"
`

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		text   string
		format config.Format
	}{
		{name: "yaml", text: yamlConfig, format: config.FormatYAML},
		{name: "toml", text: tomlConfig, format: config.FormatTOML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := config.LoadConfig(strings.NewReader(tt.text), tt.format)
			require.NoError(t, err)

			prefs := cfg.PreferenceStore()
			assert.False(t, prefs.Bool("swagger.references.simple", true))
			assert.Equal(t, 2*time.Second, validator.ReferenceTimeout(prefs))

			rule, ok := cfg.Rule("validation-duplicate-key")
			require.True(t, ok)
			assert.True(t, rule.IsEnabled())
			assert.Equal(t, validation.SeverityError, rule.GetSeverity(validation.SeverityWarning))

			rule, ok = cfg.Rule("validation-unresolved-reference")
			require.True(t, ok)
			assert.False(t, rule.IsEnabled())
			assert.Equal(t, validation.SeverityWarning, rule.GetSeverity(validation.SeverityWarning))

			_, ok = cfg.Rule("validation-schema")
			assert.False(t, ok)

			assert.Equal(t, []string{"$['x-internal']"}, cfg.Ignore)

			providers := cfg.ProviderConfig()
			require.NotNil(t, providers)
			assert.Equal(t, []string{"rules/*.ts"}, providers.Paths)
			assert.Equal(t, 2*time.Second, providers.GetTimeout())
		})
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		text    string
		format  config.Format
		invalid bool
	}{
		{name: "malformed yaml", text: "rules: [", format: config.FormatYAML},
		{name: "malformed toml", text: "rules = [", format: config.FormatTOML},
		{name: "unknown severity", text: "rules:\n  - id: a\n    severity: fatal\n", format: config.FormatYAML},
		{name: "rule without id", text: "rules:\n  - severity: error\n", format: config.FormatYAML, invalid: true},
		{name: "unknown jsonpath mode", text: "jsonpath: xpath\n", format: config.FormatYAML, invalid: true},
		{name: "invalid ignore path", text: "ignore: ['$[']\n", format: config.FormatYAML, invalid: true},
		{name: "invalid legacy ignore path", text: "jsonpath: legacy\nignore: ['$[']\n", format: config.FormatYAML, invalid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := config.LoadConfig(strings.NewReader(tt.text), tt.format)
			require.Error(t, err)
			assert.Equal(t, tt.invalid, errors.Is(err, config.ErrInvalidConfig))
		})
	}
}

func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	assert.Nil(t, cfg.ProviderConfig())
	assert.Empty(t, cfg.PreferenceStore())

	set := validation.NewSet(validation.NewLineError(validation.SeverityWarning, validation.RuleValidationUnresolvedReference, "x", 1, 1))
	assert.True(t, set.Equal(cfg.Filter(t.Context(), nil, set)))
	assert.Equal(t, 0, cfg.Filter(t.Context(), nil, nil).Len())
}

func TestLoadConfigFromFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, ok := config.FindConfig(dir)
	assert.False(t, ok)

	path := filepath.Join(dir, ".swagedit.toml")
	require.NoError(t, os.WriteFile(path, []byte(tomlConfig), 0o600))

	found, ok := config.FindConfig(dir)
	require.True(t, ok)
	assert.Equal(t, path, found)

	// yaml is preferred over toml
	yamlPath := filepath.Join(dir, ".swagedit.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(yamlConfig), 0o600))
	found, ok = config.FindConfig(dir)
	require.True(t, ok)
	assert.Equal(t, yamlPath, found)

	cfg, err := config.LoadConfigFromFile(path)
	require.NoError(t, err)

	providers := cfg.ProviderConfig()
	require.NotNil(t, providers)
	absDir, err := filepath.Abs(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(absDir, "rules/*.ts")}, providers.Paths)

	_, err = config.LoadConfigFromFile(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

const filterDocument = `swagger: '2.0'
info:
  title: Pets
paths:
  /pets:
    get:
      responses: {}
x-internal:
  a:
    b: 1
`

func TestConfig_Filter(t *testing.T) {
	t.Parallel()

	for _, mode := range []string{"", "rfc9535", "legacy"} {
		t.Run("mode "+mode, func(t *testing.T) {
			t.Parallel()

			cfg, err := config.LoadConfig(strings.NewReader("jsonpath: '"+mode+"'\n"+yamlConfig), config.FormatYAML)
			require.NoError(t, err)

			doc := document.Parse("api.yaml", []byte(filterDocument))
			require.Equal(t, document.StateParsed, doc.State())
			m, err := doc.Model()
			require.NoError(t, err)

			nodeError := func(severity validation.Severity, rule, message string, pointer jsonpointer.JSONPointer) *validation.Error {
				n, ok := m.Find(pointer)
				require.True(t, ok, pointer)
				return validation.NewNodeError(severity, rule, message, n)
			}

			duplicate := nodeError(validation.SeverityWarning, validation.RuleValidationDuplicateKey, "duplicate key: get", "/paths/~1pets/get")
			set := validation.NewSet(
				duplicate,
				nodeError(validation.SeverityWarning, validation.RuleValidationUnresolvedReference, "reference", "/info/title"),
				nodeError(validation.SeverityError, validation.RuleValidationSchema, "ignored", "/x-internal/a/b"),
				nodeError(validation.SeverityError, validation.RuleValidationSchema, "kept", "/info"),
			)

			filtered := map[string]validation.Severity{}
			for _, e := range cfg.Filter(t.Context(), doc, set).Errors() {
				filtered[e.Message] = e.Severity
			}
			assert.Equal(t, map[string]validation.Severity{
				"duplicate key: get": validation.SeverityError,
				"kept":               validation.SeverityError,
			}, filtered)

			assert.Equal(t, validation.SeverityWarning, duplicate.Severity, "input diagnostics are not modified")
			assert.Equal(t, 4, set.Len())
		})
	}
}

const filterKeysDocument = `swagger: '2.0'
x-internal:
  a: 1
  a: 2
  shared: &shared
    b: 1
paths: {}
x-public:
  a: 1
  a: 2
  copy: *shared
`

func TestConfig_Filter_IgnoresKeysBelowMatches(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(strings.NewReader("ignore:\n  - \"$['x-internal']\"\n"), config.FormatYAML)
	require.NoError(t, err)

	doc := document.Parse("api.yaml", []byte(filterKeysDocument))
	require.Equal(t, document.StateParsed, doc.State())
	root, err := doc.RawTree()
	require.NoError(t, err)

	_, internal, ok := yml.GetMapElementNodes(root, "x-internal")
	require.True(t, ok)
	_, shared, ok := yml.GetMapElementNodes(internal, "shared")
	require.True(t, ok)
	sharedKey, _, ok := yml.GetMapElementNodes(shared, "b")
	require.True(t, ok)
	_, public, ok := yml.GetMapElementNodes(root, "x-public")
	require.True(t, ok)
	_, alias, ok := yml.GetMapElementNodes(public, "copy")
	require.True(t, ok)
	require.Equal(t, yaml.AliasNode, alias.Kind)

	set := validator.CheckDuplicateKeys(t.Context(), root)
	require.Equal(t, 4, set.Len())
	set.Add(validation.NewRawError(validation.SeverityError, validation.RuleValidationSchema, "anchored key", sharedKey))
	set.Add(validation.NewRawError(validation.SeverityError, validation.RuleValidationSchema, "alias", alias))

	var lines []int
	var messages []string
	for _, e := range cfg.Filter(t.Context(), doc, set).Errors() {
		lines = append(lines, e.GetLineNumber())
		messages = append(messages, e.Message)
	}
	assert.Equal(t, []int{9, 10, 11}, lines)
	assert.Equal(t, []string{"duplicate key: a", "duplicate key: a", "alias"}, messages)
}
