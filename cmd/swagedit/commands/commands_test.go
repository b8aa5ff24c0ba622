package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	gojson "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validSwagger = `swagger: '2.0'
info:
  title: Pets
  version: '1'
paths: {}
`

const invalidOpenAPI = `openapi: 3.0.0
info:
  title: Pets
  version: '1'
paths: {}
components:
  schemas:
    Pets:
      type: array
`

const exampleOpenAPI = `openapi: 3.0.0
info:
  title: Pets
  version: '1'
paths:
  /pets:
    get:
      responses:
        '200':
          description: pets
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Pet'
components:
  schemas:
    Pet:
      type: object
      properties:
        name:
          type: string
          example: Rex
        age:
          type: integer
`

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommand(BuildInfo{Version: "1.2.3", Commit: "abcdef0", Date: "unknown"})
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
	return dir
}

func TestValidate_Text(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{"valid.yaml": validSwagger, "invalid.yaml": invalidOpenAPI})

	out, err := execute(t, "", "validate", filepath.Join(dir, "valid.yaml"), filepath.Join(dir, "invalid.yaml"))
	require.ErrorIs(t, err, ErrValidationFailed)

	assert.Contains(t, out, filepath.Join(dir, "invalid.yaml")+":9:")
	assert.Contains(t, out, "error: array missing items [validation-array-items]\n")
	assert.NotContains(t, out, "valid.yaml:")
	assert.True(t, strings.HasSuffix(out, "✗ 1 error, 0 warnings in 2 documents\n"), out)
}

func TestValidate_Valid(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{"valid.yaml": validSwagger})

	out, err := execute(t, "", "validate", filepath.Join(dir, "valid.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "✓ 1 document valid\n", out)
}

func TestValidate_JSON(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{
		"valid.yaml":     validSwagger,
		"invalid.yaml":   invalidOpenAPI,
		"malformed.yaml": "info: [\n",
	})

	files := []string{filepath.Join(dir, "invalid.yaml"), filepath.Join(dir, "valid.yaml"), filepath.Join(dir, "malformed.yaml"), filepath.Join(dir, "missing.yaml")}
	out, err := execute(t, "", append([]string{"validate", "--format", "json", "--concurrency", "2"}, files...)...)
	require.ErrorIs(t, err, ErrValidationFailed)

	var docs []jsonDocument
	require.NoError(t, gojson.Unmarshal([]byte(out), &docs))
	require.Len(t, docs, 4)

	assert.Equal(t, files[0], docs[0].File)
	assert.False(t, docs[0].Valid)
	require.Len(t, docs[0].Diagnostics, 1)
	assert.Equal(t, 9, docs[0].Diagnostics[0].Line)
	assert.Equal(t, "error", docs[0].Diagnostics[0].Severity)
	assert.Equal(t, "validation-array-items", docs[0].Diagnostics[0].Rule)
	assert.Equal(t, "array missing items", docs[0].Diagnostics[0].Message)
	assert.Equal(t, "Add an items object to the array schema.", docs[0].Diagnostics[0].HowToFix)

	assert.Equal(t, files[1], docs[1].File)
	assert.True(t, docs[1].Valid)
	assert.Empty(t, docs[1].Diagnostics)

	assert.False(t, docs[2].Valid)
	require.Len(t, docs[2].Diagnostics, 1)
	assert.Equal(t, "error", docs[2].Diagnostics[0].Severity)

	assert.False(t, docs[3].Valid)
	assert.Contains(t, docs[3].Error, "failed to read file")
}

func TestValidate_Stdin(t *testing.T) {
	t.Parallel()

	out, err := execute(t, invalidOpenAPI, "validate", "--format", "json", "-")
	require.ErrorIs(t, err, ErrValidationFailed)

	var docs []jsonDocument
	require.NoError(t, gojson.Unmarshal([]byte(out), &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, stdinLocation, docs[0].File)
	require.Len(t, docs[0].Diagnostics, 1)
}

func TestValidate_Config(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{
		"invalid.yaml": invalidOpenAPI,
		"swagedit.toml": `[[rules]]
id = "validation-array-items"
severity = "warning"
`,
		"swagedit.yaml": "rules:\n  - id: validation-array-items\n    enabled: false\n",
	})

	out, err := execute(t, "", "validate", "--config", filepath.Join(dir, "swagedit.toml"), filepath.Join(dir, "invalid.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "warning: array missing items")
	assert.True(t, strings.HasSuffix(out, "⚠ 0 errors, 1 warning in 1 document\n"), out)

	out, err = execute(t, "", "validate", "-c", filepath.Join(dir, "swagedit.yaml"), filepath.Join(dir, "invalid.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "✓ 1 document valid\n", out)

	_, err = execute(t, "", "validate", "-c", filepath.Join(dir, "missing.yaml"), filepath.Join(dir, "invalid.yaml"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrValidationFailed)
}

func TestValidate_Flags(t *testing.T) {
	t.Parallel()

	_, err := execute(t, "", "validate", "--format", "xml", "api.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")

	_, err = execute(t, "", "validate")
	require.Error(t, err)
}

func TestValidate_Context(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{"invalid.yaml": invalidOpenAPI})

	out, err := execute(t, "", "validate", "--context", filepath.Join(dir, "invalid.yaml"))
	require.ErrorIs(t, err, ErrValidationFailed)
	assert.Contains(t, out, "9 |       type: array\n")
}

func TestExample(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{"api.yaml": exampleOpenAPI, "swagger.yaml": validSwagger})

	out, err := execute(t, "", "example", filepath.Join(dir, "api.yaml"), "#/paths/~1pets/get/responses/200/content/application~1json/example")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name": "Rex", "age": 0}`, out)

	_, err = execute(t, "", "example", filepath.Join(dir, "api.yaml"), "/info/title")
	require.Error(t, err)

	_, err = execute(t, "", "example", filepath.Join(dir, "swagger.yaml"), "/paths")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not an OpenAPI 3.0 document")
}

func TestVersion(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "swagedit 1.2.3\nBuild: abcdef0\n", out)

	out, err = execute(t, "", "--version")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3\nBuild: abcdef0\n", out)
}

func TestRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		args        []string
		contains    []string
		notContains []string
		wantErr     string
	}{
		{
			name: "list",
			args: []string{"rules"},
			contains: []string{
				"validation-array-items  Array type without items.\n",
				"validation-duplicate-key  Duplicate key.\n",
				"validation-unresolved-reference  Unresolved reference.\n",
			},
			notContains: []string{"Fix: "},
		},
		{
			name: "list with details",
			args: []string{"rules", "--details"},
			contains: []string{
				"validation-simple-reference  Simple reference.\n",
				"  Fix: Use the full form #/definitions/Pet.\n",
			},
		},
		{
			name: "single rule",
			args: []string{"rules", "validation-duplicate-key"},
			contains: []string{
				"validation-duplicate-key  Duplicate key.\n",
				"  Duplicate keys are not allowed in objects.",
				"  Fix: Remove or rename the repeated keys.\n",
			},
			notContains: []string{"validation-schema"},
		},
		{
			name:    "unknown rule",
			args:    []string{"rules", "no-such-rule"},
			wantErr: `unknown rule "no-such-rule"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, err := execute(t, "", tt.args...)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			for _, c := range tt.contains {
				assert.Contains(t, out, c)
			}
			for _, c := range tt.notContains {
				assert.NotContains(t, out, c)
			}
		})
	}
}
