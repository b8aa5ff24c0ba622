package jsonschema_test

import (
	"sync"
	"testing"

	"github.com/RepreZen/SwagEdit/document"
	"github.com/RepreZen/SwagEdit/jsonschema"
	"github.com/RepreZen/SwagEdit/schema"
	"github.com/RepreZen/SwagEdit/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
  "id": "http://example.com/api.json#",
  "$schema": "http://json-schema.org/draft-04/schema#",
  "type": "object",
  "required": ["info"],
  "additionalProperties": false,
  "patternProperties": {"^x-": {}},
  "properties": {
    "info": {
      "type": "object",
      "required": ["title"],
      "properties": {
        "title": {"type": "string"},
        "version": {"type": "string"}
      }
    },
    "paths": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "properties": {"summary": {"type": "string"}}
      }
    },
    "tags": {"type": "array", "items": {"$ref": "#/definitions/tag"}}
  },
  "definitions": {
    "tag": {"type": "object", "required": ["name"], "properties": {"name": {"type": "string"}}}
  }
}`

func newValidator(t *testing.T) *jsonschema.Validator {
	t.Helper()
	s, err := schema.Parse([]byte(testSchema))
	require.NoError(t, err)
	return jsonschema.New(s)
}

func TestValidator_Validate(t *testing.T) {
	t.Parallel()

	v := newValidator(t)

	tests := []struct {
		name     string
		text     string
		expected []expected
	}{
		{
			name:     "valid document",
			text:     "info:\n  title: Pets\nx-internal: true\n",
			expected: []expected{},
		},
		{
			name:     "missing required property is anchored on the object",
			text:     "info:\n  version: '1'\n",
			expected: []expected{{line: 1, message: "info missing property 'title'"}},
		},
		{
			name:     "type mismatch is anchored on the value",
			text:     "info:\n  title: Pets\npaths:\n  /pets:\n    summary: 3\n",
			expected: []expected{{line: 5, message: "paths./pets.summary got number, want string"}},
		},
		{
			name:     "additional properties are anchored on each key",
			text:     "info:\n  title: Pets\nfoo: 1\nbar: 2\n",
			expected: []expected{{line: 3, message: "additional properties 'bar', 'foo' not allowed"}, {line: 4, message: "additional properties 'bar', 'foo' not allowed"}},
		},
		{
			name:     "error inside referenced definition",
			text:     "info:\n  title: Pets\ntags:\n  - name: a\n  - description: b\n",
			expected: []expected{{line: 5, message: "tags.1 missing property 'name'"}},
		},
		{
			name:     "root of wrong type",
			text:     "- a\n",
			expected: []expected{{line: 1, message: "document got array, want object"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc := document.Parse("api.yaml", []byte(tt.text))
			require.Equal(t, document.StateParsed, doc.State())

			errs := v.Validate(t.Context(), doc).Errors()
			actual := make([]expected, 0, len(errs))
			for _, e := range errs {
				assert.Equal(t, validation.SeverityError, e.Severity)
				assert.Equal(t, validation.RuleValidationSchema, e.Rule)
				actual = append(actual, expected{line: e.Line, message: e.Message})
			}
			assert.Equal(t, tt.expected, actual)
		})
	}
}

type expected struct {
	line    int
	message string
}

func TestValidator_MalformedDocument(t *testing.T) {
	t.Parallel()

	v := newValidator(t)
	assert.Equal(t, 0, v.Validate(t.Context(), document.Parse("api.yaml", []byte("{"))).Len())
	assert.Equal(t, 0, v.Validate(t.Context(), document.New("api.yaml", []byte("a: 1"))).Len())
}

func TestValidator_CompileOnce(t *testing.T) {
	t.Parallel()

	v := newValidator(t)

	var wg sync.WaitGroup
	compiled := make([]any, 8)
	for i := range compiled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := v.Compile()
			assert.NoError(t, err)
			compiled[i] = s
		}()
	}
	wg.Wait()

	for _, s := range compiled {
		assert.Same(t, compiled[0], s)
	}
}

func TestValidator_InvalidSchema(t *testing.T) {
	t.Parallel()

	s, err := schema.Parse([]byte(`{"type": 12}`))
	require.NoError(t, err)
	v := jsonschema.New(s)

	_, err = v.Compile()
	require.Error(t, err)

	doc := document.Parse("api.yaml", []byte("a: 1\n"))
	assert.Equal(t, 0, v.Validate(t.Context(), doc).Len())
}
