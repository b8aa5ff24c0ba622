package document_test

import (
	"testing"

	"github.com/RepreZen/SwagEdit/document"
	"github.com/RepreZen/SwagEdit/errors"
	"github.com/RepreZen/SwagEdit/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_States(t *testing.T) {
	t.Parallel()

	d := document.New("file:///api.yaml", []byte("swagger: '2.0'\n"))
	assert.Equal(t, document.StateUnparsed, d.State())

	_, err := d.AsJSON()
	require.Error(t, err)
	assert.True(t, errors.Is(err, document.ErrNotParsed))
	_, err = d.Model()
	assert.True(t, errors.Is(err, document.ErrNotParsed))

	parsed := d.Parse()
	assert.Equal(t, document.StateParsed, parsed.State())
	assert.Equal(t, document.StateUnparsed, d.State(), "parsing returns a new snapshot")
	assert.Same(t, parsed, parsed.Parse())

	value, err := parsed.AsJSON()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"swagger": "2.0"}, value)

	raw, err := parsed.RawTree()
	require.NoError(t, err)
	assert.NotNil(t, raw)

	m, err := parsed.Model()
	require.NoError(t, err)
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, "file:///api.yaml", parsed.Location())
}

func TestDocument_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		text       string
		expectLine int
	}{
		{name: "invalid indentation", text: "a: b\n c: d\n  - e\n", expectLine: 2},
		{name: "unclosed flow mapping", text: "{a: [1, 2\n", expectLine: 0},
		{name: "empty", text: "", expectLine: 0},
		{name: "multiple documents", text: "a: 1\n---\nb: 2\n", expectLine: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := document.Parse("api.yaml", []byte(tt.text))
			assert.Equal(t, document.StateMalformed, d.State())
			require.NotNil(t, d.ParseError())
			if tt.expectLine > 0 {
				assert.Equal(t, tt.expectLine, d.ParseError().Line)
			}

			_, err := d.AsJSON()
			require.Error(t, err)
			assert.True(t, errors.Is(err, document.ErrMalformed))

			_, err = d.RawTree()
			assert.True(t, errors.Is(err, document.ErrMalformed))
		})
	}
}

func TestDetectVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		text     string
		expected document.Version
	}{
		{name: "swagger", text: "swagger: '2.0'", expected: document.VersionSwagger2},
		{name: "unquoted swagger", text: "swagger: 2.0", expected: document.VersionSwagger2},
		{name: "openapi 3.0.3", text: "openapi: 3.0.3", expected: document.VersionOpenAPI3},
		{name: "openapi 3.0", text: "openapi: '3.0'", expected: document.VersionOpenAPI3},
		{name: "openapi 3.1 unsupported", text: "openapi: 3.1.0", expected: document.VersionUnknown},
		{name: "none", text: "info: {}", expected: document.VersionUnknown},
		{name: "scalar document", text: "hello", expected: document.VersionUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d := document.Parse("api.yaml", []byte(tt.text))
			require.Equal(t, document.StateParsed, d.State())
			assert.Equal(t, tt.expected, d.Version())
		})
	}
}

func TestDocument_WithSchemaFor(t *testing.T) {
	t.Parallel()

	s, err := schema.Parse([]byte(`{"properties": {"definitions": {"additionalProperties": {"$ref": "#/definitions/schema"}}}, "definitions": {"schema": {}}}`))
	require.NoError(t, err)

	var requested document.Version
	d := document.Parse("api.yaml", []byte("swagger: '2.0'\ndefinitions:\n  Pet: {}\n"), document.WithSchemaFor(func(v document.Version) *schema.Schema {
		requested = v
		return s
	}))
	require.Equal(t, document.StateParsed, d.State())
	assert.Equal(t, document.VersionSwagger2, requested)

	m, err := d.Model()
	require.NoError(t, err)
	pet, ok := m.Find("/definitions/Pet")
	require.True(t, ok)
	assert.Equal(t, "/properties/definitions/additionalProperties", pet.Type().Pointer().String())
}
