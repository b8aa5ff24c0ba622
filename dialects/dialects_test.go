package dialects_test

import (
	"testing"
	"testing/fstest"

	"github.com/RepreZen/SwagEdit/dialects"
	"github.com/RepreZen/SwagEdit/document"
	"github.com/RepreZen/SwagEdit/references"
	"github.com/RepreZen/SwagEdit/validation"
	"github.com/RepreZen/SwagEdit/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const swaggerDoc = `swagger: '2.0'
info:
  title: Petstore
  version: 1.0.0
paths: {}
definitions:
  Pet:
    properties:
      name:
        type: string
`

const openapiDoc = `openapi: 3.0.2
info:
  title: Petstore
  version: 1.0.0
paths: {}
components:
  schemas:
    Pet:
      type: array
`

func messages(set *validation.Set) []string {
	out := []string{}
	for _, e := range set.Errors() {
		out = append(out, e.Message)
	}
	return out
}

func TestSchemaFor(t *testing.T) {
	t.Parallel()

	assert.NotNil(t, dialects.SchemaFor(document.VersionSwagger2))
	assert.NotNil(t, dialects.SchemaFor(document.VersionOpenAPI3))
	assert.NotSame(t, dialects.SchemaFor(document.VersionSwagger2), dialects.SchemaFor(document.VersionOpenAPI3))
	assert.Nil(t, dialects.SchemaFor(document.VersionUnknown))
}

func TestRegistry_Validate(t *testing.T) {
	t.Parallel()

	r := dialects.New()

	tests := []struct {
		name     string
		text     string
		expected []string
		err      error
	}{
		{
			name:     "swagger document",
			text:     swaggerDoc,
			expected: []string{"object type missing"},
		},
		{
			name:     "openapi document",
			text:     openapiDoc,
			expected: []string{"array missing items"},
		},
		{
			name:     "non-finite extension value",
			text:     swaggerDoc + "x-limit: .inf\n",
			expected: []string{"object type missing", "number '.inf' has no JSON representation"},
		},
		{
			name:     "malformed document",
			text:     "swagger: '2.0'\ninfo: [\n",
			expected: []string{},
		},
		{
			name: "unknown version",
			text: "openapi: 3.1.0\ninfo: {}\n",
			err:  dialects.ErrUnsupportedVersion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			set, err := r.Validate(t.Context(), dialects.Parse("api.yaml", []byte(tt.text)), "")
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, messages(set))
		})
	}
}

func TestRegistry_ForVersion(t *testing.T) {
	t.Parallel()

	r := dialects.New()

	v, err := r.ForVersion(document.VersionSwagger2)
	require.NoError(t, err)
	assert.NotNil(t, v)

	_, err = r.ForVersion("1.2")
	require.ErrorIs(t, err, dialects.ErrUnsupportedVersion)
}

func TestRegistry_ValidateAll(t *testing.T) {
	t.Parallel()

	r := dialects.New(dialects.WithConcurrency(2))

	docs := []*document.Document{
		dialects.Parse("a.yaml", []byte(swaggerDoc)),
		dialects.Parse("b.yaml", []byte(openapiDoc)),
		dialects.Parse("c.yaml", []byte("{")),
		document.New("d.yaml", []byte(swaggerDoc)),
		dialects.Parse("e.yaml", []byte(swaggerDoc)),
	}

	results, err := r.ValidateAll(t.Context(), docs)
	require.NoError(t, err)
	require.Len(t, results, len(docs))

	assert.Equal(t, []string{"object type missing"}, messages(results[0]))
	assert.Equal(t, []string{"array missing items"}, messages(results[1]))
	assert.Equal(t, 0, results[2].Len())
	assert.Equal(t, 0, results[3].Len())
	assert.True(t, results[0].Equal(results[4]))
}

func TestRegistry_ValidateAll_UnsupportedVersion(t *testing.T) {
	t.Parallel()

	docs := []*document.Document{
		dialects.Parse("a.yaml", []byte(swaggerDoc)),
		dialects.Parse("b.yaml", []byte("asyncapi: 2.0.0\n")),
	}

	results, err := dialects.New().ValidateAll(t.Context(), docs)
	require.ErrorIs(t, err, dialects.ErrUnsupportedVersion)
	assert.Contains(t, err.Error(), "b.yaml")
	assert.Equal(t, 1, results[0].Len())
	assert.Nil(t, results[1])
}

func TestRegistry_Options(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"common.yaml": &fstest.MapFile{Data: []byte("Pet:\n  type: object\n")},
	}
	text := `swagger: '2.0'
info:
  title: Petstore
  version: 1.0.0
paths: {}
definitions:
  Pet:
    $ref: 'common.yaml#/Pet'
  Tag:
    $ref: 'common.yaml#/Tag'
`
	r := dialects.New(
		dialects.WithResolverOptions(references.WithVirtualFS(fsys)),
		dialects.WithValidatorOptions(validator.WithPreferences(validator.MapPreferences{validator.PrefReferenceTimeout: 500})),
	)

	set, err := r.Validate(t.Context(), dialects.Parse("api.yaml", []byte(text)), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"reference 'common.yaml#/Tag' cannot be resolved"}, messages(set))
}
