package providers_test

import (
	"encoding/base64"
	"testing"

	"github.com/RepreZen/SwagEdit/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractInlineSourceMap(t *testing.T) {
	t.Parallel()

	t.Run("no source map", func(t *testing.T) {
		t.Parallel()

		sm, code, err := providers.ExtractInlineSourceMap("var a = 1;\n")
		require.NoError(t, err)
		assert.Nil(t, sm)
		assert.Equal(t, "var a = 1;\n", code)
	})

	t.Run("inline source map is stripped", func(t *testing.T) {
		t.Parallel()

		data := base64.StdEncoding.EncodeToString([]byte(`{"version":3,"sources":["a.ts"],"names":[],"mappings":"AAAA;AACA"}`))
		sm, code, err := providers.ExtractInlineSourceMap("var a = 1;\nvar b = 2;\n//# sourceMappingURL=data:application/json;base64," + data + "\n")
		require.NoError(t, err)
		require.NotNil(t, sm)
		assert.Equal(t, "var a = 1;\nvar b = 2;\n", code)

		source, _, line, column, ok := sm.Source(2, 0)
		require.True(t, ok)
		assert.Equal(t, "a.ts", source)
		assert.Equal(t, 2, line)
		assert.Equal(t, 0, column)
	})

	t.Run("invalid base64", func(t *testing.T) {
		t.Parallel()

		_, code, err := providers.ExtractInlineSourceMap("var a;\n//# sourceMappingURL=data:application/json;base64,!!!")
		require.Error(t, err)
		assert.Equal(t, "var a;\n", code)
	})
}

func TestMappedError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "rule.ts:3:5: Error: boom", (&providers.MappedError{SourceFile: "rule.ts", Line: 3, Column: 5, Message: "Error: boom"}).Error())
	assert.Equal(t, "rule.ts: Error: boom", (&providers.MappedError{SourceFile: "rule.ts", Message: "Error: boom"}).Error())
	assert.Equal(t, "Error: boom", (&providers.MappedError{Message: "Error: boom"}).Error())
}
