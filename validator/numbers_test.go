package validator_test

import (
	"testing"

	"github.com/RepreZen/SwagEdit/document"
	"github.com/RepreZen/SwagEdit/validation"
	"github.com/RepreZen/SwagEdit/validator"
	"github.com/RepreZen/SwagEdit/yml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckNonFiniteNumbers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		text     string
		expected []expected
	}{
		{
			name:     "finite numbers",
			text:     "a: 1\nb: 1.5\nc: '.inf'\n",
			expected: []expected{},
		},
		{
			name: "infinity and nan",
			text: "a: .inf\nb:\n  - -.Inf\n  - .NaN\n",
			expected: []expected{
				{line: 1, severity: validation.SeverityError, message: "number '.inf' has no JSON representation"},
				{line: 3, severity: validation.SeverityError, message: "number '-.Inf' has no JSON representation"},
				{line: 4, severity: validation.SeverityError, message: "number '.NaN' has no JSON representation"},
			},
		},
		{
			name: "anchored value reported once",
			text: "a: &x .nan\nb: *x\n",
			expected: []expected{
				{line: 1, severity: validation.SeverityError, message: "number '.nan' has no JSON representation"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			raw, err := yml.Parse([]byte(tt.text))
			require.NoError(t, err)

			errs := validator.CheckNonFiniteNumbers(t.Context(), raw).Errors()
			assert.Equal(t, tt.expected, summarize(errs))
			for _, e := range errs {
				assert.Equal(t, validation.RuleValidationSchema, e.Rule)
			}
		})
	}
}

func TestValidate_NonFiniteNumberKeepsDocumentParsed(t *testing.T) {
	t.Parallel()

	doc := parse(t, "swagger: '2.0'\nx: .inf\n")
	require.Equal(t, document.StateParsed, doc.State())

	v := validator.New(&stubDialect{})
	errs := v.Validate(t.Context(), doc, "file:///api.yaml").Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, 2, errs[0].Line)
	assert.Equal(t, 4, errs[0].Column)
	assert.Equal(t, "number '.inf' has no JSON representation", errs[0].Message)
}
