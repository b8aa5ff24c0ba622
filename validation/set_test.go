package validation_test

import (
	"sync"
	"testing"

	"github.com/RepreZen/SwagEdit/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func diag(line int, severity validation.Severity, rule, message string) *validation.Error {
	return &validation.Error{Line: line, Column: 1, Severity: severity, Rule: rule, Message: message}
}

func TestSet_DeduplicatesByLineSeverityMessage(t *testing.T) {
	t.Parallel()

	s := validation.NewSet()
	assert.True(t, s.Add(diag(3, validation.SeverityError, validation.RuleValidationSchema, "wrong type")))
	// same key reported by another pass with a different rule and column
	dup := diag(3, validation.SeverityError, validation.RuleValidationObjectType, "wrong type")
	dup.Column = 7
	assert.False(t, s.Add(dup))
	assert.True(t, s.Add(diag(3, validation.SeverityWarning, validation.RuleValidationSchema, "wrong type")))
	assert.True(t, s.Add(diag(4, validation.SeverityError, validation.RuleValidationSchema, "wrong type")))
	assert.False(t, s.Add(nil))

	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Contains(dup))
	assert.Equal(t, validation.RuleValidationSchema, s.Errors()[0].Rule)
}

func TestSet_UnionAndEqual(t *testing.T) {
	t.Parallel()

	a := validation.NewSet(
		diag(1, validation.SeverityWarning, validation.RuleValidationDuplicateKey, "duplicate key: foo"),
		diag(2, validation.SeverityWarning, validation.RuleValidationDuplicateKey, "duplicate key: foo"),
	)
	b := validation.NewSet(
		diag(2, validation.SeverityWarning, validation.RuleValidationDuplicateKey, "duplicate key: foo"),
		diag(5, validation.SeverityError, validation.RuleValidationArrayItems, "array missing items"),
	)

	assert.False(t, a.Equal(b))

	union := validation.NewSet().Union(a).Union(b)
	assert.Equal(t, 3, union.Len())

	reversed := validation.NewSet().Union(b).Union(a)
	assert.True(t, union.Equal(reversed))
	assert.True(t, validation.NewSet().Equal(nil))
	assert.True(t, union.HasErrors())
	assert.False(t, a.HasErrors())
}

func TestSet_ErrorsSorted(t *testing.T) {
	t.Parallel()

	s := validation.NewSet(
		diag(9, validation.SeverityWarning, validation.RuleValidationTypeMissing, "type missing"),
		diag(2, validation.SeverityWarning, validation.RuleValidationObjectType, "object type missing"),
		diag(2, validation.SeverityError, validation.RuleValidationObjectType, "wrong type"),
	)

	errs := s.Errors()
	require.Len(t, errs, 3)
	assert.Equal(t, "wrong type", errs[0].Message)
	assert.Equal(t, "object type missing", errs[1].Message)
	assert.Equal(t, 9, errs[2].Line)
}

func TestSet_Filter(t *testing.T) {
	t.Parallel()

	s := validation.NewSet(
		diag(1, validation.SeverityWarning, validation.RuleValidationTypeMissing, "type missing"),
		diag(2, validation.SeverityError, validation.RuleValidationArrayItems, "array missing items"),
	)

	errorsOnly := s.Filter(func(e *validation.Error) bool { return e.Severity == validation.SeverityError })
	assert.Equal(t, 1, errorsOnly.Len())
	assert.Equal(t, 2, s.Len())
}

func TestSet_ConcurrentAdd(t *testing.T) {
	t.Parallel()

	s := validation.NewSet()
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Add(diag(i%10+1, validation.SeverityWarning, validation.RuleValidationSchema, "m"))
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, s.Len())
}
