package query

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "people/pkg/domain-errors"
)

func parse(t *testing.T, raw string) (Criteria, bool, error) {
	t.Helper()
	values, err := url.ParseQuery(raw)
	require.NoError(t, err)
	return ParseCriteria(values)
}

func TestParseCriteria(t *testing.T) {
	t.Run("no filter parameters", func(t *testing.T) {
		c, found, err := parse(t, "page=0&size=20&sort=id,desc&keyword=")
		require.NoError(t, err)
		assert.False(t, found)
		assert.True(t, c.IsEmpty())
	})

	t.Run("one filter per field", func(t *testing.T) {
		c, found, err := parse(t, "id.greaterThan=5&nationalId.in=AAA,BBB&fullName.contains=Roe")
		require.NoError(t, err)
		assert.True(t, found)

		assert.Equal(t, KindGreaterThan, c.ID.Kind())
		assert.Equal(t, int64(5), c.ID.Value())
		assert.Equal(t, []string{"AAA", "BBB"}, c.NationalID.Values())
		assert.Equal(t, Contains("Roe"), c.FullName)
	})

	t.Run("repeated set parameter accumulates", func(t *testing.T) {
		c, _, err := parse(t, "id.in=1,2&id.in=3")
		require.NoError(t, err)
		assert.Equal(t, []int64{1, 2, 3}, c.ID.Values())
	})

	t.Run("set operands are trimmed and deduplicated", func(t *testing.T) {
		c, _, err := parse(t, "nationalId.in=AAA,%20BBB%20,AAA,,")
		require.NoError(t, err)
		assert.Equal(t, []string{"AAA", "BBB"}, c.NationalID.Values())
	})

	t.Run("empty set parameter", func(t *testing.T) {
		c, _, err := parse(t, "id.notIn=")
		require.NoError(t, err)
		assert.Equal(t, KindNotIn, c.ID.Kind())
		assert.Empty(t, c.ID.Values())
	})

	t.Run("specified", func(t *testing.T) {
		c, _, err := parse(t, "nationalId.specified=false")
		require.NoError(t, err)
		assert.Equal(t, Specified[string](false), c.NationalID)

		_, _, err = parse(t, "nationalId.specified=maybe")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	t.Run("contains on id is an unsupported operator", func(t *testing.T) {
		_, _, err := parse(t, "id.contains=1")
		var unsupported *UnsupportedOperatorError
		require.True(t, errors.As(err, &unsupported))
		assert.Equal(t, "id", unsupported.Field)
		assert.Equal(t, KindContains, unsupported.Kind)
	})

	t.Run("range on a string field is an unsupported operator", func(t *testing.T) {
		_, _, err := parse(t, "fullName.lessThan=M")
		var unsupported *UnsupportedOperatorError
		require.True(t, errors.As(err, &unsupported))
		assert.Equal(t, "fullName", unsupported.Field)
	})

	t.Run("non-integer id operand is a bad request", func(t *testing.T) {
		_, _, err := parse(t, "id.equals=abc")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))

		_, _, err = parse(t, "id.in=1,x")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	t.Run("unknown field or operator is a bad request", func(t *testing.T) {
		_, _, err := parse(t, "email.equals=a")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))

		_, _, err = parse(t, "fullName.like=a")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	t.Run("two operators on one field is a validation error", func(t *testing.T) {
		_, _, err := parse(t, "fullName.contains=a&fullName.startsWith=b")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("scalar operator given twice is a validation error", func(t *testing.T) {
		_, _, err := parse(t, "nationalId.equals=a&nationalId.equals=b")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("operands are literal", func(t *testing.T) {
		c, _, err := parse(t, "fullName.contains="+url.QueryEscape("50%_"))
		require.NoError(t, err)
		assert.Equal(t, "50%_", c.FullName.Value())
	})
}

func TestCriteriaString(t *testing.T) {
	c := Criteria{ID: Equals[int64](1), FullName: StartsWith("J")}
	assert.Equal(t, "PersonCriteria{id=equals=1, fullName=startsWith=J}", c.String())
	assert.Equal(t, "PersonCriteria{}", Criteria{}.String())
}
