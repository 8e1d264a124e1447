package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitDedupe(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		sep      string
		expected []string
	}{
		{
			name:     "nil slice",
			input:    nil,
			sep:      ",",
			expected: nil,
		},
		{
			name:     "single empty value",
			input:    []string{""},
			sep:      ",",
			expected: nil,
		},
		{
			name:     "splits and trims",
			input:    []string{" foo , bar ,baz"},
			sep:      ",",
			expected: []string{"foo", "bar", "baz"},
		},
		{
			name:     "dedupes across values preserving order",
			input:    []string{"b,a", "a,c,b"},
			sep:      ",",
			expected: []string{"b", "a", "c"},
		},
		{
			name:     "drops empty parts",
			input:    []string{",,x,, ,y"},
			sep:      ",",
			expected: []string{"x", "y"},
		},
		{
			name:     "case sensitive",
			input:    []string{"Foo,foo"},
			sep:      ",",
			expected: []string{"Foo", "foo"},
		},
		{
			name:     "other separator",
			input:    []string{"a;b;a"},
			sep:      ";",
			expected: []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitDedupe(tt.input, tt.sep))
		})
	}
}
