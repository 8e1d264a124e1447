package query

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// Operand is the set of value types a Filter can carry.
type Operand interface {
	~string | ~int64
}

// Filter is one operator applied to one field. The zero value is an absent
// filter and constrains nothing. Filters are immutable once built.
type Filter[T Operand] struct {
	kind      Kind
	values    []T
	specified bool
}

func Equals[T Operand](v T) Filter[T] {
	return Filter[T]{kind: KindEquals, values: []T{v}}
}

func NotEquals[T Operand](v T) Filter[T] {
	return Filter[T]{kind: KindNotEquals, values: []T{v}}
}

// In matches any member of vs. An empty set matches nothing.
func In[T Operand](vs ...T) Filter[T] {
	return Filter[T]{kind: KindIn, values: slices.Clone(vs)}
}

// NotIn matches every non-null value outside vs.
func NotIn[T Operand](vs ...T) Filter[T] {
	return Filter[T]{kind: KindNotIn, values: slices.Clone(vs)}
}

// Specified(true) matches a present value, Specified(false) a null one.
func Specified[T Operand](present bool) Filter[T] {
	return Filter[T]{kind: KindSpecified, specified: present}
}

// The substring kinds match literally and case-sensitively. They exist only
// for string operands, so Contains on an int64 field does not type-check.

func Contains(s string) Filter[string] {
	return Filter[string]{kind: KindContains, values: []string{s}}
}

func DoesNotContain(s string) Filter[string] {
	return Filter[string]{kind: KindDoesNotContain, values: []string{s}}
}

func StartsWith(s string) Filter[string] {
	return Filter[string]{kind: KindStartsWith, values: []string{s}}
}

func EndsWith(s string) Filter[string] {
	return Filter[string]{kind: KindEndsWith, values: []string{s}}
}

func GreaterThan[T ~int64](v T) Filter[T] {
	return Filter[T]{kind: KindGreaterThan, values: []T{v}}
}

func LessThan[T ~int64](v T) Filter[T] {
	return Filter[T]{kind: KindLessThan, values: []T{v}}
}

func GreaterThanOrEqual[T ~int64](v T) Filter[T] {
	return Filter[T]{kind: KindGreaterThanOrEqual, values: []T{v}}
}

func LessThanOrEqual[T ~int64](v T) Filter[T] {
	return Filter[T]{kind: KindLessThanOrEqual, values: []T{v}}
}

// NewFilter builds a Filter from a kind chosen at runtime, as the query
// string parser does. Scalar kinds take exactly one value, set kinds any
// number, and Specified takes none.
func NewFilter[T Operand](kind Kind, values []T, specified bool) (Filter[T], error) {
	if !kind.valid() {
		return Filter[T]{}, fmt.Errorf("unknown filter kind %d", int(kind))
	}

	isString := operandIsString[T]()
	if kind.StringOnly() && !isString {
		return Filter[T]{}, &UnsupportedOperatorError{Kind: kind, Type: operandTypeName[T]()}
	}
	if kind.Range() && isString {
		return Filter[T]{}, &UnsupportedOperatorError{Kind: kind, Type: operandTypeName[T]()}
	}

	switch {
	case kind == KindSpecified:
		if len(values) != 0 {
			return Filter[T]{}, fmt.Errorf("filter %s takes no operand", kind)
		}
		return Filter[T]{kind: kind, specified: specified}, nil
	case kind.setValued():
		return Filter[T]{kind: kind, values: slices.Clone(values)}, nil
	default:
		if len(values) != 1 {
			return Filter[T]{}, fmt.Errorf("filter %s takes exactly one operand, got %d", kind, len(values))
		}
		return Filter[T]{kind: kind, values: slices.Clone(values)}, nil
	}
}

// IsSet reports whether the filter constrains its field.
func (f Filter[T]) IsSet() bool { return f.kind != 0 }

func (f Filter[T]) Kind() Kind { return f.kind }

// Value returns the scalar operand. It is the zero value for set kinds and
// Specified.
func (f Filter[T]) Value() T {
	var zero T
	if f.kind.setValued() || len(f.values) == 0 {
		return zero
	}
	return f.values[0]
}

// Values returns a copy of the operands.
func (f Filter[T]) Values() []T { return slices.Clone(f.values) }

// SpecifiedValue returns the operand of a Specified filter.
func (f Filter[T]) SpecifiedValue() bool { return f.specified }

func (f Filter[T]) String() string {
	switch {
	case !f.IsSet():
		return "unset"
	case f.kind == KindSpecified:
		return fmt.Sprintf("%s=%t", f.kind, f.specified)
	case f.kind.setValued():
		parts := make([]string, len(f.values))
		for i, v := range f.values {
			parts[i] = fmt.Sprint(v)
		}
		return fmt.Sprintf("%s=[%s]", f.kind, strings.Join(parts, ","))
	default:
		return fmt.Sprintf("%s=%v", f.kind, f.Value())
	}
}

func operandIsString[T Operand]() bool {
	return reflect.TypeFor[T]().Kind() == reflect.String
}

func operandTypeName[T Operand]() string {
	if operandIsString[T]() {
		return "string"
	}
	return "int64"
}
