package query

import "fmt"

// UnsupportedOperatorError reports an operator applied to a field type that
// cannot carry it, such as contains on the numeric id.
type UnsupportedOperatorError struct {
	// Field is empty when the error is raised while constructing a Filter.
	Field string
	Kind  Kind
	Type  string
}

func (e *UnsupportedOperatorError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("operator %q is not supported for %s operands", e.Kind, e.Type)
	}
	return fmt.Sprintf("operator %q is not supported for field %q of type %s", e.Kind, e.Field, e.Type)
}
