package query

import "people/internal/person/models"

// Compile turns one filter on one field into a Predicate. It fails with
// UnsupportedOperatorError when the field type cannot carry the filter kind,
// and never returns a partial predicate.
func Compile[T Operand](field Field[T], filter Filter[T]) (Predicate, error) {
	if !filter.IsSet() || !field.supports(filter.kind) {
		return Predicate{}, &UnsupportedOperatorError{Field: field.name, Kind: filter.kind, Type: operandTypeName[T]()}
	}

	operands := make([]any, len(filter.values))
	for i, v := range filter.values {
		operands[i] = v
	}

	get := field.get
	return Predicate{
		op: OpCond,
		cond: &Condition{
			field:     field.name,
			column:    field.column,
			kind:      filter.kind,
			operands:  operands,
			specified: filter.specified,
			get: func(p models.Person) (any, bool) {
				v, ok := get(p)
				return v, ok
			},
		},
	}, nil
}
