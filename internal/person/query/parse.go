package query

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	dErrors "people/pkg/domain-errors"
	platformstrings "people/pkg/platform/strings"
)

type slotParser func(c *Criteria, kind Kind, raw []string) error

var slotParsers = map[string]slotParser{
	FieldID.name:         parseSlot(FieldID, parseInt64, func(c *Criteria, f Filter[int64]) { c.ID = f }),
	FieldNationalID.name: parseSlot(FieldNationalID, parseString, func(c *Criteria, f Filter[string]) { c.NationalID = f }),
	FieldFullName.name:   parseSlot(FieldFullName, parseString, func(c *Criteria, f Filter[string]) { c.FullName = f }),
}

// ParseCriteria reads filters written as <field>.<kind>=<operand> from query
// parameters. Parameters without a dot (page, size, sort, keyword) are
// ignored. found reports whether any filter parameter was present.
func ParseCriteria(values url.Values) (criteria Criteria, found bool, err error) {
	keys := make([]string, 0, len(values))
	for key := range values {
		if strings.Contains(key, ".") {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)

	seen := make(map[string]string, len(keys))
	for _, key := range keys {
		fieldName, token, _ := strings.Cut(key, ".")
		parse, ok := slotParsers[fieldName]
		if !ok {
			return Criteria{}, false, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("unknown filter field %q", fieldName))
		}
		kind, ok := ParseKind(token)
		if !ok {
			return Criteria{}, false, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("unknown filter operator %q", token))
		}
		if prev, dup := seen[fieldName]; dup {
			return Criteria{}, false, dErrors.New(dErrors.CodeValidation,
				fmt.Sprintf("field %q has more than one filter: %s and %s", fieldName, prev, token))
		}
		seen[fieldName] = token

		if err := parse(&criteria, kind, values[key]); err != nil {
			return Criteria{}, false, err
		}
	}
	return criteria, len(keys) > 0, nil
}

func parseSlot[T Operand](field Field[T], parse func(string) (T, error), set func(*Criteria, Filter[T])) slotParser {
	return func(c *Criteria, kind Kind, raw []string) error {
		if !field.supports(kind) {
			return &UnsupportedOperatorError{Field: field.name, Kind: kind, Type: operandTypeName[T]()}
		}

		var (
			operands  []T
			specified bool
		)

		switch {
		case kind == KindSpecified:
			if len(raw) != 1 {
				return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s.%s takes a single value", field.name, kind))
			}
			b, err := strconv.ParseBool(raw[0])
			if err != nil {
				return dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("%s.%s must be true or false", field.name, kind))
			}
			specified = b
		case kind.setValued():
			for _, part := range platformstrings.SplitDedupe(raw, ",") {
				v, err := parse(part)
				if err != nil {
					return dErrors.Wrap(err, dErrors.CodeBadRequest, fmt.Sprintf("invalid operand for %s.%s", field.name, kind))
				}
				operands = append(operands, v)
			}
		default:
			if len(raw) != 1 {
				return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s.%s takes a single value", field.name, kind))
			}
			v, err := parse(raw[0])
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeBadRequest, fmt.Sprintf("invalid operand for %s.%s", field.name, kind))
			}
			operands = []T{v}
		}

		f, err := NewFilter(kind, operands, specified)
		if err != nil {
			var unsupported *UnsupportedOperatorError
			if errors.As(err, &unsupported) {
				unsupported.Field = field.name
				return unsupported
			}
			return dErrors.Wrap(err, dErrors.CodeBadRequest, fmt.Sprintf("invalid filter %s.%s", field.name, kind))
		}
		set(c, f)
		return nil
	}
}

func parseInt64(s string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}

func parseString(s string) (string, error) { return s, nil }
