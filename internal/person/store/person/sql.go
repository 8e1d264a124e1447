package person

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"people/internal/person/models"
	"people/internal/person/query"
)

// whereBuilder renders a Predicate as a parameterised WHERE clause.
type whereBuilder struct {
	args []any
}

func (b *whereBuilder) bind(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

func renderWhere(p query.Predicate) (string, []any, error) {
	b := &whereBuilder{}
	clause, err := b.render(p)
	if err != nil {
		return "", nil, err
	}
	return clause, b.args, nil
}

func (b *whereBuilder) render(p query.Predicate) (string, error) {
	switch p.Op() {
	case query.OpAll:
		return "TRUE", nil
	case query.OpNone:
		return "FALSE", nil
	case query.OpCond:
		cond, _ := p.Condition()
		return b.condition(cond)
	case query.OpAnd, query.OpOr:
		sep := " AND "
		if p.Op() == query.OpOr {
			sep = " OR "
		}
		children := p.Children()
		parts := make([]string, len(children))
		for i, child := range children {
			part, err := b.render(child)
			if err != nil {
				return "", err
			}
			parts[i] = part
		}
		return "(" + strings.Join(parts, sep) + ")", nil
	}
	return "", fmt.Errorf("unknown predicate op %d", p.Op())
}

func (b *whereBuilder) condition(c *query.Condition) (string, error) {
	col := pq.QuoteIdentifier(c.Column())
	ops := c.Operands()

	switch c.Kind() {
	case query.KindSpecified:
		if c.Specified() {
			return col + " IS NOT NULL", nil
		}
		return col + " IS NULL", nil
	case query.KindIn:
		if len(ops) == 0 {
			return "FALSE", nil
		}
		arr, err := arrayOf(ops)
		if err != nil {
			return "", err
		}
		return col + " = ANY(" + b.bind(arr) + ")", nil
	case query.KindNotIn:
		if len(ops) == 0 {
			return col + " IS NOT NULL", nil
		}
		arr, err := arrayOf(ops)
		if err != nil {
			return "", err
		}
		return "NOT (" + col + " = ANY(" + b.bind(arr) + "))", nil
	}

	if len(ops) != 1 {
		return "", fmt.Errorf("condition %s on %s needs one operand, got %d", c.Kind(), c.Field(), len(ops))
	}

	switch c.Kind() {
	case query.KindEquals:
		return col + " = " + b.bind(ops[0]), nil
	case query.KindNotEquals:
		return col + " <> " + b.bind(ops[0]), nil
	case query.KindGreaterThan:
		return col + " > " + b.bind(ops[0]), nil
	case query.KindLessThan:
		return col + " < " + b.bind(ops[0]), nil
	case query.KindGreaterThanOrEqual:
		return col + " >= " + b.bind(ops[0]), nil
	case query.KindLessThanOrEqual:
		return col + " <= " + b.bind(ops[0]), nil
	}

	s, ok := ops[0].(string)
	if !ok {
		return "", &query.UnsupportedOperatorError{Field: c.Field(), Kind: c.Kind(), Type: "int64"}
	}
	switch c.Kind() {
	case query.KindContains:
		return col + " LIKE " + b.bind("%"+escapeLikePattern(s)+"%") + ` ESCAPE '\'`, nil
	case query.KindDoesNotContain:
		return col + " NOT LIKE " + b.bind("%"+escapeLikePattern(s)+"%") + ` ESCAPE '\'`, nil
	case query.KindStartsWith:
		return col + " LIKE " + b.bind(escapeLikePattern(s)+"%") + ` ESCAPE '\'`, nil
	case query.KindEndsWith:
		return col + " LIKE " + b.bind("%"+escapeLikePattern(s)) + ` ESCAPE '\'`, nil
	}
	return "", fmt.Errorf("unknown filter kind %s", c.Kind())
}

// arrayOf converts homogeneous operands into a pq array argument.
func arrayOf(ops []any) (any, error) {
	switch ops[0].(type) {
	case int64:
		out := make([]int64, len(ops))
		for i, op := range ops {
			out[i] = op.(int64)
		}
		return pq.Array(out), nil
	case string:
		out := make([]string, len(ops))
		for i, op := range ops {
			out[i] = op.(string)
		}
		return pq.Array(out), nil
	}
	return nil, fmt.Errorf("unsupported operand type %T", ops[0])
}

// escapeLikePattern escapes special characters for LIKE pattern matching.
func escapeLikePattern(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

func renderOrderBy(orders []models.Order) string {
	parts := make([]string, len(orders))
	for i, o := range orders {
		dir := "ASC"
		if o.Direction == models.Desc {
			dir = "DESC"
		}
		column := pq.QuoteIdentifier(o.Field.Column())
		if o.Field != models.SortByID {
			// Byte order, matching the in-memory store whatever the
			// database collation is.
			column += ` COLLATE "C"`
		}
		parts[i] = column + " " + dir
	}
	return strings.Join(parts, ", ")
}
