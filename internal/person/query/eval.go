package query

import (
	"strings"

	"people/internal/person/models"
)

// Matches evaluates the predicate against p in memory with SQL null
// semantics: a null attribute fails every test except Specified(false).
func (p Predicate) Matches(person models.Person) bool {
	switch p.op {
	case OpAll:
		return true
	case OpNone:
		return false
	case OpCond:
		return p.cond.matches(person)
	case OpAnd:
		for _, child := range p.children {
			if !child.Matches(person) {
				return false
			}
		}
		return true
	case OpOr:
		for _, child := range p.children {
			if child.Matches(person) {
				return true
			}
		}
		return false
	}
	return false
}

func (c *Condition) matches(person models.Person) bool {
	v, ok := c.get(person)
	if c.kind == KindSpecified {
		return ok == c.specified
	}
	if !ok {
		return false
	}

	switch c.kind {
	case KindEquals:
		return v == c.operands[0]
	case KindNotEquals:
		return v != c.operands[0]
	case KindIn:
		return c.contains(v)
	case KindNotIn:
		return !c.contains(v)
	case KindContains:
		return strings.Contains(v.(string), c.operands[0].(string))
	case KindDoesNotContain:
		return !strings.Contains(v.(string), c.operands[0].(string))
	case KindStartsWith:
		return strings.HasPrefix(v.(string), c.operands[0].(string))
	case KindEndsWith:
		return strings.HasSuffix(v.(string), c.operands[0].(string))
	case KindGreaterThan:
		return v.(int64) > c.operands[0].(int64)
	case KindLessThan:
		return v.(int64) < c.operands[0].(int64)
	case KindGreaterThanOrEqual:
		return v.(int64) >= c.operands[0].(int64)
	case KindLessThanOrEqual:
		return v.(int64) <= c.operands[0].(int64)
	}
	return false
}

func (c *Condition) contains(v any) bool {
	for _, op := range c.operands {
		if v == op {
			return true
		}
	}
	return false
}
