package query

import (
	"fmt"
	"slices"
	"strings"

	"people/internal/person/models"
)

// Op is the node type of a Predicate.
type Op int

const (
	OpAll Op = iota
	OpNone
	OpCond
	OpAnd
	OpOr
)

// Predicate is an immutable boolean expression over Person attributes. The
// zero value matches everything.
type Predicate struct {
	op       Op
	cond     *Condition
	children []Predicate
}

// Condition is a single compiled field test.
type Condition struct {
	field     string
	column    string
	kind      Kind
	operands  []any
	specified bool
	get       func(models.Person) (any, bool)
}

func (c *Condition) Field() string  { return c.field }
func (c *Condition) Column() string { return c.column }
func (c *Condition) Kind() Kind     { return c.kind }

// Operands returns a copy of the operand values (string or int64).
func (c *Condition) Operands() []any { return slices.Clone(c.operands) }

func (c *Condition) Specified() bool { return c.specified }

func MatchAll() Predicate  { return Predicate{op: OpAll} }
func MatchNone() Predicate { return Predicate{op: OpNone} }

// And conjoins ps. Match-all operands are dropped, nested conjunctions are
// flattened, and any match-none operand collapses the result.
func And(ps ...Predicate) Predicate {
	var flat []Predicate
	for _, p := range ps {
		switch p.op {
		case OpAll:
		case OpNone:
			return MatchNone()
		case OpAnd:
			flat = append(flat, p.children...)
		default:
			flat = append(flat, p)
		}
	}
	switch len(flat) {
	case 0:
		return MatchAll()
	case 1:
		return flat[0]
	}
	return Predicate{op: OpAnd, children: flat}
}

// Or disjoins ps. Match-none operands are dropped, nested disjunctions are
// flattened, and any match-all operand collapses the result.
func Or(ps ...Predicate) Predicate {
	var flat []Predicate
	for _, p := range ps {
		switch p.op {
		case OpNone:
		case OpAll:
			return MatchAll()
		case OpOr:
			flat = append(flat, p.children...)
		default:
			flat = append(flat, p)
		}
	}
	switch len(flat) {
	case 0:
		return MatchNone()
	case 1:
		return flat[0]
	}
	return Predicate{op: OpOr, children: flat}
}

func (p Predicate) Op() Op { return p.op }

// Condition returns the leaf test of an OpCond predicate.
func (p Predicate) Condition() (*Condition, bool) {
	return p.cond, p.op == OpCond
}

// Children returns the operands of an OpAnd or OpOr predicate.
func (p Predicate) Children() []Predicate { return slices.Clone(p.children) }

func (p Predicate) String() string {
	switch p.op {
	case OpAll:
		return "TRUE"
	case OpNone:
		return "FALSE"
	case OpCond:
		c := p.cond
		switch {
		case c.kind == KindSpecified:
			return fmt.Sprintf("%s %s %t", c.field, c.kind, c.specified)
		case c.kind.setValued():
			return fmt.Sprintf("%s %s %v", c.field, c.kind, c.operands)
		default:
			return fmt.Sprintf("%s %s %v", c.field, c.kind, c.operands[0])
		}
	}
	sep := " AND "
	if p.op == OpOr {
		sep = " OR "
	}
	parts := make([]string, len(p.children))
	for i, child := range p.children {
		parts[i] = child.String()
	}
	return "(" + strings.Join(parts, sep) + ")"
}
