package query

import "fmt"

// Combinator selects how per-field predicates are joined.
type Combinator int

const (
	CombinatorAnd Combinator = iota + 1
	CombinatorOr
)

func (c Combinator) String() string {
	switch c {
	case CombinatorAnd:
		return "and"
	case CombinatorOr:
		return "or"
	}
	return "unknown"
}

// identity is the fold seed: AND starts from match-everything, OR from
// match-nothing.
func (c Combinator) identity() Predicate {
	if c == CombinatorOr {
		return MatchNone()
	}
	return MatchAll()
}

func (c Combinator) combine(acc, next Predicate) Predicate {
	if c == CombinatorOr {
		return Or(acc, next)
	}
	return And(acc, next)
}

type term func(Criteria) (Predicate, bool, error)

func termFor[T Operand](field Field[T], slot func(Criteria) Filter[T]) term {
	return func(c Criteria) (Predicate, bool, error) {
		f := slot(c)
		if !f.IsSet() {
			return Predicate{}, false, nil
		}
		p, err := Compile(field, f)
		return p, true, err
	}
}

// terms is the fixed field order of a translation. A new filterable field
// is added here and in Criteria.
var terms = []term{
	termFor(FieldID, func(c Criteria) Filter[int64] { return c.ID }),
	termFor(FieldNationalID, func(c Criteria) Filter[string] { return c.NationalID }),
	termFor(FieldFullName, func(c Criteria) Filter[string] { return c.FullName }),
}

// Translate folds the populated criteria slots into one predicate joined by
// comb. Empty criteria yields match-everything for AND and match-nothing
// for OR.
func Translate(criteria Criteria, comb Combinator) (Predicate, error) {
	if comb != CombinatorAnd && comb != CombinatorOr {
		return Predicate{}, fmt.Errorf("unknown combinator %d", int(comb))
	}

	acc := comb.identity()
	for _, t := range terms {
		p, ok, err := t(criteria)
		if err != nil {
			return Predicate{}, err
		}
		if ok {
			acc = comb.combine(acc, p)
		}
	}
	return acc, nil
}
