package query

// Kind is the operator a Filter applies to its field.
type Kind int

const (
	KindEquals Kind = iota + 1
	KindNotEquals
	KindIn
	KindNotIn
	KindSpecified
	KindContains
	KindDoesNotContain
	KindStartsWith
	KindEndsWith
	KindGreaterThan
	KindLessThan
	KindGreaterThanOrEqual
	KindLessThanOrEqual
)

var kindTokens = map[Kind]string{
	KindEquals:             "equals",
	KindNotEquals:          "notEquals",
	KindIn:                 "in",
	KindNotIn:              "notIn",
	KindSpecified:          "specified",
	KindContains:           "contains",
	KindDoesNotContain:     "doesNotContain",
	KindStartsWith:         "startsWith",
	KindEndsWith:           "endsWith",
	KindGreaterThan:        "greaterThan",
	KindLessThan:           "lessThan",
	KindGreaterThanOrEqual: "greaterThanOrEqual",
	KindLessThanOrEqual:    "lessThanOrEqual",
}

var tokenKinds = func() map[string]Kind {
	m := make(map[string]Kind, len(kindTokens))
	for k, tok := range kindTokens {
		m[tok] = k
	}
	return m
}()

// String returns the query-parameter token for the kind.
func (k Kind) String() string {
	if tok, ok := kindTokens[k]; ok {
		return tok
	}
	return "unset"
}

// ParseKind maps a query-parameter token such as "startsWith" to its Kind.
func ParseKind(token string) (Kind, bool) {
	k, ok := tokenKinds[token]
	return k, ok
}

func (k Kind) valid() bool {
	_, ok := kindTokens[k]
	return ok
}

// StringOnly reports whether the kind only applies to string fields.
func (k Kind) StringOnly() bool {
	switch k {
	case KindContains, KindDoesNotContain, KindStartsWith, KindEndsWith:
		return true
	}
	return false
}

// Range reports whether the kind needs an ordered non-string field.
func (k Kind) Range() bool {
	switch k {
	case KindGreaterThan, KindLessThan, KindGreaterThanOrEqual, KindLessThanOrEqual:
		return true
	}
	return false
}

func (k Kind) setValued() bool {
	return k == KindIn || k == KindNotIn
}
