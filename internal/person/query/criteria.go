package query

import "strings"

// Criteria holds one optional filter per filterable field. A zero Filter
// in a slot leaves that field unconstrained.
type Criteria struct {
	ID         Filter[int64]
	NationalID Filter[string]
	FullName   Filter[string]
}

// IsEmpty reports whether no slot is set.
func (c Criteria) IsEmpty() bool {
	return !c.ID.IsSet() && !c.NationalID.IsSet() && !c.FullName.IsSet()
}

func (c Criteria) String() string {
	var parts []string
	if c.ID.IsSet() {
		parts = append(parts, "id="+c.ID.String())
	}
	if c.NationalID.IsSet() {
		parts = append(parts, "nationalId="+c.NationalID.String())
	}
	if c.FullName.IsSet() {
		parts = append(parts, "fullName="+c.FullName.String())
	}
	return "PersonCriteria{" + strings.Join(parts, ", ") + "}"
}
