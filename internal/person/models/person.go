package models

// Person is the single record kind the registry manages. ID is assigned by
// storage on create and never changes afterwards.
type Person struct {
	ID         int64   `json:"id"`
	NationalID *string `json:"nationalId"`
	FullName   *string `json:"fullName"`
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }

// Clone returns a copy that shares no pointers with p.
func (p Person) Clone() Person {
	out := Person{ID: p.ID}
	if p.NationalID != nil {
		out.NationalID = StringPtr(*p.NationalID)
	}
	if p.FullName != nil {
		out.FullName = StringPtr(*p.FullName)
	}
	return out
}
