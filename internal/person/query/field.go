package query

import "people/internal/person/models"

// Field is a typed accessor for one filterable Person attribute. The set of
// fields is closed: FieldID, FieldNationalID and FieldFullName.
type Field[T Operand] struct {
	name    string
	column  string
	ordered bool
	get     func(models.Person) (T, bool)
}

// Name is the attribute name used in query parameters.
func (f Field[T]) Name() string { return f.name }

// Column is the storage column the attribute maps to.
func (f Field[T]) Column() string { return f.column }

// Value reads the attribute from p; ok is false when it is null.
func (f Field[T]) Value(p models.Person) (T, bool) { return f.get(p) }

func (f Field[T]) supports(kind Kind) bool {
	if kind.StringOnly() {
		return operandIsString[T]()
	}
	if kind.Range() {
		return f.ordered && !operandIsString[T]()
	}
	return kind.valid()
}

var (
	FieldID = Field[int64]{
		name:    "id",
		column:  "id",
		ordered: true,
		get:     func(p models.Person) (int64, bool) { return p.ID, true },
	}
	FieldNationalID = Field[string]{
		name:   "nationalId",
		column: "national_id",
		get:    func(p models.Person) (string, bool) { return deref(p.NationalID) },
	}
	FieldFullName = Field[string]{
		name:   "fullName",
		column: "full_name",
		get:    func(p models.Person) (string, bool) { return deref(p.FullName) },
	}
)

func deref(s *string) (string, bool) {
	if s == nil {
		return "", false
	}
	return *s, true
}
