package models

import (
	"fmt"
	"strings"
	"unicode/utf8"

	dErrors "people/pkg/domain-errors"
)

// MaxAttributeLength bounds nationalId and fullName.
const MaxAttributeLength = 255

// PersonRequest is the JSON body of create and update calls. ID must be
// absent on create; on update an absent ID turns the call into a create.
type PersonRequest struct {
	ID         *int64  `json:"id,omitempty"`
	NationalID *string `json:"nationalId"`
	FullName   *string `json:"fullName"`
}

// Normalize trims surrounding whitespace. Null stays null.
func (r *PersonRequest) Normalize() {
	if r == nil {
		return
	}
	r.NationalID = trimPtr(r.NationalID)
	r.FullName = trimPtr(r.FullName)
}

func (r *PersonRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validateLength("nationalId", r.NationalID); err != nil {
		return err
	}
	if err := validateLength("fullName", r.FullName); err != nil {
		return err
	}
	if r.ID != nil && *r.ID <= 0 {
		return dErrors.New(dErrors.CodeValidation, "id must be positive")
	}
	return nil
}

// ToPerson maps the request onto a Person; a missing ID becomes zero.
func (r *PersonRequest) ToPerson() Person {
	p := Person{NationalID: r.NationalID, FullName: r.FullName}
	if r.ID != nil {
		p.ID = *r.ID
	}
	return p.Clone()
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	return &trimmed
}

func validateLength(name string, s *string) error {
	if s != nil && utf8.RuneCountInString(*s) > MaxAttributeLength {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max length of %d", name, MaxAttributeLength))
	}
	return nil
}
