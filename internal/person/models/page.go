package models

import (
	"fmt"
	"math"
	"strings"

	dErrors "people/pkg/domain-errors"
)

// SortField is a sortable Person attribute.
type SortField string

const (
	SortByID         SortField = "id"
	SortByNationalID SortField = "nationalId"
	SortByFullName   SortField = "fullName"
)

var sortColumns = map[SortField]string{
	SortByID:         "id",
	SortByNationalID: "national_id",
	SortByFullName:   "full_name",
}

func (f SortField) IsValid() bool {
	_, ok := sortColumns[f]
	return ok
}

// Column is the storage column backing the field.
func (f SortField) Column() string { return sortColumns[f] }

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

type Order struct {
	Field     SortField
	Direction Direction
}

func (o Order) String() string { return string(o.Field) + "," + string(o.Direction) }

// Pageable selects one zero-based page of a sorted result set.
type Pageable struct {
	Page int
	Size int
	Sort []Order
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 2000
)

// DefaultPageable is the first page with the default size sorted by id.
func DefaultPageable() Pageable {
	return Pageable{Page: 0, Size: DefaultPageSize}
}

func (p Pageable) Validate() error {
	if p.Page < 0 {
		return dErrors.New(dErrors.CodeValidation, "page must not be negative")
	}
	if p.Size <= 0 {
		return dErrors.New(dErrors.CodeValidation, "size must be greater than zero")
	}
	// The end of the page, (page+1)*size, must fit in an int64.
	if int64(p.Page) >= math.MaxInt64/int64(p.Size) {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("page %d is out of range", p.Page))
	}
	for _, o := range p.Sort {
		if !o.Field.IsValid() {
			return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("unknown sort field %q", o.Field))
		}
		if o.Direction != Asc && o.Direction != Desc {
			return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("unknown sort direction %q", o.Direction))
		}
	}
	return nil
}

func (p Pageable) Offset() int64 { return int64(p.Page) * int64(p.Size) }

// Orders returns the requested sort followed by id ascending, unless id is
// already part of the sort, so paging is stable across requests.
func (p Pageable) Orders() []Order {
	orders := make([]Order, 0, len(p.Sort)+1)
	hasID := false
	for _, o := range p.Sort {
		orders = append(orders, o)
		if o.Field == SortByID {
			hasID = true
		}
	}
	if !hasID {
		orders = append(orders, Order{Field: SortByID, Direction: Asc})
	}
	return orders
}

// ParseSort reads sort parameters of the form field[,dir]. A parameter
// may list several fields before its direction, as in "fullName,id,desc".
func ParseSort(raw []string) ([]Order, error) {
	var orders []Order
	for _, param := range raw {
		if strings.TrimSpace(param) == "" {
			continue
		}
		parts := strings.Split(param, ",")
		dir := Asc
		last := strings.ToLower(strings.TrimSpace(parts[len(parts)-1]))
		if last == string(Asc) || last == string(Desc) {
			dir = Direction(last)
			parts = parts[:len(parts)-1]
		}
		if len(parts) == 0 {
			return nil, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("sort %q names no field", param))
		}
		for _, part := range parts {
			field := SortField(strings.TrimSpace(part))
			if !field.IsValid() {
				return nil, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("unknown sort field %q", field))
			}
			orders = append(orders, Order{Field: field, Direction: dir})
		}
	}
	return orders, nil
}

// Page is one slice of a result set plus the totals needed for pagination.
type Page struct {
	Content       []Person
	Number        int
	Size          int
	TotalElements int64
}

func NewPage(content []Person, pageable Pageable, total int64) Page {
	if content == nil {
		content = []Person{}
	}
	return Page{
		Content:       content,
		Number:        pageable.Page,
		Size:          pageable.Size,
		TotalElements: total,
	}
}

func (p Page) TotalPages() int {
	if p.Size <= 0 {
		return 1
	}
	pages := int((p.TotalElements + int64(p.Size) - 1) / int64(p.Size))
	if pages == 0 {
		return 1
	}
	return pages
}

func (p Page) HasNext() bool { return p.Number+1 < p.TotalPages() }

func (p Page) HasPrevious() bool { return p.Number > 0 }
