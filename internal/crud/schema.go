// Package crud is a table-driven create/read/update/delete layer for simple
// entities that differ only in table and form fields.
package crud

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var ErrNotFound = errors.New("crud: record not found")

// Field is one writable column and how the form labels it.
type Field struct {
	Column   string `json:"column"`
	Label    string `json:"label"`
	Required bool   `json:"required"`
}

// Schema describes an entity stored in Table. T is scanned by column name,
// so its fields need `db` tags matching Columns.
type Schema[T any] struct {
	Table   string
	Columns []string // read columns, id first
	Fields  []Field  // writable columns, in Values order
	Values  func(T) []any
}

// RequiredError names the first required field left blank.
type RequiredError struct{ Field Field }

func (e *RequiredError) Error() string { return e.Field.Label + " is required" }

func (s Schema[T]) Validate(v T) error {
	vals := s.Values(v)
	if len(vals) != len(s.Fields) {
		return fmt.Errorf("crud: %s: %d values for %d fields", s.Table, len(vals), len(s.Fields))
	}
	for i, f := range s.Fields {
		if !f.Required {
			continue
		}
		if str, ok := vals[i].(string); ok && strings.TrimSpace(str) == "" {
			return &RequiredError{Field: f}
		}
		if vals[i] == nil {
			return &RequiredError{Field: f}
		}
	}
	return nil
}

func (s Schema[T]) selectSQL() string {
	return "SELECT " + strings.Join(s.Columns, ", ") + " FROM " + s.Table
}

func (s Schema[T]) insertSQL() string {
	cols := make([]string, len(s.Fields))
	params := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		cols[i] = f.Column
		params[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		s.Table, strings.Join(cols, ", "), strings.Join(params, ", "), strings.Join(s.Columns, ", "))
}

// updateSQL takes the id as the last parameter.
func (s Schema[T]) updateSQL() string {
	sets := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		sets[i] = fmt.Sprintf("%s = $%d", f.Column, i+1)
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d RETURNING %s",
		s.Table, strings.Join(sets, ", "), len(s.Fields)+1, strings.Join(s.Columns, ", "))
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type Page struct {
	Number int
	Size   int
}

// NewPage clamps page and size the same way for every list endpoint.
func NewPage(number, size int) Page {
	if number <= 0 {
		number = 1
	}
	switch {
	case size > MaxPageSize:
		size = MaxPageSize
	case size <= 0:
		size = DefaultPageSize
	}
	return Page{Number: number, Size: size}
}

func (p Page) Offset() int { return (p.Number - 1) * p.Size }

// Paginated is the response body of every list endpoint.
type Paginated[T any] struct {
	Data        []T   `json:"data"`
	TotalRows   int64 `json:"totalRows"`
	TotalPages  int   `json:"totalPages"`
	CurrentPage int   `json:"currentPage"`
	PageSize    int   `json:"pageSize"`
}

func NewPaginated[T any](data []T, total int64, p Page) Paginated[T] {
	if data == nil {
		data = []T{}
	}
	pages := 0
	if total > 0 {
		pages = int(math.Ceil(float64(total) / float64(p.Size)))
	}
	return Paginated[T]{Data: data, TotalRows: total, TotalPages: pages, CurrentPage: p.Number, PageSize: p.Size}
}
