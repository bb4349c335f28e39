// Package parties holds the clients and customers registers. Both are the
// same shape and are served by the generic crud layer.
package parties

import (
	"strings"
	"time"

	"github.com/Spok95/poletreat/internal/crud"
)

type Party struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Phone     string    `db:"phone" json:"phone"`
	Email     string    `db:"email" json:"email"`
	Address   string    `db:"address" json:"address"`
	Notes     string    `db:"notes" json:"notes"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

var fields = []crud.Field{
	{Column: "name", Label: "Name", Required: true},
	{Column: "phone", Label: "Phone"},
	{Column: "email", Label: "Email"},
	{Column: "address", Label: "Address"},
	{Column: "notes", Label: "Notes"},
}

func values(p Party) []any {
	return []any{
		strings.TrimSpace(p.Name),
		strings.TrimSpace(p.Phone),
		strings.TrimSpace(p.Email),
		strings.TrimSpace(p.Address),
		p.Notes,
	}
}

func schema(table string) crud.Schema[Party] {
	return crud.Schema[Party]{
		Table:   table,
		Columns: []string{"id", "name", "phone", "email", "address", "notes", "created_at"},
		Fields:  fields,
		Values:  values,
	}
}

// Clients are treatment-service clients who bring their own poles.
func Clients() crud.Schema[Party] { return schema("clients") }

// Customers buy treated poles from the yard.
func Customers() crud.Schema[Party] { return schema("customers") }
