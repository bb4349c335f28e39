package suppliers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const columns = `id, name, phone, location, active, created_at`

func scan(row pgx.Row) (*Supplier, error) {
	var s Supplier
	if err := row.Scan(&s.ID, &s.Name, &s.Phone, &s.Location, &s.Active, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a supplier; if the name is taken the existing one is returned.
func (r *Repo) Create(ctx context.Context, name, phone, location string) (*Supplier, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("supplier name is required")
	}
	s, err := scan(r.pool.QueryRow(ctx, `
		INSERT INTO suppliers (name, phone, location) VALUES ($1,$2,$3)
		ON CONFLICT (name) DO NOTHING
		RETURNING `+columns,
		name, strings.TrimSpace(phone), strings.TrimSpace(location)))
	if errors.Is(err, pgx.ErrNoRows) {
		return r.GetByName(ctx, name)
	}
	return s, err
}

func (r *Repo) GetByName(ctx context.Context, name string) (*Supplier, error) {
	s, err := scan(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM suppliers WHERE name = $1`, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Supplier, error) {
	s, err := scan(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM suppliers WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

func (r *Repo) List(ctx context.Context, onlyActive bool) ([]Supplier, error) {
	q := `SELECT ` + columns + ` FROM suppliers`
	if onlyActive {
		q += ` WHERE active = TRUE`
	}
	q += ` ORDER BY name`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Supplier
	for rows.Next() {
		s, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (r *Repo) UpdateName(ctx context.Context, id int64, name string) (*Supplier, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("supplier name is required")
	}
	return scan(r.pool.QueryRow(ctx, `
		UPDATE suppliers SET name=$2 WHERE id=$1
		RETURNING `+columns, id, name))
}

func (r *Repo) SetActive(ctx context.Context, id int64, active bool) (*Supplier, error) {
	return scan(r.pool.QueryRow(ctx, `
		UPDATE suppliers SET active=$2 WHERE id=$1
		RETURNING `+columns, id, active))
}
