package treatment

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const columns = `id, charge_number, category, quantity, chemical_kg::float8, cylinder_pressure_kpa,
	started_at, completed_at, notes`

func scan(row pgx.Row) (Operation, error) {
	var o Operation
	err := row.Scan(&o.ID, &o.ChargeNumber, &o.Category, &o.Quantity, &o.ChemicalKg,
		&o.CylinderPressureKPa, &o.StartedAt, &o.CompletedAt, &o.Notes)
	return o, err
}

func (r *Repo) Create(ctx context.Context, o Operation) (*Operation, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	out, err := scan(r.pool.QueryRow(ctx, `
		INSERT INTO treatment_operations
			(charge_number, category, quantity, chemical_kg, cylinder_pressure_kpa, started_at, completed_at, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING `+columns,
		o.ChargeNumber, o.Category, o.Quantity, o.ChemicalKg, o.CylinderPressureKPa,
		o.StartedAt, o.CompletedAt, o.Notes,
	))
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns operations started in [from, to). Zero bounds are open.
func (r *Repo) List(ctx context.Context, from, to time.Time) ([]Operation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+columns+`
		FROM treatment_operations
		WHERE ($1::timestamptz IS NULL OR started_at >= $1)
		  AND ($2::timestamptz IS NULL OR started_at < $2)
		ORDER BY started_at DESC
	`, nullTime(from), nullTime(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Operation
	for rows.Next() {
		o, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
