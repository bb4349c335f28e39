package stock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Spok95/poletreat/internal/domain/sorting"
)

type Repo struct {
	pool             *pgxpool.Pool
	enforceRemaining bool
}

// NewRepo returns the stock repository. With enforceRemaining set, CreateSorted
// refuses to sort more poles than the batch has left.
func NewRepo(pool *pgxpool.Pool, enforceRemaining bool) *Repo {
	return &Repo{pool: pool, enforceRemaining: enforceRemaining}
}

/* Unsorted batches */

func (r *Repo) ReceiveBatch(ctx context.Context, b Batch) (*Batch, error) {
	if b.Quantity <= 0 {
		return nil, fmt.Errorf("qty must be > 0")
	}
	if strings.TrimSpace(b.ID) == "" {
		b.ID = uuid.NewString()
	}
	if b.ReceivedAt.IsZero() {
		b.ReceivedAt = time.Now()
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO unsorted_stock (id, quantity, supplier_id, received_at, notes)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, quantity, supplier_id, received_at, notes, created_at
	`, b.ID, b.Quantity, b.SupplierID, b.ReceivedAt, b.Notes)

	var out Batch
	if err := row.Scan(&out.ID, &out.Quantity, &out.SupplierID, &out.ReceivedAt, &out.Notes, &out.CreatedAt); err != nil {
		return nil, err
	}
	return &out, nil
}

const batchProgressSelect = `
	SELECT u.id, u.quantity, u.supplier_id, u.received_at, u.notes, u.created_at,
	       COALESCE(SUM(s.quantity), 0)::int AS sorted
	FROM unsorted_stock u
	LEFT JOIN sorted_stock s ON s.unsorted_stock_id = u.id
`

func scanProgress(row pgx.Row) (BatchWithProgress, error) {
	var b BatchWithProgress
	err := row.Scan(&b.ID, &b.Quantity, &b.SupplierID, &b.ReceivedAt, &b.Notes, &b.CreatedAt, &b.Sorted)
	b.Remaining = b.Quantity - b.Sorted
	return b, err
}

// GetBatch returns nil, nil when the batch does not exist.
func (r *Repo) GetBatch(ctx context.Context, id string) (*BatchWithProgress, error) {
	row := r.pool.QueryRow(ctx, batchProgressSelect+`
		WHERE u.id = $1
		GROUP BY u.id
	`, id)
	b, err := scanProgress(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *Repo) ListBatches(ctx context.Context) ([]BatchWithProgress, error) {
	rows, err := r.pool.Query(ctx, batchProgressSelect+`
		GROUP BY u.id
		ORDER BY u.received_at DESC, u.created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BatchWithProgress
	for rows.Next() {
		b, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

/* Sorted stock */

// CreateSorted implements sorting.Repository.
func (r *Repo) CreateSorted(ctx context.Context, rec sorting.Record) (sorting.Record, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return sorting.Record{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if r.enforceRemaining {
		// Lock the batch first; the sum must be read by a later statement so it
		// sees sorts committed while this one waited for the lock.
		var total, sorted int
		err := tx.QueryRow(ctx, `SELECT quantity FROM unsorted_stock WHERE id = $1 FOR UPDATE`, rec.UnsortedStockID).Scan(&total)
		if errors.Is(err, pgx.ErrNoRows) {
			return sorting.Record{}, ErrNotFound
		}
		if err != nil {
			return sorting.Record{}, err
		}
		if err := tx.QueryRow(ctx, `
			SELECT COALESCE(SUM(quantity), 0)::int FROM sorted_stock WHERE unsorted_stock_id = $1
		`, rec.UnsortedStockID).Scan(&sorted); err != nil {
			return sorting.Record{}, err
		}
		if sorted+rec.Quantity > total {
			return sorting.Record{}, fmt.Errorf("%w: %d left, %d requested", ErrExceedsRemaining, total-sorted, rec.Quantity)
		}
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO sorted_stock
			(unsorted_stock_id, category, quantity, size, length_value, length_unit, diameter_mm, notes, sorting_timestamp)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING `+sortedColumns,
		rec.UnsortedStockID, rec.Category, rec.Quantity, rec.Size, rec.LengthValue,
		rec.LengthUnit, rec.DiameterMM, rec.Notes, rec.SortedAt,
	)
	out, err := scanSorted(row)
	if err != nil {
		return sorting.Record{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return sorting.Record{}, err
	}
	return out, nil
}

const sortedColumns = `id, unsorted_stock_id, category, quantity, size, length_value::float8,
	length_unit, diameter_mm, notes, sorting_timestamp`

func scanSorted(row pgx.Row) (sorting.Record, error) {
	var rec sorting.Record
	err := row.Scan(
		&rec.ID,
		&rec.UnsortedStockID,
		&rec.Category,
		&rec.Quantity,
		&rec.Size,
		&rec.LengthValue,
		&rec.LengthUnit,
		&rec.DiameterMM,
		&rec.Notes,
		&rec.SortedAt,
	)
	return rec, err
}

// ListSorted returns sorted stock, newest first. An empty batchID lists every batch.
// Rows that break the category rules are reported as errors, not returned.
func (r *Repo) ListSorted(ctx context.Context, batchID string) ([]sorting.Record, error) {
	q := `SELECT ` + sortedColumns + ` FROM sorted_stock`
	args := []any{}
	if batchID != "" {
		q += ` WHERE unsorted_stock_id = $1`
		args = append(args, batchID)
	}
	q += ` ORDER BY sorting_timestamp DESC, id DESC`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []sorting.Record
	for rows.Next() {
		rec, err := scanSorted(rows)
		if err != nil {
			return nil, err
		}
		if err := rec.Validate(); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListRejected reads the per-supplier rejected ledger maintained by the
// sorted_stock insert trigger.
func (r *Repo) ListRejected(ctx context.Context) ([]RejectedTally, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT rp.supplier_id, COALESCE(s.name, ''), rp.quantity, rp.updated_at
		FROM rejected_poles rp
		LEFT JOIN suppliers s ON s.id = rp.supplier_id
		ORDER BY rp.quantity DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RejectedTally
	for rows.Next() {
		var t RejectedTally
		if err := rows.Scan(&t.SupplierID, &t.SupplierName, &t.Quantity, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
