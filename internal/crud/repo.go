package crud

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo[T any] struct {
	pool   *pgxpool.Pool
	schema Schema[T]
}

func NewRepo[T any](pool *pgxpool.Pool, schema Schema[T]) *Repo[T] {
	return &Repo[T]{pool: pool, schema: schema}
}

func (r *Repo[T]) Schema() Schema[T] { return r.schema }

func (r *Repo[T]) List(ctx context.Context, p Page) ([]T, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+r.schema.Table).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, r.schema.selectSQL()+" ORDER BY id DESC LIMIT $1 OFFSET $2", p.Size, p.Offset())
	if err != nil {
		return nil, 0, err
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Get returns nil, nil when there is no row with id.
func (r *Repo[T]) Get(ctx context.Context, id int64) (*T, error) {
	rows, err := r.pool.Query(ctx, r.schema.selectSQL()+" WHERE id = $1", id)
	if err != nil {
		return nil, err
	}
	v, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[T])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return v, err
}

func (r *Repo[T]) Create(ctx context.Context, v T) (*T, error) {
	if err := r.schema.Validate(v); err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, r.schema.insertSQL(), r.schema.Values(v)...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[T])
}

func (r *Repo[T]) Update(ctx context.Context, id int64, v T) (*T, error) {
	if err := r.schema.Validate(v); err != nil {
		return nil, err
	}
	args := append(r.schema.Values(v), id)
	rows, err := r.pool.Query(ctx, r.schema.updateSQL(), args...)
	if err != nil {
		return nil, err
	}
	out, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[T])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return out, err
}

func (r *Repo[T]) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM "+r.schema.Table+" WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
