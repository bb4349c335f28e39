package finance

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool, now: time.Now} }

// period bounds; a zero time leaves that side open
func bounds(from, to time.Time) (*time.Time, *time.Time) {
	var f, t *time.Time
	if !from.IsZero() {
		f = &from
	}
	if !to.IsZero() {
		t = &to
	}
	return f, t
}

const periodWhere = ` WHERE ($1::timestamptz IS NULL OR issued_at >= $1) AND ($2::timestamptz IS NULL OR issued_at < $2)`

/* Receipts */

const receiptColumns = `id, number, payer, amount, amount_in_words, method, issued_at, notes`

func scanReceipt(row pgx.Row) (Receipt, error) {
	var r Receipt
	err := row.Scan(&r.ID, &r.Number, &r.Payer, &r.Amount, &r.AmountInWords, &r.Method, &r.IssuedAt, &r.Notes)
	return r, err
}

func (r *Repo) CreateReceipt(ctx context.Context, in Receipt) (*Receipt, error) {
	if err := in.normalize(r.now()); err != nil {
		return nil, err
	}
	out, err := scanReceipt(r.pool.QueryRow(ctx, `
		INSERT INTO receipts (number, payer, amount, amount_in_words, method, issued_at, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING `+receiptColumns,
		in.Number, in.Payer, in.Amount, in.AmountInWords, in.Method, in.IssuedAt, in.Notes))
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Repo) ListReceipts(ctx context.Context, from, to time.Time) ([]Receipt, error) {
	f, t := bounds(from, to)
	rows, err := r.pool.Query(ctx, `SELECT `+receiptColumns+` FROM receipts`+periodWhere+` ORDER BY issued_at DESC`, f, t)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Receipt
	for rows.Next() {
		rc, err := scanReceipt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rc)
	}
	return out, rows.Err()
}

/* Payment vouchers */

const voucherColumns = `id, number, payee, amount, purpose, issued_at`

func scanVoucher(row pgx.Row) (PaymentVoucher, error) {
	var v PaymentVoucher
	err := row.Scan(&v.ID, &v.Number, &v.Payee, &v.Amount, &v.Purpose, &v.IssuedAt)
	return v, err
}

func (r *Repo) CreateVoucher(ctx context.Context, in PaymentVoucher) (*PaymentVoucher, error) {
	if err := in.normalize(r.now()); err != nil {
		return nil, err
	}
	out, err := scanVoucher(r.pool.QueryRow(ctx, `
		INSERT INTO payment_vouchers (number, payee, amount, purpose, issued_at)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING `+voucherColumns,
		in.Number, in.Payee, in.Amount, in.Purpose, in.IssuedAt))
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Repo) ListVouchers(ctx context.Context, from, to time.Time) ([]PaymentVoucher, error) {
	f, t := bounds(from, to)
	rows, err := r.pool.Query(ctx, `SELECT `+voucherColumns+` FROM payment_vouchers`+periodWhere+` ORDER BY issued_at DESC`, f, t)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PaymentVoucher
	for rows.Next() {
		v, err := scanVoucher(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

/* Expense authorizations */

const expenseColumns = `id, number, requested_by, amount, purpose, status, issued_at`

func scanExpense(row pgx.Row) (ExpenseAuthorization, error) {
	var e ExpenseAuthorization
	err := row.Scan(&e.ID, &e.Number, &e.RequestedBy, &e.Amount, &e.Purpose, &e.Status, &e.IssuedAt)
	return e, err
}

func (r *Repo) CreateExpense(ctx context.Context, in ExpenseAuthorization) (*ExpenseAuthorization, error) {
	if err := in.normalize(r.now()); err != nil {
		return nil, err
	}
	out, err := scanExpense(r.pool.QueryRow(ctx, `
		INSERT INTO expense_authorizations (number, requested_by, amount, purpose, status, issued_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING `+expenseColumns,
		in.Number, in.RequestedBy, in.Amount, in.Purpose, in.Status, in.IssuedAt))
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Repo) ListExpenses(ctx context.Context, from, to time.Time) ([]ExpenseAuthorization, error) {
	f, t := bounds(from, to)
	rows, err := r.pool.Query(ctx, `SELECT `+expenseColumns+` FROM expense_authorizations`+periodWhere+` ORDER BY issued_at DESC`, f, t)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ExpenseAuthorization
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Decide moves a pending authorization to approved or rejected.
func (r *Repo) Decide(ctx context.Context, id int64, approve bool) (*ExpenseAuthorization, error) {
	status := StatusRejected
	if approve {
		status = StatusApproved
	}
	out, err := scanExpense(r.pool.QueryRow(ctx, `
		UPDATE expense_authorizations SET status = $2
		WHERE id = $1 AND status = 'pending'
		RETURNING `+expenseColumns, id, status))
	if err == nil {
		return &out, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	// either missing or already decided
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM expense_authorizations WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}
	return nil, ErrNotPending
}

/* Totals */

func (r *Repo) Totals(ctx context.Context, from, to time.Time) (Totals, error) {
	f, t := bounds(from, to)
	var out Totals
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT COALESCE(SUM(amount), 0) FROM receipts`+periodWhere+`),
			(SELECT COALESCE(SUM(amount), 0) FROM payment_vouchers`+periodWhere+`),
			(SELECT COALESCE(SUM(amount), 0) FROM expense_authorizations`+periodWhere+` AND status = 'approved')
	`, f, t).Scan(&out.Receipts, &out.PaymentVouchers, &out.ApprovedExpenses)
	if err != nil {
		return Totals{}, err
	}
	return out, nil
}
