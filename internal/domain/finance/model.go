package finance

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/divan/num2words"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound   = errors.New("finance: document not found")
	ErrNotPending = errors.New("finance: expense authorization is not pending")
)

// ValidationError is a document that cannot be issued as given.
type ValidationError struct{ Message string }

func (e *ValidationError) Error() string { return e.Message }

func invalid(msg string) error { return &ValidationError{Message: msg} }

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

type Receipt struct {
	ID            int64           `json:"id"`
	Number        string          `json:"number"`
	Payer         string          `json:"payer"`
	Amount        decimal.Decimal `json:"amount"`
	AmountInWords string          `json:"amountInWords"`
	Method        string          `json:"method"`
	IssuedAt      time.Time       `json:"issuedAt"`
	Notes         string          `json:"notes"`
}

type PaymentVoucher struct {
	ID       int64           `json:"id"`
	Number   string          `json:"number"`
	Payee    string          `json:"payee"`
	Amount   decimal.Decimal `json:"amount"`
	Purpose  string          `json:"purpose"`
	IssuedAt time.Time       `json:"issuedAt"`
}

type ExpenseAuthorization struct {
	ID          int64           `json:"id"`
	Number      string          `json:"number"`
	RequestedBy string          `json:"requestedBy"`
	Amount      decimal.Decimal `json:"amount"`
	Purpose     string          `json:"purpose"`
	Status      Status          `json:"status"`
	IssuedAt    time.Time       `json:"issuedAt"`
}

// Totals are the period sums the net income is computed from.
type Totals struct {
	Receipts         decimal.Decimal `json:"receipts"`
	PaymentVouchers  decimal.Decimal `json:"paymentVouchers"`
	ApprovedExpenses decimal.Decimal `json:"approvedExpenses"`
}

// NetIncome is money received minus money paid out and approved expenses.
func NetIncome(t Totals) decimal.Decimal {
	return t.Receipts.Sub(t.PaymentVouchers).Sub(t.ApprovedExpenses)
}

// AmountInWords spells out whole dollars and writes cents as a fraction,
// e.g. "One thousand two hundred fifty dollars and 40/100".
func AmountInWords(d decimal.Decimal) string {
	d = d.Abs().Round(2)
	whole := d.IntPart()
	cents := d.Sub(decimal.NewFromInt(whole)).Mul(decimal.NewFromInt(100)).IntPart()

	words := num2words.Convert(int(whole))
	if words == "" {
		words = "zero"
	}
	unit := "dollars"
	if whole == 1 {
		unit = "dollar"
	}
	s := fmt.Sprintf("%s %s and %02d/100", words, unit, cents)
	return strings.ToUpper(s[:1]) + s[1:]
}

func validAmount(a decimal.Decimal) error {
	if !a.IsPositive() {
		return invalid("amount must be greater than zero")
	}
	if !a.Equal(a.Round(2)) {
		return invalid("amount has more than two decimal places")
	}
	return nil
}

// documentNumber makes a number like RC-20261019-1a2b3c4d when none was given.
func documentNumber(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%s-%s", prefix, now.Format("20060102"), uuid.NewString()[:8])
}

func (r *Receipt) normalize(now time.Time) error {
	r.Payer = strings.TrimSpace(r.Payer)
	if r.Payer == "" {
		return invalid("payer is required")
	}
	if err := validAmount(r.Amount); err != nil {
		return err
	}
	if strings.TrimSpace(r.Number) == "" {
		r.Number = documentNumber("RC", now)
	}
	if r.Method == "" {
		r.Method = "cash"
	}
	if r.IssuedAt.IsZero() {
		r.IssuedAt = now
	}
	r.AmountInWords = AmountInWords(r.Amount)
	return nil
}

func (v *PaymentVoucher) normalize(now time.Time) error {
	v.Payee = strings.TrimSpace(v.Payee)
	if v.Payee == "" {
		return invalid("payee is required")
	}
	if err := validAmount(v.Amount); err != nil {
		return err
	}
	if strings.TrimSpace(v.Number) == "" {
		v.Number = documentNumber("PV", now)
	}
	if v.IssuedAt.IsZero() {
		v.IssuedAt = now
	}
	return nil
}

func (e *ExpenseAuthorization) normalize(now time.Time) error {
	e.RequestedBy = strings.TrimSpace(e.RequestedBy)
	if e.RequestedBy == "" {
		return invalid("requested by is required")
	}
	if err := validAmount(e.Amount); err != nil {
		return err
	}
	if strings.TrimSpace(e.Number) == "" {
		e.Number = documentNumber("EA", now)
	}
	if e.IssuedAt.IsZero() {
		e.IssuedAt = now
	}
	e.Status = StatusPending
	return nil
}
