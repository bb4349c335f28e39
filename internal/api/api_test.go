package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/poletreat/internal/auth"
	"github.com/Spok95/poletreat/internal/domain/finance"
	"github.com/Spok95/poletreat/internal/domain/sorting"
	"github.com/Spok95/poletreat/internal/domain/stock"
	"github.com/Spok95/poletreat/internal/infra/metrics"
	"github.com/Spok95/poletreat/internal/report"
)

func init() { gin.SetMode(gin.TestMode) }

type sortRepo struct {
	mu    sync.Mutex
	calls []sorting.Record
	err   error
}

func (r *sortRepo) CreateSorted(_ context.Context, rec sorting.Record) (sorting.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, rec)
	if r.err != nil {
		return sorting.Record{}, r.err
	}
	rec.ID = int64(len(r.calls))
	return rec, nil
}

type stockStore struct {
	batches []stock.BatchWithProgress
	sorted  []sorting.Record
}

func (s *stockStore) ReceiveBatch(_ context.Context, b stock.Batch) (*stock.Batch, error) {
	if b.ID == "" {
		b.ID = "generated"
	}
	s.batches = append(s.batches, stock.BatchWithProgress{Batch: b, Remaining: b.Quantity})
	return &b, nil
}

func (s *stockStore) GetBatch(_ context.Context, id string) (*stock.BatchWithProgress, error) {
	for _, b := range s.batches {
		if b.ID == id {
			return &b, nil
		}
	}
	return nil, nil
}

func (s *stockStore) ListBatches(context.Context) ([]stock.BatchWithProgress, error) {
	return append([]stock.BatchWithProgress(nil), s.batches...), nil
}

func (s *stockStore) ListSorted(context.Context, string) ([]sorting.Record, error) {
	return s.sorted, nil
}

func (s *stockStore) ListRejected(context.Context) ([]stock.RejectedTally, error) {
	return nil, nil
}

type financeStore struct {
	decideErr error
}

func (f *financeStore) CreateReceipt(_ context.Context, in finance.Receipt) (*finance.Receipt, error) {
	if !in.Amount.IsPositive() {
		return nil, &finance.ValidationError{Message: "amount must be greater than zero"}
	}
	in.ID = 1
	return &in, nil
}
func (f *financeStore) ListReceipts(context.Context, time.Time, time.Time) ([]finance.Receipt, error) {
	return nil, nil
}
func (f *financeStore) CreateVoucher(_ context.Context, in finance.PaymentVoucher) (*finance.PaymentVoucher, error) {
	return &in, nil
}
func (f *financeStore) ListVouchers(context.Context, time.Time, time.Time) ([]finance.PaymentVoucher, error) {
	return nil, nil
}
func (f *financeStore) CreateExpense(_ context.Context, in finance.ExpenseAuthorization) (*finance.ExpenseAuthorization, error) {
	return &in, nil
}
func (f *financeStore) ListExpenses(context.Context, time.Time, time.Time) ([]finance.ExpenseAuthorization, error) {
	return nil, nil
}
func (f *financeStore) Decide(_ context.Context, id int64, approve bool) (*finance.ExpenseAuthorization, error) {
	if f.decideErr != nil {
		return nil, f.decideErr
	}
	st := finance.StatusRejected
	if approve {
		st = finance.StatusApproved
	}
	return &finance.ExpenseAuthorization{ID: id, Number: "EA-1", Status: st}, nil
}
func (f *financeStore) Totals(context.Context, time.Time, time.Time) (finance.Totals, error) {
	return finance.Totals{
		Receipts:         decimal.RequireFromString("1000"),
		PaymentVouchers:  decimal.RequireFromString("200"),
		ApprovedExpenses: decimal.RequireFromString("50.50"),
	}, nil
}

type principals map[int64]auth.Principal

func (p principals) Lookup(_ context.Context, id int64) (*auth.Principal, error) {
	pr, ok := p[id]
	if !ok {
		return nil, auth.ErrUnauthorized
	}
	return &pr, nil
}

type env struct {
	router  *gin.Engine
	tokens  *auth.Tokens
	repo    *sortRepo
	stock   *stockStore
	finance *financeStore
	seen    *sorting.Collector
	users   principals
}

func newEnv(t *testing.T) *env {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	e := &env{
		tokens:  auth.NewTokens("test-secret", time.Hour),
		repo:    &sortRepo{},
		stock:   &stockStore{},
		finance: &financeStore{},
		seen:    &sorting.Collector{},
		users: principals{
			1: {UserID: 1, Login: "admin", Role: auth.RoleAdmin},
			2: {UserID: 2, Login: "clerk", Role: auth.RoleClerk},
			3: {UserID: 3, Login: "acc", Role: auth.RoleAccountant},
		},
	}
	svc := sorting.NewService(e.repo,
		sorting.MultiSink{e.seen, sorting.ContextSink{}},
		log, metrics.New(prometheus.NewRegistry()))

	e.router = gin.New()
	Register(e.router, Deps{
		Log:        log,
		Authz:      auth.NewRoleAuthorizer(),
		Tokens:     e.tokens,
		Principals: e.users,
		Sorter:     svc,
		Stock:      e.stock,
		Finance:    e.finance,
		Reports:    report.NewService(e.stock, e.finance),
	})
	return e
}

func (e *env) do(t *testing.T, userID int64, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		tok, err := e.tokens.Issue(e.users[userID])
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

type sortResponse struct {
	Notification sorting.Notification `json:"notification"`
	Record       *sorting.Record       `json:"record"`
	Field        string                `json:"field"`
}

func decodeSort(t *testing.T, w *httptest.ResponseRecorder) sortResponse {
	t.Helper()
	var out sortResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestSortSuccess(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, 2, http.MethodPost, "/api/stock/sort",
		`{"unsortedStockId":"B-1","category":"fencing","size":"medium","lengthValue":"2.4","quantity":"12"}`)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	out := decodeSort(t, w)
	assert.Equal(t, sorting.Notification{Kind: sorting.KindSuccess, Message: "Stock sorted successfully"}, out.Notification)
	require.NotNil(t, out.Record)
	require.NotNil(t, out.Record.LengthUnit)
	assert.Equal(t, sorting.UnitFeet, *out.Record.LengthUnit)
	assert.Nil(t, out.Record.DiameterMM)
	assert.Equal(t, 12, out.Record.Quantity)

	require.Len(t, e.repo.calls, 1)
	last, ok := e.seen.Last()
	require.True(t, ok)
	assert.Equal(t, out.Notification, last)
}

func TestSortValidationFailure(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, 2, http.MethodPost, "/api/stock/sort",
		`{"unsortedStockId":"B-1","category":"telecom","size":"small","lengthValue":"9","diameterMm":"120","quantity":"3"}`)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	out := decodeSort(t, w)
	assert.Equal(t, sorting.KindError, out.Notification.Kind)
	assert.Equal(t, "diameter must be between 150 and 240 mm", out.Notification.Message)
	assert.Equal(t, "diameterMm", out.Field)
	assert.Nil(t, out.Record)
	assert.Empty(t, e.repo.calls)
}

func TestSortPersistenceFailure(t *testing.T) {
	e := newEnv(t)
	e.repo.err = fmt.Errorf("%w: 2 left, 5 requested", stock.ErrExceedsRemaining)

	w := e.do(t, 1, http.MethodPost, "/api/stock/sort",
		`{"unsortedStockId":"B-1","category":"rejected","quantity":"5"}`)

	require.Equal(t, http.StatusConflict, w.Code)
	out := decodeSort(t, w)
	assert.Equal(t, sorting.KindError, out.Notification.Kind)
	assert.Equal(t, "Failed to sort stock: "+e.repo.err.Error(), out.Notification.Message)
	assert.Len(t, e.repo.calls, 1)
}

func TestSortAccessControl(t *testing.T) {
	e := newEnv(t)
	body := `{"unsortedStockId":"B-1","category":"rejected","quantity":"1"}`

	assert.Equal(t, http.StatusUnauthorized, e.do(t, 0, http.MethodPost, "/api/stock/sort", body).Code)
	assert.Equal(t, http.StatusForbidden, e.do(t, 3, http.MethodPost, "/api/stock/sort", body).Code)
	assert.Empty(t, e.repo.calls)
}

func TestLengthUnit(t *testing.T) {
	e := newEnv(t)

	tests := []struct {
		category string
		status   int
		unit     any
	}{
		{"fencing", http.StatusOK, "ft"},
		{"telecom", http.StatusOK, "m"},
		{"high_voltage", http.StatusOK, "m"},
		{"rejected", http.StatusOK, nil},
		{"bogus", http.StatusBadRequest, nil},
	}
	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			w := e.do(t, 2, http.MethodGet, "/api/sorting/length-unit?category="+tt.category, "")
			require.Equal(t, tt.status, w.Code)
			if tt.status != http.StatusOK {
				return
			}
			var out map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
			assert.Equal(t, tt.unit, out["lengthUnit"])
		})
	}
}

func TestReceiveAndListBatches(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, 2, http.MethodPost, "/api/stock/unsorted", `{"quantity":0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, 2, http.MethodPost, "/api/stock/unsorted", `{"id":"B-7","quantity":40,"notes":"  from the north yard "}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = e.do(t, 2, http.MethodGet, "/api/stock/unsorted/B-7", "")
	require.Equal(t, http.StatusOK, w.Code)
	var b stock.BatchWithProgress
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
	assert.Equal(t, 40, b.Quantity)
	require.NotNil(t, b.Notes)
	assert.Equal(t, "from the north yard", *b.Notes)

	assert.Equal(t, http.StatusNotFound, e.do(t, 2, http.MethodGet, "/api/stock/unsorted/missing", "").Code)
}

func TestExpenseDecisions(t *testing.T) {
	e := newEnv(t)

	assert.Equal(t, http.StatusForbidden, e.do(t, 3, http.MethodPost, "/api/expense-authorizations/4/approve", "").Code)

	w := e.do(t, 1, http.MethodPost, "/api/expense-authorizations/4/approve", "")
	require.Equal(t, http.StatusOK, w.Code)
	var out finance.ExpenseAuthorization
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, finance.StatusApproved, out.Status)

	e.finance.decideErr = finance.ErrNotPending
	assert.Equal(t, http.StatusConflict, e.do(t, 1, http.MethodPost, "/api/expense-authorizations/4/reject", "").Code)

	e.finance.decideErr = finance.ErrNotFound
	assert.Equal(t, http.StatusNotFound, e.do(t, 1, http.MethodPost, "/api/expense-authorizations/9/reject", "").Code)
}

func TestReceiptValidation(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, 3, http.MethodPost, "/api/receipts", `{"payer":"Acme","amount":"0"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "amount must be greater than zero")

	w = e.do(t, 3, http.MethodPost, "/api/receipts", `{"payer":"Acme","amount":"12.50"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestReports(t *testing.T) {
	e := newEnv(t)

	assert.Equal(t, http.StatusForbidden, e.do(t, 2, http.MethodGet, "/api/reports/net-income", "").Code)

	w := e.do(t, 3, http.MethodGet, "/api/reports/net-income?from=2026-01-01&to=2026-01-31", "")
	require.Equal(t, http.StatusOK, w.Code)
	var ni report.NetIncomeReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ni))
	assert.True(t, decimal.RequireFromString("749.50").Equal(ni.NetIncome), ni.NetIncome.String())

	assert.Equal(t, http.StatusBadRequest, e.do(t, 3, http.MethodGet, "/api/reports/net-income?from=yesterday", "").Code)

	w = e.do(t, 3, http.MethodGet, "/api/reports/stock.xlsx", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
}
