// Package api is the JSON surface of the yard: one handler set per area,
// all behind Authenticate and a per-route capability check.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Spok95/poletreat/internal/auth"
	"github.com/Spok95/poletreat/internal/crud"
	"github.com/Spok95/poletreat/internal/domain/finance"
	"github.com/Spok95/poletreat/internal/domain/parties"
	"github.com/Spok95/poletreat/internal/domain/sorting"
	"github.com/Spok95/poletreat/internal/domain/stock"
	"github.com/Spok95/poletreat/internal/domain/suppliers"
	"github.com/Spok95/poletreat/internal/domain/treatment"
	"github.com/Spok95/poletreat/internal/report"
)

type Sorter interface {
	SubmitSort(ctx context.Context, req sorting.Request) (sorting.Record, error)
}

type StockStore interface {
	ReceiveBatch(ctx context.Context, b stock.Batch) (*stock.Batch, error)
	GetBatch(ctx context.Context, id string) (*stock.BatchWithProgress, error)
	ListBatches(ctx context.Context) ([]stock.BatchWithProgress, error)
	ListSorted(ctx context.Context, batchID string) ([]sorting.Record, error)
	ListRejected(ctx context.Context) ([]stock.RejectedTally, error)
}

type SupplierStore interface {
	Create(ctx context.Context, name, phone, location string) (*suppliers.Supplier, error)
	GetByID(ctx context.Context, id int64) (*suppliers.Supplier, error)
	List(ctx context.Context, onlyActive bool) ([]suppliers.Supplier, error)
	UpdateName(ctx context.Context, id int64, name string) (*suppliers.Supplier, error)
	SetActive(ctx context.Context, id int64, active bool) (*suppliers.Supplier, error)
}

type TreatmentStore interface {
	Create(ctx context.Context, o treatment.Operation) (*treatment.Operation, error)
	List(ctx context.Context, from, to time.Time) ([]treatment.Operation, error)
}

type FinanceStore interface {
	CreateReceipt(ctx context.Context, in finance.Receipt) (*finance.Receipt, error)
	ListReceipts(ctx context.Context, from, to time.Time) ([]finance.Receipt, error)
	CreateVoucher(ctx context.Context, in finance.PaymentVoucher) (*finance.PaymentVoucher, error)
	ListVouchers(ctx context.Context, from, to time.Time) ([]finance.PaymentVoucher, error)
	CreateExpense(ctx context.Context, in finance.ExpenseAuthorization) (*finance.ExpenseAuthorization, error)
	ListExpenses(ctx context.Context, from, to time.Time) ([]finance.ExpenseAuthorization, error)
	Decide(ctx context.Context, id int64, approve bool) (*finance.ExpenseAuthorization, error)
}

type Deps struct {
	Log        *slog.Logger
	Authz      auth.Authorizer
	Tokens     *auth.Tokens
	Principals auth.PrincipalStore
	Users      auth.Authenticator

	Sorter     Sorter
	Stock      StockStore
	Suppliers  SupplierStore
	Treatments TreatmentStore
	Clients    crud.Store[parties.Party]
	Customers  crud.Store[parties.Party]
	Finance    FinanceStore
	Reports    *report.Service
}

// Register mounts /api on r.
func Register(r gin.IRouter, d Deps) {
	r.POST("/api/auth/login", auth.LoginHandler(d.Users, d.Tokens))

	g := r.Group("/api", auth.Authenticate(d.Tokens, d.Principals))
	need := func(c auth.Capability) gin.HandlerFunc { return auth.Require(d.Authz, c) }

	g.GET("/me", func(c *gin.Context) {
		p, _ := auth.PrincipalFrom(c)
		c.JSON(http.StatusOK, p)
	})

	sh := &stockHandler{log: d.Log, sorter: d.Sorter, stock: d.Stock}
	g.GET("/sorting/length-unit", need(auth.CapStockRead), sh.lengthUnit)
	g.GET("/stock/unsorted", need(auth.CapStockRead), sh.listBatches)
	g.GET("/stock/unsorted/:id", need(auth.CapStockRead), sh.getBatch)
	g.POST("/stock/unsorted", need(auth.CapStockWrite), sh.receiveBatch)
	g.POST("/stock/sort", need(auth.CapStockWrite), sh.sort)
	g.GET("/stock/sorted", need(auth.CapStockRead), sh.listSorted)
	g.GET("/stock/rejected", need(auth.CapStockRead), sh.listRejected)

	suph := &supplierHandler{log: d.Log, store: d.Suppliers}
	g.GET("/suppliers", need(auth.CapStockRead), suph.list)
	g.GET("/suppliers/:id", need(auth.CapStockRead), suph.get)
	g.POST("/suppliers", need(auth.CapStockWrite), suph.create)
	g.PUT("/suppliers/:id", need(auth.CapStockWrite), suph.update)

	th := &treatmentHandler{log: d.Log, store: d.Treatments}
	g.GET("/treatments", need(auth.CapStockRead), th.list)
	g.POST("/treatments", need(auth.CapStockWrite), th.create)

	crud.NewHandler(d.Clients, d.Log).Register(g, "/clients", need(auth.CapPartiesRead), need(auth.CapPartiesWrite))
	crud.NewHandler(d.Customers, d.Log).Register(g, "/customers", need(auth.CapPartiesRead), need(auth.CapPartiesWrite))

	fh := &financeHandler{log: d.Log, store: d.Finance}
	g.GET("/receipts", need(auth.CapFinanceRead), fh.listReceipts)
	g.POST("/receipts", need(auth.CapFinanceWrite), fh.createReceipt)
	g.GET("/payment-vouchers", need(auth.CapFinanceRead), fh.listVouchers)
	g.POST("/payment-vouchers", need(auth.CapFinanceWrite), fh.createVoucher)
	g.GET("/expense-authorizations", need(auth.CapFinanceRead), fh.listExpenses)
	g.POST("/expense-authorizations", need(auth.CapFinanceWrite), fh.createExpense)
	g.POST("/expense-authorizations/:id/approve", need(auth.CapFinanceAdmin), fh.decide(true))
	g.POST("/expense-authorizations/:id/reject", need(auth.CapFinanceAdmin), fh.decide(false))

	rh := &reportHandler{log: d.Log, reports: d.Reports}
	g.GET("/reports/stock", need(auth.CapReportsRead), rh.stock)
	g.GET("/reports/stock.xlsx", need(auth.CapReportsRead), rh.stockExcel)
	g.GET("/reports/net-income", need(auth.CapReportsRead), rh.netIncome)
}

func internalError(c *gin.Context, log *slog.Logger, msg string, err error) {
	log.Error(msg, "path", c.FullPath(), "err", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

// period reads ?from=YYYY-MM-DD&to=YYYY-MM-DD; to is inclusive of that day.
func period(c *gin.Context) (time.Time, time.Time, bool) {
	var from, to time.Time
	var err error
	if s := c.Query("from"); s != "" {
		if from, err = time.Parse(time.DateOnly, s); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be YYYY-MM-DD"})
			return from, to, false
		}
	}
	if s := c.Query("to"); s != "" {
		if to, err = time.Parse(time.DateOnly, s); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "to must be YYYY-MM-DD"})
			return from, to, false
		}
		to = to.AddDate(0, 0, 1)
	}
	return from, to, true
}
