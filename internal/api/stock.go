package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Spok95/poletreat/internal/domain/sorting"
	"github.com/Spok95/poletreat/internal/domain/stock"
)

type stockHandler struct {
	log    *slog.Logger
	sorter Sorter
	stock  StockStore
}

func (h *stockHandler) lengthUnit(c *gin.Context) {
	cat, ok := sorting.ParseCategory(c.Query("category"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category"})
		return
	}
	if !cat.Dimensional() {
		c.JSON(http.StatusOK, gin.H{"category": cat, "lengthUnit": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": cat, "lengthUnit": sorting.DeriveLengthUnit(cat)})
}

type receiveBatchRequest struct {
	ID         string     `json:"id"`
	Quantity   int        `json:"quantity"`
	SupplierID *int64     `json:"supplierId"`
	ReceivedAt *time.Time `json:"receivedAt"`
	Notes      string     `json:"notes"`
}

func (h *stockHandler) receiveBatch(c *gin.Context) {
	var in receiveBatchRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if in.Quantity < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be at least 1", "field": "quantity"})
		return
	}

	b := stock.Batch{ID: strings.TrimSpace(in.ID), Quantity: in.Quantity, SupplierID: in.SupplierID}
	if in.ReceivedAt != nil {
		b.ReceivedAt = *in.ReceivedAt
	}
	if n := strings.TrimSpace(in.Notes); n != "" {
		b.Notes = &n
	}

	out, err := h.stock.ReceiveBatch(c.Request.Context(), b)
	if err != nil {
		if status, msg, ok := constraintError(err); ok {
			c.JSON(status, gin.H{"error": msg})
			return
		}
		internalError(c, h.log, "failed to receive batch", err)
		return
	}
	h.log.Info("batch received", "id", out.ID, "qty", out.Quantity)
	c.JSON(http.StatusCreated, out)
}

func (h *stockHandler) listBatches(c *gin.Context) {
	items, err := h.stock.ListBatches(c.Request.Context())
	if err != nil {
		internalError(c, h.log, "failed to list batches", err)
		return
	}
	if c.Query("open") == "true" {
		open := items[:0]
		for _, b := range items {
			if b.Remaining > 0 {
				open = append(open, b)
			}
		}
		items = open
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (h *stockHandler) getBatch(c *gin.Context) {
	b, err := h.stock.GetBatch(c.Request.Context(), c.Param("id"))
	if err != nil {
		internalError(c, h.log, "failed to load batch", err)
		return
	}
	if b == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "batch not found"})
		return
	}
	c.JSON(http.StatusOK, b)
}

// sort submits the form. The response carries the same notification the
// other sinks saw, so the client can show it as is.
func (h *stockHandler) sort(c *gin.Context) {
	var req sorting.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var seen sorting.Collector
	ctx := sorting.WithSink(c.Request.Context(), &seen)
	rec, err := h.sorter.SubmitSort(ctx, req)
	note, _ := seen.Last()

	if err == nil {
		c.JSON(http.StatusCreated, gin.H{"notification": note, "record": rec})
		return
	}

	var ve *sorting.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"notification": note, "field": ve.Field})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, stock.ErrExceedsRemaining):
		status = http.StatusConflict
	case errors.Is(err, stock.ErrNotFound):
		status = http.StatusNotFound
	default:
		if s, _, ok := constraintError(err); ok {
			status = s
		}
	}
	c.JSON(status, gin.H{"notification": note})
}

func (h *stockHandler) listSorted(c *gin.Context) {
	items, err := h.stock.ListSorted(c.Request.Context(), c.Query("batch"))
	if err != nil {
		internalError(c, h.log, "failed to list sorted stock", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (h *stockHandler) listRejected(c *gin.Context) {
	items, err := h.stock.ListRejected(c.Request.Context())
	if err != nil {
		internalError(c, h.log, "failed to list rejected poles", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

// constraintError maps the postgres integrity violations a client can cause.
func constraintError(err error) (int, string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return 0, "", false
	}
	switch pgErr.Code {
	case "23503":
		return http.StatusNotFound, "referenced record does not exist", true
	case "23505":
		return http.StatusConflict, "record already exists", true
	case "23514":
		return http.StatusUnprocessableEntity, "record violates a check constraint", true
	}
	return 0, "", false
}
