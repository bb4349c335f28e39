package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Spok95/poletreat/internal/domain/finance"
)

type financeHandler struct {
	log   *slog.Logger
	store FinanceStore
}

func (h *financeHandler) fail(c *gin.Context, msg string, err error) {
	var ve *finance.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Message})
	case errors.Is(err, finance.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
	case errors.Is(err, finance.ErrNotPending):
		c.JSON(http.StatusConflict, gin.H{"error": "expense authorization is already decided"})
	default:
		if status, m, ok := constraintError(err); ok {
			c.JSON(status, gin.H{"error": m})
			return
		}
		internalError(c, h.log, msg, err)
	}
}

func (h *financeHandler) listReceipts(c *gin.Context) {
	from, to, ok := period(c)
	if !ok {
		return
	}
	items, err := h.store.ListReceipts(c.Request.Context(), from, to)
	if err != nil {
		h.fail(c, "failed to list receipts", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (h *financeHandler) createReceipt(c *gin.Context) {
	var in finance.Receipt
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out, err := h.store.CreateReceipt(c.Request.Context(), in)
	if err != nil {
		h.fail(c, "failed to issue receipt", err)
		return
	}
	h.log.Info("receipt issued", "number", out.Number, "amount", out.Amount.StringFixed(2))
	c.JSON(http.StatusCreated, out)
}

func (h *financeHandler) listVouchers(c *gin.Context) {
	from, to, ok := period(c)
	if !ok {
		return
	}
	items, err := h.store.ListVouchers(c.Request.Context(), from, to)
	if err != nil {
		h.fail(c, "failed to list payment vouchers", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (h *financeHandler) createVoucher(c *gin.Context) {
	var in finance.PaymentVoucher
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out, err := h.store.CreateVoucher(c.Request.Context(), in)
	if err != nil {
		h.fail(c, "failed to issue payment voucher", err)
		return
	}
	h.log.Info("payment voucher issued", "number", out.Number, "amount", out.Amount.StringFixed(2))
	c.JSON(http.StatusCreated, out)
}

func (h *financeHandler) listExpenses(c *gin.Context) {
	from, to, ok := period(c)
	if !ok {
		return
	}
	items, err := h.store.ListExpenses(c.Request.Context(), from, to)
	if err != nil {
		h.fail(c, "failed to list expense authorizations", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (h *financeHandler) createExpense(c *gin.Context) {
	var in finance.ExpenseAuthorization
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out, err := h.store.CreateExpense(c.Request.Context(), in)
	if err != nil {
		h.fail(c, "failed to raise expense authorization", err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h *financeHandler) decide(approve bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}
		out, err := h.store.Decide(c.Request.Context(), id, approve)
		if err != nil {
			h.fail(c, "failed to decide expense authorization", err)
			return
		}
		h.log.Info("expense authorization decided", "number", out.Number, "status", out.Status)
		c.JSON(http.StatusOK, out)
	}
}
