package api

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Spok95/poletreat/internal/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type reportHandler struct {
	log     *slog.Logger
	reports *report.Service
}

func (h *reportHandler) stock(c *gin.Context) {
	s, err := h.reports.Stock(c.Request.Context())
	if err != nil {
		internalError(c, h.log, "failed to build stock report", err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *reportHandler) stockExcel(c *gin.Context) {
	s, err := h.reports.Stock(c.Request.Context())
	if err != nil {
		internalError(c, h.log, "failed to build stock report", err)
		return
	}
	now := time.Now()
	var buf bytes.Buffer
	if err := report.WriteStockExcel(&buf, s, now); err != nil {
		internalError(c, h.log, "failed to render stock report", err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="stock-%s.xlsx"`, now.Format("20060102")))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *reportHandler) netIncome(c *gin.Context) {
	from, to, ok := period(c)
	if !ok {
		return
	}
	r, err := h.reports.NetIncome(c.Request.Context(), from, to)
	if err != nil {
		internalError(c, h.log, "failed to build net income report", err)
		return
	}
	c.JSON(http.StatusOK, r)
}
