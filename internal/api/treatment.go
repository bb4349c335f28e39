package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Spok95/poletreat/internal/domain/treatment"
)

type treatmentHandler struct {
	log   *slog.Logger
	store TreatmentStore
}

func (h *treatmentHandler) list(c *gin.Context) {
	from, to, ok := period(c)
	if !ok {
		return
	}
	items, err := h.store.List(c.Request.Context(), from, to)
	if err != nil {
		internalError(c, h.log, "failed to list treatments", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (h *treatmentHandler) create(c *gin.Context) {
	var in treatment.Operation
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := in.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out, err := h.store.Create(c.Request.Context(), in)
	if err != nil {
		internalError(c, h.log, "failed to record treatment", err)
		return
	}
	h.log.Info("treatment recorded", "id", out.ID, "charge", out.ChargeNumber, "qty", out.Quantity)
	c.JSON(http.StatusCreated, out)
}
