package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

type supplierHandler struct {
	log   *slog.Logger
	store SupplierStore
}

type supplierRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	Active   *bool  `json:"active"`
}

func supplierID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func (h *supplierHandler) list(c *gin.Context) {
	items, err := h.store.List(c.Request.Context(), c.Query("active") == "true")
	if err != nil {
		internalError(c, h.log, "failed to list suppliers", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (h *supplierHandler) get(c *gin.Context) {
	id, ok := supplierID(c)
	if !ok {
		return
	}
	s, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		internalError(c, h.log, "failed to load supplier", err)
		return
	}
	if s == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "supplier not found"})
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *supplierHandler) create(c *gin.Context) {
	var in supplierRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(in.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "supplier name is required", "field": "name"})
		return
	}
	s, err := h.store.Create(c.Request.Context(), in.Name, in.Phone, in.Location)
	if err != nil {
		internalError(c, h.log, "failed to create supplier", err)
		return
	}
	c.JSON(http.StatusCreated, s)
}

// update renames a supplier and/or flips its active flag.
func (h *supplierHandler) update(c *gin.Context) {
	id, ok := supplierID(c)
	if !ok {
		return
	}
	var in supplierRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	s, err := h.store.GetByID(ctx, id)
	if err == nil && s != nil && strings.TrimSpace(in.Name) != "" {
		s, err = h.store.UpdateName(ctx, id, strings.TrimSpace(in.Name))
	}
	if err == nil && s != nil && in.Active != nil {
		s, err = h.store.SetActive(ctx, id, *in.Active)
	}
	if err != nil {
		if status, msg, ok := constraintError(err); ok {
			c.JSON(status, gin.H{"error": msg})
			return
		}
		internalError(c, h.log, "failed to update supplier", err)
		return
	}
	if s == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "supplier not found"})
		return
	}
	c.JSON(http.StatusOK, s)
}
