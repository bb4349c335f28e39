package crud

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Store is what Handler needs; *Repo satisfies it.
type Store[T any] interface {
	Schema() Schema[T]
	List(ctx context.Context, p Page) ([]T, int64, error)
	Get(ctx context.Context, id int64) (*T, error)
	Create(ctx context.Context, v T) (*T, error)
	Update(ctx context.Context, id int64, v T) (*T, error)
	Delete(ctx context.Context, id int64) error
}

type Handler[T any] struct {
	store Store[T]
	log   *slog.Logger
}

func NewHandler[T any](store Store[T], log *slog.Logger) *Handler[T] {
	return &Handler[T]{store: store, log: log}
}

// Register mounts the routes under rg at path. read guards the GET routes,
// write guards the rest.
func (h *Handler[T]) Register(rg *gin.RouterGroup, path string, read, write gin.HandlerFunc) {
	g := rg.Group(path)
	g.GET("", read, h.list)
	g.GET("/fields", read, h.fields)
	g.GET("/:id", read, h.get)
	g.POST("", write, h.create)
	g.PUT("/:id", write, h.update)
	g.DELETE("/:id", write, h.delete)
}

func (h *Handler[T]) list(c *gin.Context) {
	number, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("pageSize"))
	p := NewPage(number, size)

	items, total, err := h.store.List(c.Request.Context(), p)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, NewPaginated(items, total, p))
}

func (h *Handler[T]) fields(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"fields": h.store.Schema().Fields})
}

func (h *Handler[T]) get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	v, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if v == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler[T]) create(c *gin.Context) {
	var in T
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	v, err := h.store.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

func (h *Handler[T]) update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var in T
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	v, err := h.store.Update(c.Request.Context(), id, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler[T]) delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler[T]) fail(c *gin.Context, err error) {
	var re *RequiredError
	switch {
	case errors.As(err, &re):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": re.Field.Column})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		h.log.Error("crud request failed", "table", h.store.Schema().Table, "path", c.FullPath(), "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
