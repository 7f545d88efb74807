// Package devapi serves the back-office REST contract over a local catalog so
// the TUI can be developed without the production backend.
package devapi

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jask/baydesk/internal/catalog"
)

// NewRouter mounts the catalog endpoints under /api. When token is set every
// /api request must carry it as a bearer token.
func NewRouter(cat catalog.Catalog, token string, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	h := &handlers{cat: cat, log: logger}
	api := r.Group("/api", bearerAuth(token))
	api.GET("/models", h.listModels)
	api.POST("/models", h.createModel)
	api.GET("/skus", h.listSKUs)
	api.POST("/skus", h.createSKU)
	return r
}

type handlers struct {
	cat catalog.Catalog
	log *slog.Logger
}

func (h *handlers) listModels(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	page, err := h.cat.ListModels(c.Request.Context(), catalog.ModelQuery{
		Search: c.Query("search"),
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *handlers) createModel(c *gin.Context) {
	var in catalog.NewModel
	if err := c.ShouldBindJSON(&in); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}
	in.RequestKey = c.GetHeader("Idempotency-Key")
	m, err := h.cat.CreateModel(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *handlers) listSKUs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	skus, err := h.cat.ListSKUs(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	if skus == nil {
		skus = []catalog.SKU{}
	}
	c.JSON(http.StatusOK, gin.H{"skus": skus})
}

func (h *handlers) createSKU(c *gin.Context) {
	var in catalog.NewSKU
	if err := c.ShouldBindJSON(&in); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}
	in.RequestKey = c.GetHeader("Idempotency-Key")
	s, err := h.cat.CreateSKU(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, s)
}

func (h *handlers) fail(c *gin.Context, err error) {
	var verr *catalog.ValidationError
	switch {
	case errors.As(err, &verr):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "fields": verr.Fields})
	case errors.Is(err, catalog.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		_ = c.Error(err)
		h.log.Error("request_failed", slog.String("path", c.Request.URL.Path), slog.Any("err", err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func bearerAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}
		got, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

func requestLogger(l *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if q := c.Request.URL.RawQuery; q != "" {
			path = path + "?" + q
		}

		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		if status >= 500 {
			level = slog.LevelError
		} else if status >= 400 {
			level = slog.LevelWarn
		}
		attrs := []slog.Attr{
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.Int("bytes", c.Writer.Size()),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("errors", c.Errors.String()))
		}
		l.LogAttrs(c.Request.Context(), level, "http_request", attrs...)
	}
}
