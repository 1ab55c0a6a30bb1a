package handler

import (
	"embed"
	"html/template"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

func loadTemplates() *template.Template {
	funcs := template.FuncMap{
		"money": func(d decimal.Decimal) string { return "$" + d.StringFixed(2) },
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}

// PageHandler renders the storefront HTML pages.
type PageHandler struct {
	cart    CartEngine
	catalog Catalog
	logger  *zap.Logger
}

func NewPageHandler(cart CartEngine, catalog Catalog, logger *zap.Logger) *PageHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PageHandler{cart: cart, catalog: catalog, logger: logger}
}

func (h *PageHandler) Index(c *gin.Context) {
	ctx := c.Request.Context()
	items, err := h.catalog.List(ctx)
	if err != nil {
		h.renderError(c, err)
		return
	}
	count, err := h.cart.Count(ctx)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"CartCount": count,
		"Items":     items,
	})
}

func (h *PageHandler) Product(c *gin.Context) {
	ctx := c.Request.Context()
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.HTML(http.StatusNotFound, "error.html", gin.H{"Title": "Not found", "Message": "No such product."})
		return
	}

	item, err := h.catalog.Get(ctx, id)
	if err != nil {
		h.renderError(c, err)
		return
	}
	count, err := h.cart.Count(ctx)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.HTML(http.StatusOK, "product.html", gin.H{
		"CartCount": count,
		"Item":      item,
	})
}

func (h *PageHandler) Cart(c *gin.Context) {
	view, err := h.cart.View(c.Request.Context())
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.HTML(http.StatusOK, "cart.html", gin.H{
		"CartCount": view.Count,
		"Cart":      view,
	})
}

func (h *PageHandler) NotFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, "error.html", gin.H{"Title": "Not found", "Message": "Page not found."})
}

func (h *PageHandler) renderError(c *gin.Context, err error) {
	status, message := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("page render failed",
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", RequestIDFrom(c)),
			zap.Error(err),
		)
	}
	c.HTML(status, "error.html", gin.H{"Title": http.StatusText(status), "Message": message})
}
