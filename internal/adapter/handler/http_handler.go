package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/service"
	"github.com/rl1809/storefront/internal/metrics"
)

type CartEngine interface {
	Add(ctx context.Context, in service.AddToCartInput) (domain.CartLine, error)
	Update(ctx context.Context, in service.UpdateCartLineInput) (domain.CartLine, error)
	Remove(ctx context.Context, lineID int64) error
	Clear(ctx context.Context) (int64, error)
	View(ctx context.Context) (domain.CartView, error)
	Count(ctx context.Context) (int, error)
}

type Catalog interface {
	List(ctx context.Context) ([]domain.InventoryItem, error)
	Get(ctx context.Context, id int64) (domain.InventoryItem, error)
}

type AddToCartRequest struct {
	InventoryID int64 `json:"inventoryId" form:"inventoryId" binding:"omitempty,gt=0"`
	Quantity    *int  `json:"quantity" form:"quantity" binding:"omitempty,gt=0"`
}

type UpdateCartLineRequest struct {
	Quantity    *int   `json:"quantity" binding:"required,min=0"`
	InventoryID *int64 `json:"inventory_id" binding:"omitempty,gt=0"`
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type ClearCartResponse struct {
	Success bool  `json:"success"`
	Removed int64 `json:"removed"`
}

type HTTPHandler struct {
	cart    CartEngine
	catalog Catalog
	store   Pinger
	metrics *metrics.ServerMetrics
	logger  *zap.Logger
}

func NewHTTPHandler(cart CartEngine, catalog Catalog, store Pinger, m *metrics.ServerMetrics, logger *zap.Logger) *HTTPHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPHandler{cart: cart, catalog: catalog, store: store, metrics: m, logger: logger}
}

func (h *HTTPHandler) AddToCart(c *gin.Context) {
	var req AddToCartRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBind(&req); err != nil {
			writeError(c, http.StatusBadRequest, bindMessage(err))
			return
		}
	}
	if req.InventoryID == 0 {
		if raw := c.Query("inventoryId"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id <= 0 {
				writeError(c, http.StatusBadRequest, "inventoryId must be a positive integer")
				return
			}
			req.InventoryID = id
		}
	}
	if req.InventoryID == 0 {
		writeError(c, http.StatusBadRequest, "inventoryId is required")
		return
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	line, err := h.cart.Add(c.Request.Context(), service.AddToCartInput{
		InventoryID:    req.InventoryID,
		Quantity:       quantity,
		IdempotencyKey: c.GetHeader("Idempotency-Key"),
	})
	h.observe("add", err)
	if err != nil {
		h.fail(c, err)
		return
	}

	if isFormPost(c) {
		c.Redirect(http.StatusSeeOther, "/cart")
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: line})
}

func (h *HTTPHandler) UpdateCartLine(c *gin.Context) {
	lineID, ok := lineIDParam(c)
	if !ok {
		return
	}

	var req UpdateCartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, bindMessage(err))
		return
	}

	line, err := h.cart.Update(c.Request.Context(), service.UpdateCartLineInput{
		LineID:      lineID,
		Quantity:    *req.Quantity,
		InventoryID: req.InventoryID,
	})
	h.observe("update", err)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: line})
}

func (h *HTTPHandler) RemoveCartLine(c *gin.Context) {
	lineID, ok := lineIDParam(c)
	if !ok {
		return
	}

	err := h.cart.Remove(c.Request.Context(), lineID)
	h.observe("remove", err)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Message: "cart line removed"})
}

func (h *HTTPHandler) ClearCart(c *gin.Context) {
	removed, err := h.cart.Clear(c.Request.Context())
	h.observe("clear", err)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ClearCartResponse{Success: true, Removed: removed})
}

func (h *HTTPHandler) ViewCart(c *gin.Context) {
	view, err := h.cart.View(c.Request.Context())
	h.observe("view", err)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: view})
}

func (h *HTTPHandler) ListInventory(c *gin.Context) {
	items, err := h.catalog.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: items})
}

func (h *HTTPHandler) HealthCheck(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		h.logger.Warn("health check failed", zap.Error(err))
		writeError(c, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Message: "ok"})
}

func (h *HTTPHandler) fail(c *gin.Context, err error) {
	status, message := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("route", c.FullPath()),
			zap.String("request_id", RequestIDFrom(c)),
			zap.Error(err),
		)
	}
	writeError(c, status, message)
}

func (h *HTTPHandler) observe(op string, err error) {
	if h.metrics == nil {
		return
	}
	h.metrics.CartOperations.WithLabelValues(op, resultLabel(err)).Inc()
}

// statusFor maps engine and store errors onto HTTP statuses. Server-side
// failures get a generic message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "store unavailable"
	case errors.Is(err, service.ErrInvalidQuantity):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrDuplicateLine),
		errors.Is(err, service.ErrDuplicateRequest):
		return http.StatusConflict, err.Error()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "request cancelled"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrStoreUnavailable):
		return "store_unavailable"
	case errors.Is(err, service.ErrInvalidQuantity):
		return "invalid"
	case errors.Is(err, service.ErrNotFound):
		return "not_found"
	case errors.Is(err, service.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, service.ErrDuplicateLine), errors.Is(err, service.ErrDuplicateRequest):
		return "conflict"
	default:
		return "error"
	}
}

func bindMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request body"
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		}
	}
	return strings.Join(msgs, "; ")
}

func lineIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(c, http.StatusBadRequest, "cart line id must be a positive integer")
		return 0, false
	}
	return id, true
}

func isFormPost(c *gin.Context) bool {
	switch c.ContentType() {
	case gin.MIMEPOSTForm, gin.MIMEMultipartPOSTForm:
		return true
	}
	return false
}

func writeError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Response{Success: false, Message: message})
}
