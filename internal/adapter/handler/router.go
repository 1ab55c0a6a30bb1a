package handler

import (
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rl1809/storefront/internal/metrics"
)

type RouterConfig struct {
	Cart      CartEngine
	Catalog   Catalog
	Store     Pinger
	Metrics   *metrics.ServerMetrics
	Logger    *zap.Logger
	PublicDir string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(RequestID(), Recovery(logger), RequestLogger(logger))
	if cfg.Metrics != nil {
		r.Use(Metrics(cfg.Metrics))
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}
	r.SetHTMLTemplate(loadTemplates())

	api := NewHTTPHandler(cfg.Cart, cfg.Catalog, cfg.Store, cfg.Metrics, logger)
	pages := NewPageHandler(cfg.Cart, cfg.Catalog, logger)

	r.GET("/health", api.HealthCheck)

	cart := r.Group("/api/cart")
	cart.GET("", api.ViewCart)
	cart.POST("", api.AddToCart)
	cart.DELETE("", api.ClearCart)
	cart.PUT("/:id", api.UpdateCartLine)
	cart.DELETE("/:id", api.RemoveCartLine)
	r.GET("/api/inventory", api.ListInventory)

	r.GET("/", pages.Index)
	r.GET("/product/:id", pages.Product)
	r.GET("/cart", pages.Cart)

	if cfg.PublicDir != "" {
		r.StaticFile("/style.css", filepath.Join(cfg.PublicDir, "style.css"))
		r.StaticFile("/index.js", filepath.Join(cfg.PublicDir, "index.js"))
		r.Static("/images", filepath.Join(cfg.PublicDir, "images"))
	}
	r.NoRoute(pages.NotFound)

	return r
}
