package router

import (
	"github.com/gin-gonic/gin"
	"github.com/opsconsole/backend/internal/infrastructure/config"
	"github.com/opsconsole/backend/internal/infrastructure/logger"
	"github.com/opsconsole/backend/internal/interfaces/http/handler"
	"github.com/opsconsole/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// Handlers are the HTTP handlers the console API serves
type Handlers struct {
	System           *handler.SystemHandler
	Products         *handler.ProductHandler
	ProductSelection *handler.SelectionHandler
	Orders           *handler.OrderHandler
	OrderSelection   *handler.SelectionHandler
	Consolidation    *handler.ConsolidationHandler
}

// EngineConfig configures the middleware chain of the console engine
type EngineConfig struct {
	Logger  *zap.Logger
	HTTP    config.HTTPConfig
	Tracing middleware.TracingConfig
	Metrics middleware.HTTPMetricsConfig
	// RateLimiter throttles console calls per operator; nil disables it
	RateLimiter *middleware.RateLimiter
}

// NewEngine builds the gin engine with the full middleware chain and every
// console route.
//
// Middleware order:
//  1. RequestID
//  2. Recovery
//  3. Logger
//  4. Security headers
//  5. CORS
//  6. BodyLimit
//  7. Tracing and HTTP metrics
//
// Console routes additionally run Identity, span enrichment and the rate
// limiter, in that order.
func NewEngine(cfg EngineConfig, h Handlers) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Warn("Invalid trusted proxies, trusting none", zap.Error(err))
		_ = engine.SetTrustedProxies(nil)
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	engine.Use(middleware.CORSWithConfig(cors))

	if cfg.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	}
	if cfg.Tracing.Enabled {
		engine.Use(middleware.TracingWithConfig(cfg.Tracing))
	}
	engine.Use(middleware.HTTPMetrics(cfg.Metrics))

	engine.GET("/health", h.System.Health)

	r := NewRouter(engine, WithAPIVersion("v1"))
	r.Register(NewDomainGroup("system", "").GET("/ping", h.System.Ping))

	identity := middleware.DefaultIdentityConfig()
	identity.Logger = log
	consoleRoutes := ConsoleRoutes(h).Use(middleware.Identity(identity), middleware.SpanEnricher())
	if cfg.RateLimiter != nil {
		consoleRoutes.Use(middleware.RateLimit(cfg.RateLimiter))
	}
	r.Register(consoleRoutes)
	r.Setup()

	return engine
}

// ConsoleRoutes is the console route table, relative to /api/v1
func ConsoleRoutes(h Handlers) *DomainGroup {
	console := NewDomainGroup("console", "/console")

	products := console.Group("products", "/products")
	products.GET("/groups", h.Products.ListGroups)
	products.POST("/reload", h.Products.Reload)
	products.POST("/bulk-delete", h.Products.BulkDelete)
	products.POST("/restock", h.Products.Restock)
	selectionRoutes(products, h.ProductSelection)

	orders := console.Group("orders", "/orders")
	orders.GET("/items", h.Orders.ListItems)
	orders.POST("/reload", h.Orders.Reload)
	orders.POST("/bulk-delete", h.Orders.BulkDelete)
	selectionRoutes(orders, h.OrderSelection)

	consolidation := console.Group("consolidation", "/consolidation")
	consolidation.GET("", h.Consolidation.State)
	consolidation.POST("/open", h.Consolidation.Open)
	consolidation.POST("/cancel", h.Consolidation.Cancel)
	consolidation.POST("/confirm", h.Consolidation.Confirm)
	consolidation.GET("/runs", h.Consolidation.Runs)

	return console
}

func selectionRoutes(parent *DomainGroup, h *handler.SelectionHandler) {
	sel := parent.Group("selection", "/selection")
	sel.GET("", h.Get)
	sel.DELETE("", h.Clear)
	sel.POST("/toggle", h.Toggle)
	sel.POST("/select-all", h.SelectAll)
}
