package http

import (
	"github.com/gin-gonic/gin"
	"github.com/guttosm/casebreak-service/internal/middleware"
)

// RouteGroup defines a group of routes that can be registered.
type RouteGroup interface {
	// RegisterRoutes registers routes to the given router group.
	RegisterRoutes(rg *gin.RouterGroup, cfg *RouterConfig)
}

// StorefrontRoutes are the customer-facing routes: pricing preview, product
// lookup, cart and checkout.
type StorefrontRoutes struct {
	handler *Handler
}

// NewStorefrontRoutes creates the storefront route group.
func NewStorefrontRoutes(handler *Handler) *StorefrontRoutes {
	return &StorefrontRoutes{handler: handler}
}

// RegisterRoutes registers the storefront routes. Cart and checkout require a
// customer token when authentication is enabled and are rate limited per user.
func (r *StorefrontRoutes) RegisterRoutes(rg *gin.RouterGroup, cfg *RouterConfig) {
	rg.POST("/pricing/unit-price", r.handler.UnitPrice)
	rg.GET("/products/:id", r.handler.GetProduct)

	customer := rg.Group("")
	if cfg.EnableAuth {
		customer.Use(middleware.CustomerAuth(cfg.JWTSecret))
	}
	if cfg.userLimiter != nil {
		customer.Use(cfg.userLimiter.UserRateLimit())
	}

	customer.GET("/cart", r.handler.GetCart)
	customer.PUT("/cart/lines", r.handler.SetCartLine)

	if cfg.Idempotency != nil {
		customer.POST("/checkout", middleware.Idempotency(*cfg.Idempotency), r.handler.Checkout)
	} else {
		customer.POST("/checkout", r.handler.Checkout)
	}
}

// AdminRoutes are the back-office routes: catalog writes, inventory, the
// fulfillment and purchase reports, and the audit trail when logs are persisted.
type AdminRoutes struct {
	handler *Handler
}

// NewAdminRoutes creates the admin route group.
func NewAdminRoutes(handler *Handler) *AdminRoutes {
	return &AdminRoutes{handler: handler}
}

// RegisterRoutes registers the admin routes behind the API key check.
func (r *AdminRoutes) RegisterRoutes(rg *gin.RouterGroup, cfg *RouterConfig) {
	admin := rg.Group("")
	if cfg.EnableAuth {
		admin.Use(middleware.APIKeyAuth(cfg.APIKeys))
	}

	admin.POST("/products", r.handler.CreateProduct)
	admin.PATCH("/products/:id", r.handler.UpdateProduct)
	admin.GET("/inventory/:productId", r.handler.GetStock)

	reports := admin.Group("/reports")
	reports.GET("/case-break", r.handler.CaseBreakReport)
	reports.POST("/case-break/:id/process", r.handler.ProcessCaseBreak)
	reports.GET("/purchases", r.handler.PurchaseReport)
	reports.GET("/purchases/:id", r.handler.GetPurchase)
	reports.PATCH("/purchases/:id", r.handler.UpdatePurchaseStatus)

	if r.handler.logging != nil {
		reports.GET("/audit-logs", r.handler.AuditLogReport)
	}
}
