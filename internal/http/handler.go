package http

import (
	"github.com/gin-gonic/gin"
	"github.com/guttosm/casebreak-service/internal/middleware"
	"github.com/guttosm/casebreak-service/internal/service"
)

// Services bundles the service layer the handlers call into.
type Services struct {
	Pricing     service.PricingService
	Catalog     service.CatalogService
	Inventory   service.InventoryService
	Carts       service.CartService
	Checkout    service.CheckoutService
	Fulfillment service.FulfillmentService
	Purchases   service.PurchaseService
	Logging     service.LoggingService
}

// Handler provides HTTP handlers for the storefront and admin routes.
type Handler struct {
	pricing     service.PricingService
	catalog     service.CatalogService
	inventory   service.InventoryService
	carts       service.CartService
	checkout    service.CheckoutService
	fulfillment service.FulfillmentService
	purchases   service.PurchaseService
	logging     service.LoggingService
}

// NewHandler creates a new Handler instance.
func NewHandler(s Services) *Handler {
	return &Handler{
		pricing:     s.Pricing,
		catalog:     s.Catalog,
		inventory:   s.Inventory,
		carts:       s.Carts,
		checkout:    s.Checkout,
		fulfillment: s.Fulfillment,
		purchases:   s.Purchases,
		logging:     s.Logging,
	}
}

// callerID resolves the user a customer request acts for. An authenticated
// subject always wins over a user id supplied by the client.
func callerID(c *gin.Context, fallback string) string {
	if id := middleware.UserID(c); id != "" {
		return id
	}
	if fallback != "" {
		return fallback
	}
	return c.Query("user_id")
}

func (h *Handler) audit(c *gin.Context, action, message string, fields map[string]interface{}) {
	if h.logging == nil {
		return
	}
	middleware.AuditLog(h.logging, c, action, message, fields)
}

func (h *Handler) auditError(c *gin.Context, action, message string, err error, fields map[string]interface{}) {
	if h.logging == nil {
		return
	}
	middleware.AuditLogError(h.logging, c, action, message, err, fields)
}
