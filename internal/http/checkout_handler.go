package http

import (
	"github.com/gin-gonic/gin"
	"github.com/guttosm/casebreak-service/internal/domain/dto"
	"github.com/guttosm/casebreak-service/internal/middleware"
	"github.com/guttosm/casebreak-service/internal/service"
)

// Checkout handles POST /api/checkout requests.
//
// @Summary      Check out the cart
// @Description  Converts the caller's cart into a purchase in one transaction. Units beyond available stock are backordered as break-case requests. Supports replay protection via the Idempotency-Key header.
// @Tags         Checkout
// @Accept       json
// @Produce      json
// @Param        Authorization header string false "Bearer token (required if auth enabled)"
// @Param        Idempotency-Key header string false "Key for safe retries"
// @Param        request body dto.CheckoutRequest true "Shipping address and order adjustments"
// @Success      201 {object} dto.SuccessResponse{data=model.PurchaseRecord}
// @Failure      400 {object} dto.ErrorResponse "Empty cart, bad address or invalid line; details name the failing line"
// @Failure      401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure      404 {object} dto.ErrorResponse "A cart product no longer exists"
// @Failure      409 {object} dto.ErrorResponse "Same Idempotency-Key still in progress"
// @Failure      422 {object} dto.ErrorResponse "Idempotency-Key reused with a different body"
// @Failure      500 {object} dto.ErrorResponse "Internal server error"
// @Failure      503 {object} dto.ErrorResponse "Store unavailable"
// @Security     BearerAuth
// @Router       /api/checkout [post]
func (h *Handler) Checkout(c *gin.Context) {
	req, ok := bindJSON[dto.CheckoutRequest](c)
	if !ok {
		return
	}

	userID := callerID(c, req.UserID)
	purchase, err := h.checkout.Checkout(c.Request.Context(), service.CheckoutInput{
		UserID:          userID,
		ShippingAddress: req.ShippingAddress,
		Adjustments:     req.Adjustments(),
	})
	if err != nil {
		h.auditError(c, middleware.ActionCheckout, "Checkout failed", err, map[string]interface{}{
			"user_id": userID,
		})
		NewResponseBuilder(c).ServiceError(err)
		return
	}

	h.audit(c, middleware.ActionCheckout, "Checkout completed", map[string]interface{}{
		"purchase_id": purchase.ID,
		"items":       len(purchase.Items),
		"grand_total": purchase.GrandTotal.StringFixed(2),
	})
	NewResponseBuilder(c).SuccessCreated(purchase)
}
