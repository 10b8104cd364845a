package http

import (
	"github.com/gin-gonic/gin"
	"github.com/guttosm/casebreak-service/internal/domain/dto"
)

// GetCart handles GET /api/cart requests.
//
// @Summary      Get the caller's cart
// @Tags         Cart
// @Produce      json
// @Param        Authorization header string false "Bearer token (required if auth enabled)"
// @Param        user_id query string false "User ID when authentication is disabled"
// @Success      200 {object} dto.SuccessResponse{data=model.Cart}
// @Failure      400 {object} dto.ErrorResponse "No user"
// @Failure      401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure      500 {object} dto.ErrorResponse "Internal server error"
// @Security     BearerAuth
// @Router       /api/cart [get]
func (h *Handler) GetCart(c *gin.Context) {
	cart, err := h.carts.GetCart(c.Request.Context(), callerID(c, ""))
	if err != nil {
		NewResponseBuilder(c).ServiceError(err)
		return
	}
	NewResponseBuilder(c).SuccessOK(cart)
}

// SetCartLine handles PUT /api/cart/lines requests.
//
// @Summary      Set a cart line
// @Description  Sets the case and unit quantities of one product. Both zero removes the line. Units can only be added for products with unit inventory.
// @Tags         Cart
// @Accept       json
// @Produce      json
// @Param        Authorization header string false "Bearer token (required if auth enabled)"
// @Param        request body dto.SetCartLineRequest true "Cart line"
// @Success      200 {object} dto.SuccessResponse{data=model.Cart}
// @Failure      400 {object} dto.ErrorResponse "Invalid quantities or product without unit inventory"
// @Failure      401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure      404 {object} dto.ErrorResponse "Product not found"
// @Failure      500 {object} dto.ErrorResponse "Internal server error"
// @Security     BearerAuth
// @Router       /api/cart/lines [put]
func (h *Handler) SetCartLine(c *gin.Context) {
	req, ok := bindJSON[dto.SetCartLineRequest](c)
	if !ok {
		return
	}

	cart, err := h.carts.SetLine(c.Request.Context(), callerID(c, req.UserID), req.ProductID, req.CaseQuantity, req.UnitQuantity)
	if err != nil {
		NewResponseBuilder(c).ServiceError(err)
		return
	}
	NewResponseBuilder(c).SuccessOK(cart)
}
