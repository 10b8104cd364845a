package http

import (
	"github.com/gin-gonic/gin"
	"github.com/guttosm/casebreak-service/internal/domain/dto"
)

// UnitPrice handles POST /api/pricing/unit-price requests.
//
// @Summary      Preview a unit price
// @Description  Derives the per-unit retail price of a case under the active pricing policy. Nothing is persisted.
// @Tags         Pricing
// @Accept       json
// @Produce      json
// @Param        request body dto.UnitPriceRequest true "Case price and units per case"
// @Success      200 {object} dto.SuccessResponse{data=dto.UnitPriceResponse}
// @Failure      400 {object} dto.ErrorResponse "Invalid case price or unit count"
// @Failure      429 {object} dto.ErrorResponse "Rate limit exceeded"
// @Failure      500 {object} dto.ErrorResponse "Internal server error"
// @Router       /api/pricing/unit-price [post]
func (h *Handler) UnitPrice(c *gin.Context) {
	req, ok := bindJSON[dto.UnitPriceRequest](c)
	if !ok {
		return
	}

	price, err := h.pricing.UnitPrice(req.CasePrice, req.UnitsPerCase)
	if err != nil {
		NewResponseBuilder(c).ServiceError(err)
		return
	}

	NewResponseBuilder(c).SuccessOK(dto.UnitPriceResponse{
		PolicyVersion: h.pricing.Policy().Version,
		CasePrice:     req.CasePrice,
		UnitsPerCase:  req.UnitsPerCase,
		UnitPrice:     price,
	})
}
