package http

import (
	"github.com/gin-gonic/gin"
	"github.com/guttosm/casebreak-service/internal/domain/dto"
	"github.com/guttosm/casebreak-service/internal/middleware"
)

// CaseBreakReport handles GET /api/reports/case-break requests.
//
// @Summary      Break-case request report
// @Description  Lists break-case requests newest first, joined with their product. Plain end dates cover the whole day.
// @Tags         Fulfillment
// @Produce      json
// @Param        X-API-Key header string true "Admin API key"
// @Param        startDate query string false "Earliest creation date (YYYY-MM-DD or RFC 3339)"
// @Param        endDate query string false "Latest creation date (YYYY-MM-DD or RFC 3339)"
// @Param        status query string false "OPEN or COMPLETED"
// @Success      200 {object} dto.SuccessResponse{data=model.CaseBreakReport}
// @Failure      400 {object} dto.ErrorResponse "Invalid filter"
// @Failure      401 {object} dto.ErrorResponse "Missing or invalid API key"
// @Failure      500 {object} dto.ErrorResponse "Internal server error"
// @Security     ApiKeyAuth
// @Router       /api/reports/case-break [get]
func (h *Handler) CaseBreakReport(c *gin.Context) {
	q, ok := bindQuery[dto.CaseBreakReportQuery](c)
	if !ok {
		return
	}
	filter, err := q.ToFilter()
	if err != nil {
		NewResponseBuilder(c).ValidationError(err)
		return
	}

	report, err := h.fulfillment.Report(c.Request.Context(), filter)
	if err != nil {
		NewResponseBuilder(c).ServiceError(err)
		return
	}
	NewResponseBuilder(c).SuccessOK(report)
}

// ProcessCaseBreak handles POST /api/reports/case-break/:id/process requests.
//
// @Summary      Fulfil a break-case request
// @Description  Credits the units produced by breaking a case to the unit stock and completes the request. A request can only be processed once.
// @Tags         Fulfillment
// @Accept       json
// @Produce      json
// @Param        X-API-Key header string true "Admin API key"
// @Param        id path string true "Break-case request ID"
// @Param        request body dto.ProcessCaseBreakRequest true "Units added"
// @Success      200 {object} dto.SuccessResponse{data=model.UpdatedStock}
// @Failure      400 {object} dto.ErrorResponse "Invalid quantity"
// @Failure      401 {object} dto.ErrorResponse "Missing or invalid API key"
// @Failure      404 {object} dto.ErrorResponse "Request not found"
// @Failure      409 {object} dto.ErrorResponse "Request already completed"
// @Failure      500 {object} dto.ErrorResponse "Internal server error"
// @Security     ApiKeyAuth
// @Router       /api/reports/case-break/{id}/process [post]
func (h *Handler) ProcessCaseBreak(c *gin.Context) {
	req, ok := bindJSON[dto.ProcessCaseBreakRequest](c)
	if !ok {
		return
	}

	requestID := c.Param("id")
	updated, err := h.fulfillment.Process(c.Request.Context(), requestID, req.QuantityAdded)
	if err != nil {
		h.auditError(c, middleware.ActionProcessCaseBreak, "Break-case processing failed", err, map[string]interface{}{
			"request_id": requestID,
		})
		NewResponseBuilder(c).ServiceError(err)
		return
	}

	h.audit(c, middleware.ActionProcessCaseBreak, "Break-case request fulfilled", map[string]interface{}{
		"request_id":      requestID,
		"product_id":      updated.ProductID,
		"added_quantity":  updated.AddedQuantity,
		"new_total_stock": updated.NewTotalStock,
	})
	NewResponseBuilder(c).SuccessOK(updated)
}

// PurchaseReport handles GET /api/reports/purchases requests.
//
// @Summary      Purchase report
// @Description  Lists purchases newest first.
// @Tags         Purchases
// @Produce      json
// @Param        X-API-Key header string true "Admin API key"
// @Param        startDate query string false "Earliest purchase date"
// @Param        endDate query string false "Latest purchase date"
// @Param        status query string false "PENDING, SHIPPED or CANCELLED"
// @Param        userId query string false "Only this user's purchases"
// @Param        limit query int false "Maximum rows"
// @Success      200 {object} dto.SuccessResponse{data=[]model.PurchaseRecord}
// @Failure      400 {object} dto.ErrorResponse "Invalid filter"
// @Failure      401 {object} dto.ErrorResponse "Missing or invalid API key"
// @Failure      500 {object} dto.ErrorResponse "Internal server error"
// @Security     ApiKeyAuth
// @Router       /api/reports/purchases [get]
func (h *Handler) PurchaseReport(c *gin.Context) {
	q, ok := bindQuery[dto.PurchaseReportQuery](c)
	if !ok {
		return
	}
	filter, err := q.ToFilter()
	if err != nil {
		NewResponseBuilder(c).ValidationError(err)
		return
	}

	purchases, err := h.purchases.List(c.Request.Context(), filter)
	if err != nil {
		NewResponseBuilder(c).ServiceError(err)
		return
	}
	NewResponseBuilder(c).SuccessOK(purchases)
}

// GetPurchase handles GET /api/reports/purchases/:id requests.
//
// @Summary      Get a purchase
// @Tags         Purchases
// @Produce      json
// @Param        X-API-Key header string true "Admin API key"
// @Param        id path string true "Purchase ID"
// @Success      200 {object} dto.SuccessResponse{data=model.PurchaseRecord}
// @Failure      401 {object} dto.ErrorResponse "Missing or invalid API key"
// @Failure      404 {object} dto.ErrorResponse "Purchase not found"
// @Failure      500 {object} dto.ErrorResponse "Internal server error"
// @Security     ApiKeyAuth
// @Router       /api/reports/purchases/{id} [get]
func (h *Handler) GetPurchase(c *gin.Context) {
	purchase, err := h.purchases.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		NewResponseBuilder(c).ServiceError(err)
		return
	}
	NewResponseBuilder(c).SuccessOK(purchase)
}

// UpdatePurchaseStatus handles PATCH /api/reports/purchases/:id requests.
//
// @Summary      Update a purchase status
// @Tags         Purchases
// @Accept       json
// @Produce      json
// @Param        X-API-Key header string true "Admin API key"
// @Param        id path string true "Purchase ID"
// @Param        request body dto.UpdatePurchaseStatusRequest true "New status"
// @Success      200 {object} dto.SuccessResponse{data=model.PurchaseRecord}
// @Failure      400 {object} dto.ErrorResponse "Invalid status"
// @Failure      401 {object} dto.ErrorResponse "Missing or invalid API key"
// @Failure      404 {object} dto.ErrorResponse "Purchase not found"
// @Failure      500 {object} dto.ErrorResponse "Internal server error"
// @Security     ApiKeyAuth
// @Router       /api/reports/purchases/{id} [patch]
func (h *Handler) UpdatePurchaseStatus(c *gin.Context) {
	req, ok := bindJSON[dto.UpdatePurchaseStatusRequest](c)
	if !ok {
		return
	}

	purchase, err := h.purchases.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		NewResponseBuilder(c).ServiceError(err)
		return
	}

	h.audit(c, middleware.ActionPurchaseStatus, "Purchase status changed", map[string]interface{}{
		"purchase_id": purchase.ID,
		"status":      string(purchase.Status),
	})
	NewResponseBuilder(c).SuccessOK(purchase)
}

// AuditLogReport handles GET /api/reports/audit-logs requests.
//
// @Summary      Audit trail
// @Description  Pages through request and audit log entries, newest first. The page size defaults to 50 and is capped at 500. Only served when log persistence is configured.
// @Tags         Audit
// @Produce      json
// @Param        X-API-Key header string true "Admin API key"
// @Param        action query string false "Action type, e.g. checkout or process_case_break"
// @Param        requestId query string false "Request ID"
// @Param        level query string false "debug, info, warn or error"
// @Param        userId query string false "Acting user"
// @Param        startDate query string false "Earliest entry (YYYY-MM-DD or RFC 3339)"
// @Param        endDate query string false "Latest entry (YYYY-MM-DD or RFC 3339)"
// @Param        limit query int false "Page size"
// @Param        skip query int false "Entries to skip"
// @Success      200 {object} dto.SuccessResponse{data=model.AuditPage}
// @Failure      400 {object} dto.ErrorResponse "Invalid filter"
// @Failure      401 {object} dto.ErrorResponse "Missing or invalid API key"
// @Failure      503 {object} dto.ErrorResponse "Log store unavailable"
// @Security     ApiKeyAuth
// @Router       /api/reports/audit-logs [get]
func (h *Handler) AuditLogReport(c *gin.Context) {
	q, ok := bindQuery[dto.AuditLogQuery](c)
	if !ok {
		return
	}
	opts, err := q.ToOptions()
	if err != nil {
		NewResponseBuilder(c).ValidationError(err)
		return
	}

	page, err := h.logging.AuditTrail(c.Request.Context(), opts)
	if err != nil {
		NewResponseBuilder(c).ServiceError(err)
		return
	}
	NewResponseBuilder(c).SuccessOK(page)
}
