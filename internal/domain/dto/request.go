// Package dto defines Data Transfer Objects for HTTP request and response handling.
//
// DTOs are used to decouple the HTTP layer from the domain model,
// providing validation and serialization for API communication.
package dto

import (
	"strings"
	"time"

	"github.com/guttosm/casebreak-service/internal/domain/model"
	"github.com/shopspring/decimal"
)

// ValidationError represents a field validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns the error message for ValidationError.
func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg}
}

// UnitPriceRequest asks for the unit price the active policy derives from a case.
//
// @Description Preview the unit price of a case-breakable product
// @Example {"case_price": "84.99", "units_per_case": 8}
type UnitPriceRequest struct {
	CasePrice    decimal.Decimal `json:"case_price" swaggertype:"string" example:"84.99"`
	UnitsPerCase int             `json:"units_per_case" example:"8" minimum:"1"`
} // @name UnitPriceRequest

// Validate performs custom validation on the request.
func (r *UnitPriceRequest) Validate() error {
	if !r.CasePrice.IsPositive() {
		return invalid("case_price", "must be positive")
	}
	if r.UnitsPerCase <= 0 {
		return invalid("units_per_case", "must be a positive integer")
	}
	return nil
}

// CreateProductRequest is the body of POST /api/products.
//
// @Description Create a catalog product
type CreateProductRequest struct {
	SKU             string          `json:"sku" binding:"required" example:"FW-1001"`
	Title           string          `json:"title" binding:"required" example:"Sky Thunder 200g"`
	CasePrice       decimal.Decimal `json:"case_price" swaggertype:"string" example:"84.99"`
	Package         []int           `json:"package" binding:"required,min=1" example:"8,1"`
	IsCaseBreakable bool            `json:"is_case_breakable"`
} // @name CreateProductRequest

// Validate performs custom validation on the request.
func (r *CreateProductRequest) Validate() error {
	switch {
	case strings.TrimSpace(r.SKU) == "":
		return invalid("sku", "is required")
	case strings.TrimSpace(r.Title) == "":
		return invalid("title", "is required")
	case !r.CasePrice.IsPositive():
		return invalid("case_price", "must be positive")
	case !model.ValidPackage(r.Package):
		return invalid("package", "must be a non-empty list of positive integers")
	}
	return nil
}

// ToDraft converts the request into a catalog draft.
func (r *CreateProductRequest) ToDraft() model.ProductDraft {
	return model.ProductDraft{
		SKU:             r.SKU,
		Title:           r.Title,
		CasePrice:       r.CasePrice,
		Package:         r.Package,
		IsCaseBreakable: r.IsCaseBreakable,
	}
}

// UpdateProductRequest is the body of PATCH /api/products/:id. Absent fields are kept.
//
// @Description Partially update a catalog product
type UpdateProductRequest struct {
	SKU             *string          `json:"sku,omitempty" example:"FW-1001"`
	Title           *string          `json:"title,omitempty"`
	CasePrice       *decimal.Decimal `json:"case_price,omitempty" swaggertype:"string" example:"79.99"`
	Package         []int            `json:"package,omitempty"`
	IsCaseBreakable *bool            `json:"is_case_breakable,omitempty"`
} // @name UpdateProductRequest

// Validate performs custom validation on the request.
func (r *UpdateProductRequest) Validate() error {
	switch {
	case r.SKU != nil && strings.TrimSpace(*r.SKU) == "":
		return invalid("sku", "must not be blank")
	case r.Title != nil && strings.TrimSpace(*r.Title) == "":
		return invalid("title", "must not be blank")
	case r.CasePrice != nil && !r.CasePrice.IsPositive():
		return invalid("case_price", "must be positive")
	case r.Package != nil && !model.ValidPackage(r.Package):
		return invalid("package", "must be a non-empty list of positive integers")
	}
	return nil
}

// ToPatch converts the request into a product patch.
func (r *UpdateProductRequest) ToPatch() model.ProductPatch {
	return model.ProductPatch{
		SKU:             r.SKU,
		Title:           r.Title,
		CasePrice:       r.CasePrice,
		Package:         r.Package,
		IsCaseBreakable: r.IsCaseBreakable,
	}
}

// SetCartLineRequest sets the quantities of one product in the caller's cart.
// Zero cases and zero units remove the line. UserID is only read when
// authentication is disabled.
//
// @Description Upsert a cart line
// @Example {"product_id": "6f1c3a52-1d0e-4b55-9a57-2b1f0f5c7a10", "case_quantity": 1, "unit_quantity": 4}
type SetCartLineRequest struct {
	UserID       string `json:"user_id,omitempty" example:"user-42"`
	ProductID    string `json:"product_id" binding:"required"`
	CaseQuantity int    `json:"case_quantity" example:"1"`
	UnitQuantity int    `json:"unit_quantity" example:"4"`
} // @name SetCartLineRequest

// Validate performs custom validation on the request.
func (r *SetCartLineRequest) Validate() error {
	switch {
	case r.ProductID == "":
		return invalid("product_id", "is required")
	case r.CaseQuantity < 0:
		return invalid("case_quantity", "must not be negative")
	case r.UnitQuantity < 0:
		return invalid("unit_quantity", "must not be negative")
	}
	return nil
}

// CheckoutRequest turns the caller's cart into a purchase.
//
// @Description Check out the current cart
type CheckoutRequest struct {
	UserID          string          `json:"user_id,omitempty" example:"user-42"`
	ShippingAddress model.Address   `json:"shipping_address"`
	Tax             decimal.Decimal `json:"tax" swaggertype:"string" example:"7.25"`
	Shipping        decimal.Decimal `json:"shipping" swaggertype:"string" example:"19.99"`
	LiftGateFee     decimal.Decimal `json:"lift_gate_fee" swaggertype:"string" example:"0"`
	Discount        model.Discount  `json:"discount"`
} // @name CheckoutRequest

// Validate performs custom validation on the request.
func (r *CheckoutRequest) Validate() error {
	if !r.ShippingAddress.Complete() {
		return invalid("shipping_address", "street1, city, state and postal_code are required")
	}
	for field, v := range map[string]decimal.Decimal{
		"tax":             r.Tax,
		"shipping":        r.Shipping,
		"lift_gate_fee":   r.LiftGateFee,
		"discount.amount": r.Discount.Amount,
	} {
		if v.IsNegative() {
			return invalid(field, "must not be negative")
		}
	}
	return nil
}

// Adjustments collects the order-level charges and discount.
func (r *CheckoutRequest) Adjustments() model.Adjustments {
	return model.Adjustments{
		Tax:         r.Tax,
		Shipping:    r.Shipping,
		LiftGateFee: r.LiftGateFee,
		Discount:    r.Discount,
	}
}

// ProcessCaseBreakRequest reports how many units were added by breaking a case.
//
// @Description Fulfil a break-case request
// @Example {"quantity_added": 8}
type ProcessCaseBreakRequest struct {
	QuantityAdded int `json:"quantity_added" binding:"required,gt=0" example:"8" minimum:"1"`
} // @name ProcessCaseBreakRequest

// Validate performs custom validation on the request.
func (r *ProcessCaseBreakRequest) Validate() error {
	if r.QuantityAdded <= 0 {
		return invalid("quantity_added", "must be a positive integer")
	}
	return nil
}

// UpdatePurchaseStatusRequest moves a purchase to another shipping state.
//
// @Description Update a purchase status
// @Example {"status": "SHIPPED"}
type UpdatePurchaseStatusRequest struct {
	Status model.PurchaseStatus `json:"status" binding:"required" example:"SHIPPED" enums:"PENDING,SHIPPED,CANCELLED"`
} // @name UpdatePurchaseStatusRequest

// Validate performs custom validation on the request.
func (r *UpdatePurchaseStatusRequest) Validate() error {
	if !r.Status.Valid() {
		return invalid("status", "must be one of PENDING, SHIPPED, CANCELLED")
	}
	return nil
}

// CaseBreakReportQuery holds the query string of the case-break report.
type CaseBreakReportQuery struct {
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
	Status    string `form:"status"`
}

// ToFilter parses the query into a repository filter.
func (q *CaseBreakReportQuery) ToFilter() (model.BreakCaseFilter, error) {
	var f model.BreakCaseFilter
	var err error
	if f.From, err = parseDate("startDate", q.StartDate, false); err != nil {
		return f, err
	}
	if f.To, err = parseDate("endDate", q.EndDate, true); err != nil {
		return f, err
	}
	if q.Status != "" {
		f.Status = model.RequestStatus(strings.ToUpper(q.Status))
		if !f.Status.Valid() {
			return f, invalid("status", "must be OPEN or COMPLETED")
		}
	}
	return f, nil
}

// PurchaseReportQuery holds the query string of the purchase listing.
type PurchaseReportQuery struct {
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
	Status    string `form:"status"`
	UserID    string `form:"userId"`
	Limit     int    `form:"limit"`
}

// ToFilter parses the query into a repository filter.
func (q *PurchaseReportQuery) ToFilter() (model.PurchaseFilter, error) {
	f := model.PurchaseFilter{UserID: q.UserID, Limit: q.Limit}
	var err error
	if q.Limit < 0 {
		return f, invalid("limit", "must not be negative")
	}
	if f.From, err = parseDate("startDate", q.StartDate, false); err != nil {
		return f, err
	}
	if f.To, err = parseDate("endDate", q.EndDate, true); err != nil {
		return f, err
	}
	if q.Status != "" {
		f.Status = model.PurchaseStatus(strings.ToUpper(q.Status))
		if !f.Status.Valid() {
			return f, invalid("status", "must be one of PENDING, SHIPPED, CANCELLED")
		}
	}
	return f, nil
}

// AuditLogQuery holds the query string of the audit trail listing.
type AuditLogQuery struct {
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
	Action    string `form:"action"`
	RequestID string `form:"requestId"`
	Level     string `form:"level"`
	UserID    string `form:"userId"`
	Limit     int    `form:"limit"`
	Skip      int    `form:"skip"`
}

var auditLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// ToOptions parses the query into log query options. Paging bounds are left to
// the logging service.
func (q *AuditLogQuery) ToOptions() (model.LogQueryOptions, error) {
	opts := model.LogQueryOptions{
		RequestID:  q.RequestID,
		ActionType: q.Action,
		UserID:     q.UserID,
		Level:      strings.ToLower(q.Level),
		Limit:      q.Limit,
		Skip:       q.Skip,
	}
	if opts.Level != "" && !auditLevels[opts.Level] {
		return opts, invalid("level", "must be one of debug, info, warn, error")
	}
	var err error
	if opts.StartTime, err = parseDate("startDate", q.StartDate, false); err != nil {
		return opts, err
	}
	if opts.EndTime, err = parseDate("endDate", q.EndDate, true); err != nil {
		return opts, err
	}
	return opts, nil
}

// parseDate accepts RFC 3339 timestamps and plain dates. A plain end date covers
// the whole day.
func parseDate(field, s string, endOfDay bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, invalid(field, "must be a date (YYYY-MM-DD) or RFC 3339 timestamp")
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
