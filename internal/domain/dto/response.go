package dto

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// Machine-readable error codes carried in ErrorResponse.Error.
const (
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeForbidden        = "forbidden"
	ErrCodeNotFound         = "not_found"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeConflict         = "conflict"
	ErrCodeRateLimit        = "rate_limit_exceeded"
	ErrCodeTimeout          = "timeout"
	// ErrCodeUnavailable means a dependency's circuit is open.
	ErrCodeUnavailable = "service_unavailable"
	ErrCodeInternal    = "internal_error"
)

var errCodeByStatus = map[int]string{
	http.StatusBadRequest:          ErrCodeInvalidRequest,
	http.StatusUnprocessableEntity: ErrCodeInvalidRequest,
	http.StatusUnauthorized:        ErrCodeUnauthorized,
	http.StatusForbidden:           ErrCodeForbidden,
	http.StatusNotFound:            ErrCodeNotFound,
	http.StatusMethodNotAllowed:    ErrCodeMethodNotAllowed,
	http.StatusConflict:            ErrCodeConflict,
	http.StatusTooManyRequests:     ErrCodeRateLimit,
	http.StatusRequestTimeout:      ErrCodeTimeout,
	http.StatusGatewayTimeout:      ErrCodeTimeout,
	http.StatusServiceUnavailable:  ErrCodeUnavailable,
}

// ErrCodeFromStatus maps an HTTP status to its error code. Unlisted statuses
// are internal errors.
func ErrCodeFromStatus(status int) string {
	if code, ok := errCodeByStatus[status]; ok {
		return code
	}
	return ErrCodeInternal
}

// SuccessResponse is the envelope of every successful API response.
// @Description Successful API response wrapper
type SuccessResponse struct {
	Data      interface{} `json:"data" swaggertype:"object"`
	RequestID string      `json:"request_id,omitempty" example:"0190f5c2-7a3e-7c1d-9b2a-5e8f3d6c4b21"`
	Timestamp time.Time   `json:"timestamp" example:"2026-03-01T10:00:00Z"`
} // @name SuccessResponse

// ErrorResponse is the envelope of every failed API response. Message is
// localized from Accept-Language; Details names the offending field or cart line.
// @Description Standardized error response
type ErrorResponse struct {
	Error     string            `json:"error" example:"invalid_request"`
	Message   string            `json:"message,omitempty" example:"Cart is empty"`
	Details   map[string]string `json:"details,omitempty"`
	RequestID string            `json:"request_id,omitempty" example:"0190f5c2-7a3e-7c1d-9b2a-5e8f3d6c4b21"`
	Timestamp time.Time         `json:"timestamp" example:"2026-03-01T10:00:00Z"`
} // @name ErrorResponse

// NewError starts an ErrorResponse stamped with the current time.
func NewError(code, message string) ErrorResponse {
	return ErrorResponse{Error: code, Message: message, Timestamp: time.Now().UTC()}
}

// WithRequestID returns a copy of e carrying requestID.
func (e ErrorResponse) WithRequestID(requestID string) ErrorResponse {
	e.RequestID = requestID
	return e
}

// WithDetails returns a copy of e carrying details.
func (e ErrorResponse) WithDetails(details map[string]string) ErrorResponse {
	e.Details = details
	return e
}

// UnitPriceResponse is the result of a unit price preview.
type UnitPriceResponse struct {
	PolicyVersion string          `json:"policy_version" example:"2024-06"`
	CasePrice     decimal.Decimal `json:"case_price" swaggertype:"string" example:"84.99"`
	UnitsPerCase  int             `json:"units_per_case" example:"8"`
	UnitPrice     decimal.Decimal `json:"unit_price" swaggertype:"string" example:"15.99"`
} // @name UnitPriceResponse

// StockResponse reports the unit stock of a product.
type StockResponse struct {
	ProductID      string `json:"product_id"`
	AvailableStock int    `json:"available_stock" example:"12"`
} // @name StockResponse
