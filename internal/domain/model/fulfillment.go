package model

import "time"

// RequestStatus is the state of a break-case request.
type RequestStatus string

const (
	RequestStatusOpen      RequestStatus = "OPEN"
	RequestStatusCompleted RequestStatus = "COMPLETED"
)

// Valid reports whether s is a known status.
func (s RequestStatus) Valid() bool {
	return s == RequestStatusOpen || s == RequestStatusCompleted
}

// BreakCaseRequest asks the warehouse to break cases for a unit shortfall.
// Requests are never deleted; OPEN moves to COMPLETED once.
type BreakCaseRequest struct {
	ID          string        `json:"id"`
	ProductID   string        `json:"product_id"`
	Quantity    int           `json:"quantity"`
	Status      RequestStatus `json:"status"`
	PurchaseID  string        `json:"purchase_id,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
}

// IsOpen reports whether the request still awaits processing.
func (r BreakCaseRequest) IsOpen() bool {
	return r.Status == RequestStatusOpen
}

// BreakCaseFilter narrows a request listing. Zero values mean no bound.
type BreakCaseFilter struct {
	From   *time.Time
	To     *time.Time
	Status RequestStatus
}

// Matches reports whether the request satisfies the filter.
func (f BreakCaseFilter) Matches(r BreakCaseRequest) bool {
	if f.From != nil && r.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && r.CreatedAt.After(*f.To) {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	return true
}

// Reservation is the outcome of drawing units from stock.
type Reservation struct {
	ProductID         string `json:"product_id"`
	Requested         int    `json:"requested"`
	ReservedFromStock int    `json:"reserved_from_stock"`
	Shortfall         int    `json:"shortfall"`
}

// UpdatedStock reports the result of processing a break-case request.
type UpdatedStock struct {
	RequestID     string `json:"request_id"`
	ProductID     string `json:"product_id"`
	SKU           string `json:"sku"`
	Title         string `json:"title"`
	AddedQuantity int    `json:"added_quantity"`
	NewTotalStock int    `json:"new_total_stock"`
}

// CaseBreakReportRow is a request joined with its product for reporting.
type CaseBreakReportRow struct {
	BreakCaseRequest
	SKU     string `json:"sku"`
	Title   string `json:"title"`
	Package []int  `json:"package"`
}

// CaseBreakReport is a filtered listing of requests, newest first.
type CaseBreakReport struct {
	Requests      []CaseBreakReportRow `json:"requests"`
	Count         int                  `json:"count"`
	TotalQuantity int                  `json:"total_quantity"`
}
