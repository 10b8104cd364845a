package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemKind tells whether a purchase item was sold as sealed cases or loose units.
type ItemKind string

const (
	ItemKindCase ItemKind = "CASE"
	ItemKindUnit ItemKind = "UNIT"
)

// PurchaseStatus is the shipping state of a purchase.
type PurchaseStatus string

const (
	PurchaseStatusPending   PurchaseStatus = "PENDING"
	PurchaseStatusShipped   PurchaseStatus = "SHIPPED"
	PurchaseStatusCancelled PurchaseStatus = "CANCELLED"
)

// Valid reports whether s is a known status.
func (s PurchaseStatus) Valid() bool {
	switch s {
	case PurchaseStatusPending, PurchaseStatusShipped, PurchaseStatusCancelled:
		return true
	}
	return false
}

// Address is the shipping destination snapshot stored with a purchase.
type Address struct {
	ID         string `json:"id,omitempty"`
	Name       string `json:"name,omitempty"`
	Street1    string `json:"street1"`
	Street2    string `json:"street2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
}

// Complete reports whether the address has the fields required to ship.
func (a *Address) Complete() bool {
	return a != nil && a.Street1 != "" && a.City != "" && a.State != "" && a.PostalCode != ""
}

// Discount is a promotion applied to a purchase.
type Discount struct {
	Amount decimal.Decimal `json:"amount" swaggertype:"string"`
	Code   string          `json:"code,omitempty"`
	Type   string          `json:"type,omitempty"`
}

// Adjustments are the charges computed outside the core and added to the subtotal.
type Adjustments struct {
	Tax         decimal.Decimal `json:"tax" swaggertype:"string"`
	Shipping    decimal.Decimal `json:"shipping" swaggertype:"string"`
	LiftGateFee decimal.Decimal `json:"lift_gate_fee" swaggertype:"string"`
	Discount    Discount        `json:"discount"`
}

// PurchaseItem is an immutable snapshot of one priced line part.
type PurchaseItem struct {
	ProductID    string          `json:"product_id"`
	SKU          string          `json:"sku"`
	Title        string          `json:"title"`
	Quantity     int             `json:"quantity"`
	Kind         ItemKind        `json:"kind"`
	ItemSubtotal decimal.Decimal `json:"item_subtotal" swaggertype:"string"`
}

// IsUnit reports whether the item was sold as loose units.
func (i PurchaseItem) IsUnit() bool {
	return i.Kind == ItemKindUnit
}

// PurchaseRecord is a completed checkout. Only Status changes after creation.
//
// @Description Completed purchase with price breakdown and items
type PurchaseRecord struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	ShippingAddress Address         `json:"shipping_address"`
	Items           []PurchaseItem  `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal" swaggertype:"string" example:"120.96"`
	Tax             decimal.Decimal `json:"tax" swaggertype:"string"`
	Shipping        decimal.Decimal `json:"shipping" swaggertype:"string"`
	LiftGateFee     decimal.Decimal `json:"lift_gate_fee" swaggertype:"string"`
	Discount        Discount        `json:"discount"`
	GrandTotal      decimal.Decimal `json:"grand_total" swaggertype:"string"`
	Status          PurchaseStatus  `json:"status"`
	PurchasedAt     time.Time       `json:"purchased_at"`
}

// HasUnits reports whether any item was sold as loose units.
func (p *PurchaseRecord) HasUnits() bool {
	for _, it := range p.Items {
		if it.IsUnit() {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the record.
func (p PurchaseRecord) Clone() PurchaseRecord {
	out := p
	out.Items = append([]PurchaseItem(nil), p.Items...)
	return out
}

// PurchaseFilter narrows a purchase listing. Zero values mean no bound.
type PurchaseFilter struct {
	From   *time.Time
	To     *time.Time
	Status PurchaseStatus
	UserID string
	Limit  int
}

// Matches reports whether the record satisfies the filter.
func (f PurchaseFilter) Matches(p PurchaseRecord) bool {
	if f.From != nil && p.PurchasedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && p.PurchasedAt.After(*f.To) {
		return false
	}
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.UserID != "" && p.UserID != f.UserID {
		return false
	}
	return true
}
