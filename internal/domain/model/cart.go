package model

import (
	"errors"
	"time"
)

// ErrEmptyCartLine is returned when a cart line carries neither cases nor units.
var ErrEmptyCartLine = errors.New("cart line must have a positive case or unit quantity")

// ErrNegativeQuantity is returned when a cart line quantity is below zero.
var ErrNegativeQuantity = errors.New("cart line quantities must not be negative")

// Cart is a customer's pending selection.
type Cart struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Lines     []CartLine `json:"lines"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Lines) == 0
}

// CartLine is one product in a cart with case and unit quantities.
type CartLine struct {
	ProductID    string `json:"product_id"`
	CaseQuantity int    `json:"case_quantity"`
	UnitQuantity int    `json:"unit_quantity"`
}

// NewCartLine validates the quantities and builds a line.
func NewCartLine(productID string, caseQty, unitQty int) (CartLine, error) {
	if caseQty < 0 || unitQty < 0 {
		return CartLine{}, ErrNegativeQuantity
	}
	if caseQty == 0 && unitQty == 0 {
		return CartLine{}, ErrEmptyCartLine
	}
	return CartLine{ProductID: productID, CaseQuantity: caseQty, UnitQuantity: unitQty}, nil
}

// Clone returns a deep copy of the cart.
func (c Cart) Clone() Cart {
	out := c
	out.Lines = append([]CartLine(nil), c.Lines...)
	return out
}

// SetLine replaces the line for the product, appends it, or removes it when both quantities are zero.
func (c *Cart) SetLine(productID string, caseQty, unitQty int) {
	for i, l := range c.Lines {
		if l.ProductID != productID {
			continue
		}
		if caseQty == 0 && unitQty == 0 {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return
		}
		c.Lines[i].CaseQuantity = caseQty
		c.Lines[i].UnitQuantity = unitQty
		return
	}
	if caseQty == 0 && unitQty == 0 {
		return
	}
	c.Lines = append(c.Lines, CartLine{ProductID: productID, CaseQuantity: caseQty, UnitQuantity: unitQty})
}
