// Package model defines the core domain entities for the case-break service.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// UnitSKUSuffix is appended to a parent SKU to form the SKU of its unit product.
const UnitSKUSuffix = "-u"

// Product is a catalog item sold in sealed cases.
//
// @Description Catalog product sold by the case, optionally broken into units
type Product struct {
	ID              string          `json:"id" example:"6f1c3a52-1d0e-4b55-9a57-2b1f0f5c7a10"`
	SKU             string          `json:"sku" example:"FW-1001"`
	Title           string          `json:"title" example:"Sky Thunder 200g"`
	CasePrice       decimal.Decimal `json:"case_price" swaggertype:"string" example:"84.99"`
	Package         []int           `json:"package" example:"24,1"`
	IsCaseBreakable bool            `json:"is_case_breakable"`
	UnitProduct     *UnitProduct    `json:"unit_product,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// UnitProduct is the individually sold facet of a case-breakable product.
type UnitProduct struct {
	SKU            string          `json:"sku" example:"FW-1001-u"`
	UnitPrice      decimal.Decimal `json:"unit_price" swaggertype:"string" example:"5.99"`
	AvailableStock int             `json:"available_stock" example:"12"`
	Package        []int           `json:"package" example:"1,1"`
}

// UnitsPerCase returns the first package entry, or 0 when the descriptor is empty.
func (p Product) UnitsPerCase() int {
	if len(p.Package) == 0 {
		return 0
	}
	return p.Package[0]
}

// HasUnitInventory reports whether the product carries a unit facet.
func (p Product) HasUnitInventory() bool {
	return p.UnitProduct != nil
}

// Clone returns a deep copy of the product.
func (p Product) Clone() Product {
	c := p
	c.Package = append([]int(nil), p.Package...)
	if p.UnitProduct != nil {
		u := *p.UnitProduct
		u.Package = append([]int(nil), p.UnitProduct.Package...)
		c.UnitProduct = &u
	}
	return c
}

// UnitSKU returns the unit SKU for a parent SKU.
func UnitSKU(parentSKU string) string {
	return parentSKU + UnitSKUSuffix
}

// UnitPackage maps a case package descriptor to the unit descriptor [1, package[1:]...].
func UnitPackage(casePackage []int) []int {
	out := make([]int, 0, len(casePackage))
	out = append(out, 1)
	if len(casePackage) > 1 {
		out = append(out, casePackage[1:]...)
	}
	return out
}

// ProductDraft carries the fields needed to create a product.
type ProductDraft struct {
	SKU             string
	Title           string
	CasePrice       decimal.Decimal
	Package         []int
	IsCaseBreakable bool
}

// ProductPatch is a partial update of catalog fields. Nil fields are left untouched.
type ProductPatch struct {
	SKU             *string
	Title           *string
	CasePrice       *decimal.Decimal
	Package         []int
	IsCaseBreakable *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p ProductPatch) IsEmpty() bool {
	return p.SKU == nil && p.Title == nil && p.CasePrice == nil && p.Package == nil && p.IsCaseBreakable == nil
}

// Apply writes the non-nil patch fields onto the product.
func (p ProductPatch) Apply(product *Product) {
	if p.SKU != nil {
		product.SKU = *p.SKU
	}
	if p.Title != nil {
		product.Title = *p.Title
	}
	if p.CasePrice != nil {
		product.CasePrice = *p.CasePrice
	}
	if p.Package != nil {
		product.Package = append([]int(nil), p.Package...)
	}
	if p.IsCaseBreakable != nil {
		product.IsCaseBreakable = *p.IsCaseBreakable
	}
}

// ValidPackage reports whether every entry of the descriptor is positive and it is non-empty.
func ValidPackage(pkg []int) bool {
	if len(pkg) == 0 {
		return false
	}
	for _, n := range pkg {
		if n <= 0 {
			return false
		}
	}
	return true
}
