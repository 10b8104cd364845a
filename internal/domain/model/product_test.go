package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitPackage(t *testing.T) {
	tests := []struct {
		name     string
		input    []int
		expected []int
	}{
		{name: "single entry", input: []int{24}, expected: []int{1}},
		{name: "case and inner pack", input: []int{24, 6}, expected: []int{1, 6}},
		{name: "three levels", input: []int{48, 4, 2}, expected: []int{1, 4, 2}},
		{name: "empty", input: nil, expected: []int{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, UnitPackage(tt.input))
		})
	}
}

func TestUnitPackage_DoesNotAliasInput(t *testing.T) {
	in := []int{12, 3}
	out := UnitPackage(in)
	out[1] = 99
	assert.Equal(t, []int{12, 3}, in)
}

func TestUnitSKU(t *testing.T) {
	assert.Equal(t, "FW-1001-u", UnitSKU("FW-1001"))
}

func TestProduct_UnitsPerCase(t *testing.T) {
	assert.Equal(t, 24, Product{Package: []int{24, 1}}.UnitsPerCase())
	assert.Equal(t, 0, Product{}.UnitsPerCase())
}

func TestProduct_Clone(t *testing.T) {
	p := Product{
		ID:        "p1",
		SKU:       "FW-1",
		CasePrice: decimal.RequireFromString("84.99"),
		Package:   []int{8, 1},
		UnitProduct: &UnitProduct{
			SKU:            "FW-1-u",
			UnitPrice:      decimal.RequireFromString("13.99"),
			AvailableStock: 5,
			Package:        []int{1, 1},
		},
	}

	c := p.Clone()
	c.Package[0] = 100
	c.UnitProduct.AvailableStock = 0
	c.UnitProduct.Package[0] = 7

	assert.Equal(t, 8, p.Package[0])
	require.NotNil(t, p.UnitProduct)
	assert.Equal(t, 5, p.UnitProduct.AvailableStock)
	assert.Equal(t, 1, p.UnitProduct.Package[0])
}

func TestProductPatch_Apply(t *testing.T) {
	title := "Renamed"
	price := decimal.RequireFromString("100")
	off := false

	p := Product{SKU: "FW-1", Title: "Old", CasePrice: decimal.RequireFromString("50"), Package: []int{10}, IsCaseBreakable: true}
	patch := ProductPatch{Title: &title, CasePrice: &price, IsCaseBreakable: &off}

	assert.False(t, patch.IsEmpty())
	patch.Apply(&p)

	assert.Equal(t, "FW-1", p.SKU)
	assert.Equal(t, "Renamed", p.Title)
	assert.True(t, p.CasePrice.Equal(price))
	assert.Equal(t, []int{10}, p.Package)
	assert.False(t, p.IsCaseBreakable)
	assert.True(t, ProductPatch{}.IsEmpty())
}

func TestValidPackage(t *testing.T) {
	assert.True(t, ValidPackage([]int{24, 1}))
	assert.False(t, ValidPackage(nil))
	assert.False(t, ValidPackage([]int{24, 0}))
	assert.False(t, ValidPackage([]int{-1}))
}
