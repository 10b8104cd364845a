package postgres

import (
	"time"

	"github.com/guttosm/casebreak-service/internal/domain/model"
	"github.com/shopspring/decimal"
)

type productRow struct {
	ID              string          `gorm:"primaryKey;type:varchar(64)"`
	SKU             string          `gorm:"uniqueIndex;not null"`
	Title           string          `gorm:"not null"`
	CasePrice       decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Package         []int           `gorm:"serializer:json;type:jsonb;not null"`
	IsCaseBreakable bool            `gorm:"not null;default:false"`
	Unit            *unitProductRow `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (productRow) TableName() string { return "products" }

type unitProductRow struct {
	ProductID      string          `gorm:"primaryKey;type:varchar(64)"`
	SKU            string          `gorm:"uniqueIndex;not null"`
	UnitPrice      decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	AvailableStock int             `gorm:"not null;default:0;check:available_stock >= 0"`
	Package        []int           `gorm:"serializer:json;type:jsonb;not null"`
}

func (unitProductRow) TableName() string { return "unit_products" }

type cartRow struct {
	ID        string        `gorm:"primaryKey;type:varchar(64)"`
	UserID    string        `gorm:"uniqueIndex;not null"`
	Lines     []cartLineRow `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	UpdatedAt time.Time
}

func (cartRow) TableName() string { return "carts" }

type cartLineRow struct {
	CartID       string `gorm:"primaryKey;type:varchar(64)"`
	ProductID    string `gorm:"primaryKey;type:varchar(64)"`
	Position     int    `gorm:"not null"`
	CaseQuantity int    `gorm:"not null;check:case_quantity >= 0"`
	UnitQuantity int    `gorm:"not null;check:unit_quantity >= 0"`
}

func (cartLineRow) TableName() string { return "cart_lines" }

type purchaseRow struct {
	ID              string            `gorm:"primaryKey;type:varchar(64)"`
	UserID          string            `gorm:"index;not null"`
	ShippingAddress model.Address     `gorm:"serializer:json;type:jsonb"`
	Items           []purchaseItemRow `gorm:"foreignKey:PurchaseID;constraint:OnDelete:CASCADE"`
	Subtotal        decimal.Decimal   `gorm:"type:numeric(12,2);not null"`
	Tax             decimal.Decimal   `gorm:"type:numeric(12,2);not null"`
	Shipping        decimal.Decimal   `gorm:"type:numeric(12,2);not null"`
	LiftGateFee     decimal.Decimal   `gorm:"type:numeric(12,2);not null"`
	DiscountAmount  decimal.Decimal   `gorm:"type:numeric(12,2);not null"`
	DiscountCode    string
	DiscountType    string
	GrandTotal      decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Status          string          `gorm:"index;not null"`
	PurchasedAt     time.Time       `gorm:"index;not null"`
}

func (purchaseRow) TableName() string { return "purchases" }

type purchaseItemRow struct {
	ID           uint            `gorm:"primaryKey"`
	PurchaseID   string          `gorm:"index;type:varchar(64);not null"`
	Position     int             `gorm:"not null"`
	ProductID    string          `gorm:"type:varchar(64);not null"`
	SKU          string          `gorm:"not null"`
	Title        string          `gorm:"not null"`
	Quantity     int             `gorm:"not null"`
	Kind         string          `gorm:"not null"`
	ItemSubtotal decimal.Decimal `gorm:"type:numeric(12,2);not null"`
}

func (purchaseItemRow) TableName() string { return "purchase_items" }

type breakCaseRow struct {
	ID          string    `gorm:"primaryKey;type:varchar(64)"`
	ProductID   string    `gorm:"index;type:varchar(64);not null"`
	Quantity    int       `gorm:"not null;check:quantity > 0"`
	Status      string    `gorm:"index;not null"`
	PurchaseID  string    `gorm:"type:varchar(64)"`
	CreatedAt   time.Time `gorm:"index;not null"`
	CompletedAt *time.Time
}

func (breakCaseRow) TableName() string { return "break_case_requests" }

func productToRow(p *model.Product) productRow {
	row := productRow{
		ID:              p.ID,
		SKU:             p.SKU,
		Title:           p.Title,
		CasePrice:       p.CasePrice,
		Package:         p.Package,
		IsCaseBreakable: p.IsCaseBreakable,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
	if p.UnitProduct != nil {
		row.Unit = &unitProductRow{
			ProductID:      p.ID,
			SKU:            p.UnitProduct.SKU,
			UnitPrice:      p.UnitProduct.UnitPrice,
			AvailableStock: p.UnitProduct.AvailableStock,
			Package:        p.UnitProduct.Package,
		}
	}
	return row
}

func (r productRow) toModel() *model.Product {
	p := &model.Product{
		ID:              r.ID,
		SKU:             r.SKU,
		Title:           r.Title,
		CasePrice:       r.CasePrice,
		Package:         r.Package,
		IsCaseBreakable: r.IsCaseBreakable,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if r.Unit != nil {
		p.UnitProduct = &model.UnitProduct{
			SKU:            r.Unit.SKU,
			UnitPrice:      r.Unit.UnitPrice,
			AvailableStock: r.Unit.AvailableStock,
			Package:        r.Unit.Package,
		}
	}
	return p
}

func (r cartRow) toModel() *model.Cart {
	c := &model.Cart{ID: r.ID, UserID: r.UserID, UpdatedAt: r.UpdatedAt, Lines: make([]model.CartLine, len(r.Lines))}
	for i, l := range r.Lines {
		c.Lines[i] = model.CartLine{ProductID: l.ProductID, CaseQuantity: l.CaseQuantity, UnitQuantity: l.UnitQuantity}
	}
	return c
}

func purchaseToRow(p *model.PurchaseRecord) purchaseRow {
	row := purchaseRow{
		ID:              p.ID,
		UserID:          p.UserID,
		ShippingAddress: p.ShippingAddress,
		Items:           make([]purchaseItemRow, len(p.Items)),
		Subtotal:        p.Subtotal,
		Tax:             p.Tax,
		Shipping:        p.Shipping,
		LiftGateFee:     p.LiftGateFee,
		DiscountAmount:  p.Discount.Amount,
		DiscountCode:    p.Discount.Code,
		DiscountType:    p.Discount.Type,
		GrandTotal:      p.GrandTotal,
		Status:          string(p.Status),
		PurchasedAt:     p.PurchasedAt,
	}
	for i, it := range p.Items {
		row.Items[i] = purchaseItemRow{
			PurchaseID:   p.ID,
			Position:     i,
			ProductID:    it.ProductID,
			SKU:          it.SKU,
			Title:        it.Title,
			Quantity:     it.Quantity,
			Kind:         string(it.Kind),
			ItemSubtotal: it.ItemSubtotal,
		}
	}
	return row
}

func (r purchaseRow) toModel() *model.PurchaseRecord {
	p := &model.PurchaseRecord{
		ID:              r.ID,
		UserID:          r.UserID,
		ShippingAddress: r.ShippingAddress,
		Items:           make([]model.PurchaseItem, len(r.Items)),
		Subtotal:        r.Subtotal,
		Tax:             r.Tax,
		Shipping:        r.Shipping,
		LiftGateFee:     r.LiftGateFee,
		Discount:        model.Discount{Amount: r.DiscountAmount, Code: r.DiscountCode, Type: r.DiscountType},
		GrandTotal:      r.GrandTotal,
		Status:          model.PurchaseStatus(r.Status),
		PurchasedAt:     r.PurchasedAt,
	}
	for i, it := range r.Items {
		p.Items[i] = model.PurchaseItem{
			ProductID:    it.ProductID,
			SKU:          it.SKU,
			Title:        it.Title,
			Quantity:     it.Quantity,
			Kind:         model.ItemKind(it.Kind),
			ItemSubtotal: it.ItemSubtotal,
		}
	}
	return p
}

func (r breakCaseRow) toModel() model.BreakCaseRequest {
	return model.BreakCaseRequest{
		ID:          r.ID,
		ProductID:   r.ProductID,
		Quantity:    r.Quantity,
		Status:      model.RequestStatus(r.Status),
		PurchaseID:  r.PurchaseID,
		CreatedAt:   r.CreatedAt,
		CompletedAt: r.CompletedAt,
	}
}
