package repository

import (
	"time"

	"github.com/guttosm/casebreak-service/internal/domain/model"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Repository-level documents. Money is stored as Decimal128 so the server never rounds it.

type productDocument struct {
	ID              string               `bson:"_id"`
	SKU             string               `bson:"sku"`
	Title           string               `bson:"title"`
	CasePrice       primitive.Decimal128 `bson:"case_price"`
	Package         []int                `bson:"package"`
	IsCaseBreakable bool                 `bson:"is_case_breakable"`
	UnitProduct     *unitProductDocument `bson:"unit_product,omitempty"`
	CreatedAt       time.Time            `bson:"created_at"`
	UpdatedAt       time.Time            `bson:"updated_at"`
}

type unitProductDocument struct {
	SKU            string               `bson:"sku"`
	UnitPrice      primitive.Decimal128 `bson:"unit_price"`
	AvailableStock int                  `bson:"available_stock"`
	Package        []int                `bson:"package"`
}

type cartDocument struct {
	ID        string             `bson:"_id"`
	UserID    string             `bson:"user_id"`
	Lines     []cartLineDocument `bson:"lines"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

type cartLineDocument struct {
	ProductID    string `bson:"product_id"`
	CaseQuantity int    `bson:"case_quantity"`
	UnitQuantity int    `bson:"unit_quantity"`
}

type purchaseDocument struct {
	ID              string                 `bson:"_id"`
	UserID          string                 `bson:"user_id"`
	ShippingAddress addressDocument        `bson:"shipping_address"`
	Items           []purchaseItemDocument `bson:"items"`
	Subtotal        primitive.Decimal128   `bson:"subtotal"`
	Tax             primitive.Decimal128   `bson:"tax"`
	Shipping        primitive.Decimal128   `bson:"shipping"`
	LiftGateFee     primitive.Decimal128   `bson:"lift_gate_fee"`
	DiscountAmount  primitive.Decimal128   `bson:"discount_amount"`
	DiscountCode    string                 `bson:"discount_code,omitempty"`
	DiscountType    string                 `bson:"discount_type,omitempty"`
	GrandTotal      primitive.Decimal128   `bson:"grand_total"`
	Status          string                 `bson:"status"`
	PurchasedAt     time.Time              `bson:"purchased_at"`
}

type addressDocument struct {
	ID         string `bson:"id,omitempty"`
	Name       string `bson:"name,omitempty"`
	Street1    string `bson:"street1"`
	Street2    string `bson:"street2,omitempty"`
	City       string `bson:"city"`
	State      string `bson:"state"`
	PostalCode string `bson:"postal_code"`
}

type purchaseItemDocument struct {
	ProductID    string               `bson:"product_id"`
	SKU          string               `bson:"sku"`
	Title        string               `bson:"title"`
	Quantity     int                  `bson:"quantity"`
	Kind         string               `bson:"kind"`
	ItemSubtotal primitive.Decimal128 `bson:"item_subtotal"`
}

type breakCaseDocument struct {
	ID          string     `bson:"_id"`
	ProductID   string     `bson:"product_id"`
	Quantity    int        `bson:"quantity"`
	Status      string     `bson:"status"`
	PurchaseID  string     `bson:"purchase_id,omitempty"`
	CreatedAt   time.Time  `bson:"created_at"`
	CompletedAt *time.Time `bson:"completed_at,omitempty"`
}

func toDecimal128(d decimal.Decimal) primitive.Decimal128 {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.NewDecimal128(0, 0)
	}
	return v
}

func fromDecimal128(v primitive.Decimal128) decimal.Decimal {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

func productToDocument(p *model.Product) productDocument {
	doc := productDocument{
		ID:              p.ID,
		SKU:             p.SKU,
		Title:           p.Title,
		CasePrice:       toDecimal128(p.CasePrice),
		Package:         p.Package,
		IsCaseBreakable: p.IsCaseBreakable,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
	if p.UnitProduct != nil {
		doc.UnitProduct = &unitProductDocument{
			SKU:            p.UnitProduct.SKU,
			UnitPrice:      toDecimal128(p.UnitProduct.UnitPrice),
			AvailableStock: p.UnitProduct.AvailableStock,
			Package:        p.UnitProduct.Package,
		}
	}
	return doc
}

func (d productDocument) toModel() *model.Product {
	p := &model.Product{
		ID:              d.ID,
		SKU:             d.SKU,
		Title:           d.Title,
		CasePrice:       fromDecimal128(d.CasePrice),
		Package:         d.Package,
		IsCaseBreakable: d.IsCaseBreakable,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
	if d.UnitProduct != nil {
		p.UnitProduct = &model.UnitProduct{
			SKU:            d.UnitProduct.SKU,
			UnitPrice:      fromDecimal128(d.UnitProduct.UnitPrice),
			AvailableStock: d.UnitProduct.AvailableStock,
			Package:        d.UnitProduct.Package,
		}
	}
	return p
}

func (d cartDocument) toModel() *model.Cart {
	c := &model.Cart{ID: d.ID, UserID: d.UserID, UpdatedAt: d.UpdatedAt, Lines: make([]model.CartLine, len(d.Lines))}
	for i, l := range d.Lines {
		c.Lines[i] = model.CartLine{ProductID: l.ProductID, CaseQuantity: l.CaseQuantity, UnitQuantity: l.UnitQuantity}
	}
	return c
}

func cartToDocument(c *model.Cart) cartDocument {
	doc := cartDocument{ID: c.ID, UserID: c.UserID, UpdatedAt: c.UpdatedAt, Lines: make([]cartLineDocument, len(c.Lines))}
	for i, l := range c.Lines {
		doc.Lines[i] = cartLineDocument{ProductID: l.ProductID, CaseQuantity: l.CaseQuantity, UnitQuantity: l.UnitQuantity}
	}
	return doc
}

func purchaseToDocument(p *model.PurchaseRecord) purchaseDocument {
	doc := purchaseDocument{
		ID:     p.ID,
		UserID: p.UserID,
		ShippingAddress: addressDocument{
			ID:         p.ShippingAddress.ID,
			Name:       p.ShippingAddress.Name,
			Street1:    p.ShippingAddress.Street1,
			Street2:    p.ShippingAddress.Street2,
			City:       p.ShippingAddress.City,
			State:      p.ShippingAddress.State,
			PostalCode: p.ShippingAddress.PostalCode,
		},
		Items:          make([]purchaseItemDocument, len(p.Items)),
		Subtotal:       toDecimal128(p.Subtotal),
		Tax:            toDecimal128(p.Tax),
		Shipping:       toDecimal128(p.Shipping),
		LiftGateFee:    toDecimal128(p.LiftGateFee),
		DiscountAmount: toDecimal128(p.Discount.Amount),
		DiscountCode:   p.Discount.Code,
		DiscountType:   p.Discount.Type,
		GrandTotal:     toDecimal128(p.GrandTotal),
		Status:         string(p.Status),
		PurchasedAt:    p.PurchasedAt,
	}
	for i, it := range p.Items {
		doc.Items[i] = purchaseItemDocument{
			ProductID:    it.ProductID,
			SKU:          it.SKU,
			Title:        it.Title,
			Quantity:     it.Quantity,
			Kind:         string(it.Kind),
			ItemSubtotal: toDecimal128(it.ItemSubtotal),
		}
	}
	return doc
}

func (d purchaseDocument) toModel() *model.PurchaseRecord {
	p := &model.PurchaseRecord{
		ID:     d.ID,
		UserID: d.UserID,
		ShippingAddress: model.Address{
			ID:         d.ShippingAddress.ID,
			Name:       d.ShippingAddress.Name,
			Street1:    d.ShippingAddress.Street1,
			Street2:    d.ShippingAddress.Street2,
			City:       d.ShippingAddress.City,
			State:      d.ShippingAddress.State,
			PostalCode: d.ShippingAddress.PostalCode,
		},
		Items:       make([]model.PurchaseItem, len(d.Items)),
		Subtotal:    fromDecimal128(d.Subtotal),
		Tax:         fromDecimal128(d.Tax),
		Shipping:    fromDecimal128(d.Shipping),
		LiftGateFee: fromDecimal128(d.LiftGateFee),
		Discount: model.Discount{
			Amount: fromDecimal128(d.DiscountAmount),
			Code:   d.DiscountCode,
			Type:   d.DiscountType,
		},
		GrandTotal:  fromDecimal128(d.GrandTotal),
		Status:      model.PurchaseStatus(d.Status),
		PurchasedAt: d.PurchasedAt,
	}
	for i, it := range d.Items {
		p.Items[i] = model.PurchaseItem{
			ProductID:    it.ProductID,
			SKU:          it.SKU,
			Title:        it.Title,
			Quantity:     it.Quantity,
			Kind:         model.ItemKind(it.Kind),
			ItemSubtotal: fromDecimal128(it.ItemSubtotal),
		}
	}
	return p
}

func breakCaseToDocument(r *model.BreakCaseRequest) breakCaseDocument {
	return breakCaseDocument{
		ID:          r.ID,
		ProductID:   r.ProductID,
		Quantity:    r.Quantity,
		Status:      string(r.Status),
		PurchaseID:  r.PurchaseID,
		CreatedAt:   r.CreatedAt,
		CompletedAt: r.CompletedAt,
	}
}

func (d breakCaseDocument) toModel() model.BreakCaseRequest {
	return model.BreakCaseRequest{
		ID:          d.ID,
		ProductID:   d.ProductID,
		Quantity:    d.Quantity,
		Status:      model.RequestStatus(d.Status),
		PurchaseID:  d.PurchaseID,
		CreatedAt:   d.CreatedAt,
		CompletedAt: d.CompletedAt,
	}
}
