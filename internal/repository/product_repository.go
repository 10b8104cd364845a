package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/guttosm/casebreak-service/internal/domain/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProductRepository stores products and their embedded unit facet.
type ProductRepository struct {
	collection *mongo.Collection
}

// NewProductRepository creates a new product repository.
func NewProductRepository(db *MongoDB) *ProductRepository {
	return &ProductRepository{collection: db.Products}
}

// Create inserts a product, assigning an id when empty.
func (r *ProductRepository) Create(ctx context.Context, p *model.Product) error {
	if p.ID == "" {
		p.ID = primitive.NewObjectID().Hex()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	if _, err := r.collection.InsertOne(ctx, productToDocument(p)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// literal stops the aggregation pipeline from reading user strings as field paths.
func literal(v interface{}) bson.D {
	return bson.D{{Key: "$literal", Value: v}}
}

// Update rewrites catalog fields and the unit facet while keeping the facet's stock.
// A nil UnitProduct removes the facet. p is refreshed from the stored document.
func (r *ProductRepository) Update(ctx context.Context, p *model.Product) error {
	doc := productToDocument(p)

	set := bson.D{
		{Key: "sku", Value: literal(doc.SKU)},
		{Key: "title", Value: literal(doc.Title)},
		{Key: "case_price", Value: literal(doc.CasePrice)},
		{Key: "package", Value: literal(doc.Package)},
		{Key: "is_case_breakable", Value: literal(doc.IsCaseBreakable)},
		{Key: "updated_at", Value: literal(time.Now().UTC())},
	}

	var pipeline mongo.Pipeline
	if doc.UnitProduct != nil {
		// $mergeObjects ignores a missing facet, so a new facet starts at the given stock
		// and an existing one keeps its own.
		set = append(set, bson.E{Key: "unit_product", Value: bson.D{{Key: "$mergeObjects", Value: bson.A{
			bson.D{{Key: "available_stock", Value: literal(doc.UnitProduct.AvailableStock)}},
			"$unit_product",
			bson.D{
				{Key: "sku", Value: literal(doc.UnitProduct.SKU)},
				{Key: "unit_price", Value: literal(doc.UnitProduct.UnitPrice)},
				{Key: "package", Value: literal(doc.UnitProduct.Package)},
			},
		}}}})
		pipeline = mongo.Pipeline{{{Key: "$set", Value: set}}}
	} else {
		pipeline = mongo.Pipeline{
			{{Key: "$set", Value: set}},
			{{Key: "$unset", Value: "unit_product"}},
		}
	}

	var updated productDocument
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": p.ID},
		pipeline,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicateKey
	case err != nil:
		return fmt.Errorf("update product: %w", err)
	}

	*p = *updated.toModel()
	return nil
}

// FindByID returns the product or nil when it does not exist.
func (r *ProductRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	var doc productDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}
	return doc.toModel(), nil
}

// InventoryRepository mutates the unit facet stock with single-document atomic updates.
type InventoryRepository struct {
	collection *mongo.Collection
}

// NewInventoryRepository creates a new inventory repository.
func NewInventoryRepository(db *MongoDB) *InventoryRepository {
	return &InventoryRepository{collection: db.Products}
}

func unitFilter(productID string) bson.M {
	return bson.M{"_id": productID, "unit_product": bson.M{"$exists": true}}
}

// missingReason tells ErrNotFound from ErrNoUnitInventory after a unit filter matched nothing.
func (r *InventoryRepository) missingReason(ctx context.Context, productID string) error {
	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": productID})
	if err != nil {
		return fmt.Errorf("count product: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrNoUnitInventory
}

// AvailableStock returns the unit facet stock.
func (r *InventoryRepository) AvailableStock(ctx context.Context, productID string) (int, error) {
	var doc productDocument
	err := r.collection.FindOne(ctx, unitFilter(productID),
		options.FindOne().SetProjection(bson.M{"unit_product.available_stock": 1}),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, r.missingReason(ctx, productID)
	}
	if err != nil {
		return 0, fmt.Errorf("read stock: %w", err)
	}
	return doc.UnitProduct.AvailableStock, nil
}

// Reserve clamps the decrement at zero inside one findOneAndUpdate and derives the
// reserved amount from the pre-image.
func (r *InventoryRepository) Reserve(ctx context.Context, productID string, requested int) (int, error) {
	pipeline := mongo.Pipeline{{{Key: "$set", Value: bson.D{
		{Key: "unit_product.available_stock", Value: bson.D{{Key: "$max", Value: bson.A{
			0,
			bson.D{{Key: "$subtract", Value: bson.A{"$unit_product.available_stock", requested}}},
		}}}},
	}}}}

	var before productDocument
	err := r.collection.FindOneAndUpdate(
		ctx,
		unitFilter(productID),
		pipeline,
		options.FindOneAndUpdate().
			SetReturnDocument(options.Before).
			SetProjection(bson.M{"unit_product.available_stock": 1}),
	).Decode(&before)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, r.missingReason(ctx, productID)
	}
	if err != nil {
		return 0, fmt.Errorf("reserve stock: %w", err)
	}

	return min(max(before.UnitProduct.AvailableStock, 0), requested), nil
}

// Credit increments the unit facet stock.
func (r *InventoryRepository) Credit(ctx context.Context, productID string, quantity int) (int, error) {
	var after productDocument
	err := r.collection.FindOneAndUpdate(
		ctx,
		unitFilter(productID),
		bson.M{"$inc": bson.M{"unit_product.available_stock": quantity}},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(bson.M{"unit_product.available_stock": 1}),
	).Decode(&after)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, r.missingReason(ctx, productID)
	}
	if err != nil {
		return 0, fmt.Errorf("credit stock: %w", err)
	}
	return after.UnitProduct.AvailableStock, nil
}
