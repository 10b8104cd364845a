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

// CartRepository stores one cart document per user.
type CartRepository struct {
	collection *mongo.Collection
}

// NewCartRepository creates a new cart repository.
func NewCartRepository(db *MongoDB) *CartRepository {
	return &CartRepository{collection: db.Carts}
}

// GetByUser returns the user's cart or nil when none exists.
func (r *CartRepository) GetByUser(ctx context.Context, userID string) (*model.Cart, error) {
	var doc cartDocument
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find cart: %w", err)
	}
	return doc.toModel(), nil
}

// SetLine upserts or removes the product line in the user's cart.
func (r *CartRepository) SetLine(ctx context.Context, userID string, line model.CartLine) (*model.Cart, error) {
	cart, err := r.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		cart = &model.Cart{ID: primitive.NewObjectID().Hex(), UserID: userID}
	}
	cart.SetLine(line.ProductID, line.CaseQuantity, line.UnitQuantity)
	cart.UpdatedAt = time.Now().UTC()

	_, err = r.collection.ReplaceOne(
		ctx,
		bson.M{"_id": cart.ID},
		cartToDocument(cart),
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return cart, nil
}

// Clear empties the cart and returns how many lines were removed.
func (r *CartRepository) Clear(ctx context.Context, cartID string) (int64, error) {
	var before cartDocument
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": cartID},
		bson.M{"$set": bson.M{"lines": bson.A{}, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.Before),
	).Decode(&before)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("clear cart: %w", err)
	}
	return int64(len(before.Lines)), nil
}
