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

// PurchaseRepository stores purchase records with their items embedded.
type PurchaseRepository struct {
	collection *mongo.Collection
}

// NewPurchaseRepository creates a new purchase repository.
func NewPurchaseRepository(db *MongoDB) *PurchaseRepository {
	return &PurchaseRepository{collection: db.Purchases}
}

// Create inserts the purchase record.
func (r *PurchaseRepository) Create(ctx context.Context, p *model.PurchaseRecord) error {
	if p.ID == "" {
		p.ID = primitive.NewObjectID().Hex()
	}
	if p.PurchasedAt.IsZero() {
		p.PurchasedAt = time.Now().UTC()
	}
	if _, err := r.collection.InsertOne(ctx, purchaseToDocument(p)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("insert purchase: %w", err)
	}
	return nil
}

// FindByID returns the purchase or nil when it does not exist.
func (r *PurchaseRepository) FindByID(ctx context.Context, id string) (*model.PurchaseRecord, error) {
	var doc purchaseDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find purchase: %w", err)
	}
	return doc.toModel(), nil
}

// List returns purchases matching the filter, newest first.
func (r *PurchaseRepository) List(ctx context.Context, f model.PurchaseFilter) ([]model.PurchaseRecord, error) {
	filter := bson.M{}
	if tf := timeRange(f.From, f.To); tf != nil {
		filter["purchased_at"] = tf
	}
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}
	if f.UserID != "" {
		filter["user_id"] = f.UserID
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "purchased_at", Value: -1}})
	if f.Limit > 0 {
		findOptions.SetLimit(int64(f.Limit))
	}

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var docs []purchaseDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode purchases: %w", err)
	}

	out := make([]model.PurchaseRecord, len(docs))
	for i, d := range docs {
		out[i] = *d.toModel()
	}
	return out, nil
}

// UpdateStatus sets the status and returns the record, or nil when it does not exist.
func (r *PurchaseRepository) UpdateStatus(ctx context.Context, id string, status model.PurchaseStatus) (*model.PurchaseRecord, error) {
	var doc purchaseDocument
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": string(status)}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update purchase status: %w", err)
	}
	return doc.toModel(), nil
}

func timeRange(from, to *time.Time) bson.M {
	if from == nil && to == nil {
		return nil
	}
	tf := bson.M{}
	if from != nil {
		tf["$gte"] = *from
	}
	if to != nil {
		tf["$lte"] = *to
	}
	return tf
}
