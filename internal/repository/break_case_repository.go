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

// BreakCaseRepository stores break-case requests.
type BreakCaseRepository struct {
	collection *mongo.Collection
}

// NewBreakCaseRepository creates a new break-case request repository.
func NewBreakCaseRepository(db *MongoDB) *BreakCaseRepository {
	return &BreakCaseRepository{collection: db.BreakCases}
}

// Create inserts a request, defaulting id, status and timestamp.
func (r *BreakCaseRepository) Create(ctx context.Context, req *model.BreakCaseRequest) error {
	if req.ID == "" {
		req.ID = primitive.NewObjectID().Hex()
	}
	if req.Status == "" {
		req.Status = model.RequestStatusOpen
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	if _, err := r.collection.InsertOne(ctx, breakCaseToDocument(req)); err != nil {
		return fmt.Errorf("insert break-case request: %w", err)
	}
	return nil
}

// FindByID returns the request or nil when it does not exist.
func (r *BreakCaseRepository) FindByID(ctx context.Context, id string) (*model.BreakCaseRequest, error) {
	var doc breakCaseDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find break-case request: %w", err)
	}
	req := doc.toModel()
	return &req, nil
}

// MarkCompleted flips OPEN to COMPLETED with a status-guarded update.
func (r *BreakCaseRepository) MarkCompleted(ctx context.Context, id string, completedAt time.Time) error {
	res, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "status": string(model.RequestStatusOpen)},
		bson.M{"$set": bson.M{
			"status":       string(model.RequestStatusCompleted),
			"completed_at": completedAt,
		}},
	)
	if err != nil {
		return fmt.Errorf("complete break-case request: %w", err)
	}
	if res.MatchedCount == 1 {
		return nil
	}

	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("count break-case request: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrConflict
}

// List returns requests matching the filter, newest first.
func (r *BreakCaseRepository) List(ctx context.Context, f model.BreakCaseFilter) ([]model.BreakCaseRequest, error) {
	filter := bson.M{}
	if tf := timeRange(f.From, f.To); tf != nil {
		filter["created_at"] = tf
	}
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list break-case requests: %w", err)
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var docs []breakCaseDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode break-case requests: %w", err)
	}

	out := make([]model.BreakCaseRequest, len(docs))
	for i, d := range docs {
		out[i] = d.toModel()
	}
	return out, nil
}
