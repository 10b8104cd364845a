package repository

import (
	"context"
	"time"

	"github.com/guttosm/casebreak-service/internal/domain/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LogEntryDocument is the MongoDB shape of an audit or request log entry.
type LogEntryDocument struct {
	ID         primitive.ObjectID     `bson:"_id,omitempty"`
	Timestamp  time.Time              `bson:"timestamp"`
	Level      string                 `bson:"level"`
	Message    string                 `bson:"message"`
	RequestID  string                 `bson:"request_id,omitempty"`
	Method     string                 `bson:"method,omitempty"`
	Path       string                 `bson:"path,omitempty"`
	StatusCode int                    `bson:"status_code,omitempty"`
	Duration   int64                  `bson:"duration_ms,omitempty"`
	IP         string                 `bson:"ip,omitempty"`
	UserAgent  string                 `bson:"user_agent,omitempty"`
	Error      string                 `bson:"error,omitempty"`
	UserID     string                 `bson:"user_id,omitempty"`
	ActionType string                 `bson:"action_type,omitempty"`
	Fields     map[string]interface{} `bson:"fields,omitempty"`
}

// NewLogEntryDocument converts entry for storage. An entry without a valid
// ObjectID hex id or without a timestamp gets both assigned, and they are
// written back to entry so the caller can correlate the stored record.
func NewLogEntryDocument(entry *model.LogEntry) *LogEntryDocument {
	id, err := primitive.ObjectIDFromHex(entry.ID)
	if err != nil {
		id = primitive.NewObjectID()
		entry.ID = id.Hex()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	doc := &LogEntryDocument{ID: id, Timestamp: entry.Timestamp}
	doc.Level, doc.Message, doc.Error = entry.Level, entry.Message, entry.Error
	doc.RequestID, doc.Method, doc.Path = entry.RequestID, entry.Method, entry.Path
	doc.StatusCode, doc.Duration = entry.StatusCode, entry.Duration
	doc.IP, doc.UserAgent = entry.IP, entry.UserAgent
	doc.UserID, doc.ActionType, doc.Fields = entry.UserID, entry.ActionType, entry.Fields
	return doc
}

// Entry converts the stored document back to a log entry.
func (d *LogEntryDocument) Entry() model.LogEntry {
	e := model.LogEntry{ID: d.ID.Hex(), Timestamp: d.Timestamp}
	e.Level, e.Message, e.Error = d.Level, d.Message, d.Error
	e.RequestID, e.Method, e.Path = d.RequestID, d.Method, d.Path
	e.StatusCode, e.Duration = d.StatusCode, d.Duration
	e.IP, e.UserAgent = d.IP, d.UserAgent
	e.UserID, e.ActionType, e.Fields = d.UserID, d.ActionType, d.Fields
	return e
}

func logFilter(q model.LogQueryOptions) bson.M {
	filter := bson.M{}
	for field, value := range map[string]string{
		"request_id":  q.RequestID,
		"level":       q.Level,
		"action_type": q.ActionType,
		"user_id":     q.UserID,
	} {
		if value != "" {
			filter[field] = value
		}
	}
	if tf := timeRange(q.StartTime, q.EndTime); tf != nil {
		filter["timestamp"] = tf
	}
	return filter
}

// LogsRepository persists log entries in the logs collection.
type LogsRepository struct {
	collection *mongo.Collection
}

// NewLogsRepository creates a new logs repository.
func NewLogsRepository(db *MongoDB) *LogsRepository {
	return &LogsRepository{collection: db.Logs}
}

func stamp(entry *LogEntryDocument) {
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
}

// Create inserts a new log entry document.
func (r *LogsRepository) Create(ctx context.Context, entry *LogEntryDocument) error {
	stamp(entry)
	_, err := r.collection.InsertOne(ctx, entry)
	return err
}

// CreateMany inserts entries in one unordered bulk write.
func (r *LogsRepository) CreateMany(ctx context.Context, entries []*LogEntryDocument) error {
	if len(entries) == 0 {
		return nil
	}

	docs := make([]interface{}, len(entries))
	for i, entry := range entries {
		stamp(entry)
		docs[i] = entry
	}

	_, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	return err
}

// Query returns entries matching q, newest first. Limit and Skip page the
// result; zero means unbounded.
func (r *LogsRepository) Query(ctx context.Context, q model.LogQueryOptions) ([]*LogEntryDocument, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if q.Limit > 0 {
		findOptions.SetLimit(int64(q.Limit))
	}
	if q.Skip > 0 {
		findOptions.SetSkip(int64(q.Skip))
	}

	cursor, err := r.collection.Find(ctx, logFilter(q), findOptions)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var entries []*LogEntryDocument
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Count returns the number of entries matching q, ignoring paging.
func (r *LogsRepository) Count(ctx context.Context, q model.LogQueryOptions) (int64, error) {
	return r.collection.CountDocuments(ctx, logFilter(q))
}
